package server

import (
	"net/http"
	"strings"

	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateCourse(c *gin.Context) {
	var req catalogdomain.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	course, err := s.catalogSvc.CreateCourse(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": course})
}

func (s *Server) ListCourses(c *gin.Context) {
	req := catalogdomain.ListCoursesRequest{
		Type: catalogdomain.CourseType(strings.TrimSpace(c.Query("type"))),
	}
	switch strings.TrimSpace(c.Query("active")) {
	case "true":
		active := true
		req.IsActive = &active
	case "false":
		active := false
		req.IsActive = &active
	}

	courses, err := s.catalogSvc.ListCourses(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": courses})
}

func (s *Server) GetCourse(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	course, err := s.catalogSvc.GetCourse(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": course})
}

func (s *Server) DisableCourse(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.catalogSvc.DisableCourse(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"disabled": true}})
}

func (s *Server) AddFeeLineItem(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req catalogdomain.AddFeeLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.CourseID = id

	item, err := s.catalogSvc.AddFeeLineItem(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ListFeeLineItems(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.catalogSvc.ListFeeLineItems(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) AddSubject(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req catalogdomain.AddSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.CourseID = id

	subject, err := s.catalogSvc.AddSubject(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": subject})
}

func (s *Server) ListSubjects(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	subjects, err := s.catalogSvc.ListSubjects(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": subjects})
}
