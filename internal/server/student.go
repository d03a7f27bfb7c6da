package server

import (
	"net/http"
	"strings"

	studentdomain "github.com/coachdesk/coachdesk/internal/student/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateStudent(c *gin.Context) {
	var req studentdomain.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	student, err := s.studentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": student})
}

func (s *Server) ListStudents(c *gin.Context) {
	students, err := s.studentSvc.List(c.Request.Context(), studentdomain.ListStudentsRequest{
		Search: strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": students})
}

func (s *Server) GetStudent(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	student, err := s.studentSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": student})
}

func (s *Server) UpdateStudent(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req studentdomain.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	student, err := s.studentSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": student})
}
