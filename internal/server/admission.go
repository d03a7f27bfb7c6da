package server

import (
	"net/http"
	"strings"

	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	"github.com/coachdesk/coachdesk/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateOneTimeAdmission(c *gin.Context) {
	var req admissiondomain.CreateOneTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	detail, err := s.admissionSvc.CreateOneTime(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) CreateBoardAdmission(c *gin.Context) {
	var req admissiondomain.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	detail, err := s.admissionSvc.CreateBoard(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) ListAdmissions(c *gin.Context) {
	var query struct {
		pagination.Pagination
		StudentID string `form:"student_id"`
		Type      string `form:"type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	studentID, err := parseOptionalID(query.StudentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.admissionSvc.List(c.Request.Context(), admissiondomain.ListAdmissionsRequest{
		StudentID:  studentID,
		Type:       admissiondomain.AdmissionType(strings.TrimSpace(query.Type)),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAdmission(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.admissionSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}
