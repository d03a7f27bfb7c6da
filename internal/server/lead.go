package server

import (
	"net/http"
	"strings"
	"time"

	leaddomain "github.com/coachdesk/coachdesk/internal/lead/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateLead(c *gin.Context) {
	var req leaddomain.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lead, err := s.leadSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lead})
}

func (s *Server) ListLeads(c *gin.Context) {
	status := leaddomain.LeadStatus(strings.TrimSpace(c.Query("status")))
	if status != "" && !status.Valid() {
		AbortWithError(c, newValidationError("status", "invalid_status", "invalid lead status"))
		return
	}

	leads, err := s.leadSvc.List(c.Request.Context(), leaddomain.ListLeadsRequest{Status: status})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": leads})
}

func (s *Server) GetLead(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	lead, err := s.leadSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lead})
}

func (s *Server) UpdateLeadStatus(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Status leaddomain.LeadStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lead, err := s.leadSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lead})
}

func (s *Server) AddLeadFollowUp(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Note           string     `json:"note"`
		NextFollowUpAt *time.Time `json:"next_follow_up_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		AbortWithError(c, newValidationError("note", "invalid_note", "note is required"))
		return
	}

	note, err := s.leadSvc.AddFollowUp(c.Request.Context(), id, req.Note, req.NextFollowUpAt)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": note})
}

func (s *Server) ListLeadFollowUps(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	notes, err := s.leadSvc.ListFollowUps(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notes})
}

func (s *Server) ConvertLead(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	student, err := s.leadSvc.Convert(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": student})
}
