package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListMonths(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	bills, err := s.boardSvc.ListMonths(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bills})
}

func (s *Server) OpenMonth(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	no, err := parseIntParam(c, "no")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	bill, err := s.boardSvc.OpenMonth(c.Request.Context(), id, no)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bill})
}

func (s *Server) SelectMonthSubjects(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	no, err := parseIntParam(c, "no")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Subjects []string `json:"subjects"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bill, err := s.boardSvc.SelectSubjects(c.Request.Context(), id, no, req.Subjects)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bill})
}
