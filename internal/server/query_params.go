package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context, param string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param(param))
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, newValidationError(param, "invalid_id", "invalid id")
	}
	return id, nil
}

func parseIntParam(c *gin.Context, param string) (int, error) {
	raw := strings.TrimSpace(c.Param(param))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, newValidationError(param, "invalid_"+param, "must be a positive integer")
	}
	return n, nil
}

func parseOptionalID(raw string) (*snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, newValidationError("id", "invalid_id", "invalid id")
	}
	return &id, nil
}
