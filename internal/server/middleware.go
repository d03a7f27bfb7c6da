package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/coachdesk/coachdesk/internal/branchctx"
	"github.com/coachdesk/coachdesk/pkg/log/ctxlogger"
	"github.com/gin-gonic/gin"
)

const (
	HeaderAPIKey = "X-Api-Key"
	HeaderBranch = "X-Branch-ID"
)

func hashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// APIKeyAuth compares the sha256 digest of the presented key with the
// configured digest. An empty configured digest disables auth (dev mode).
func (s *Server) APIKeyAuth() gin.HandlerFunc {
	expected := strings.ToLower(strings.TrimSpace(s.cfg.APIKeyHash))

	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader(HeaderAPIKey))
		if key == "" {
			auth := strings.TrimSpace(c.GetHeader("Authorization"))
			if strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}
		if key == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		got := hashAPIKey(key)
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Next()
	}
}

// BranchContext resolves the acting branch from the X-Branch-ID header,
// falling back to the configured default branch.
func (s *Server) BranchContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		branchID := snowflake.ID(s.cfg.DefaultBranchID)

		if raw := strings.TrimSpace(c.GetHeader(HeaderBranch)); raw != "" {
			parsed, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, newValidationError("branch_id", "invalid_branch", "invalid branch id"))
				return
			}
			branchID = parsed
		}

		if branchID == 0 {
			AbortWithError(c, newValidationError("branch_id", "invalid_branch", "branch id is required"))
			return
		}

		ctx := branchctx.WithBranchID(c.Request.Context(), branchID)
		ctx = ctxlogger.ContextWithBranch(ctx, branchID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
