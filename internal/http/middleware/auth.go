package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ticketoffice/internal/domain"
	"ticketoffice/internal/logger"
)

const (
	agentKey = "agent"
	roleKey  = "userRole"
)

// TokenParser verifies bearer tokens against the agent store.
type TokenParser interface {
	Authenticate(ctx context.Context, raw string) (domain.RequestContext, error)
}

// RequireAgent rejects requests without a valid bearer token and stores the
// agent on the gin and request contexts.
func RequireAgent(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		rc, err := parser.Authenticate(c.Request.Context(), strings.TrimSpace(raw))
		switch domain.KindOf(err) {
		case "":
		case domain.KindUnauthorized:
			abortAuth(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		case domain.KindTransientFailure:
			c.Header("Retry-After", "1")
			abortAuth(c, http.StatusServiceUnavailable, string(domain.KindTransientFailure), "temporary storage failure, safe to retry")
			return
		default:
			logger.WithContext(c.Request.Context()).Error("authentication failed", "error", err)
			abortAuth(c, http.StatusInternalServerError, string(domain.KindInternal), "internal error")
			return
		}
		c.Set(agentKey, rc)
		c.Set(roleKey, rc.Role)
		c.Request = c.Request.WithContext(logger.ContextWithAgentID(c.Request.Context(), rc.AgentID))
		c.Next()
	}
}

// Agent returns the authenticated agent, if any.
func Agent(c *gin.Context) (domain.RequestContext, bool) {
	v, ok := c.Get(agentKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}
