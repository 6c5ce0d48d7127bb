package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ticketoffice/internal/domain"
)

// bindJSON decodes the body into dst and reports a validation error otherwise.
func bindJSON[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondDomainError(c, domain.ValidationError{Field: "body", Msg: "request body is empty"})
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "body", Msg: "malformed payload", Err: err})
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: name, Msg: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query param; absent means def.
func queryInt(c *gin.Context, name string, def int64) (int64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		RespondDomainError(c, domain.ValidationError{Field: name, Msg: "must be a non-negative integer"})
		return 0, false
	}
	return n, true
}
