package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ticketoffice/internal/domain"
)

// Deactivate returns a handler for DELETE /api/<kind>s/:id.
func (h *Handlers) Deactivate(kind domain.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := h.Deactivation.Deactivate(c.Request.Context(), kind, id); err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "kind": kind, "active": false})
	}
}
