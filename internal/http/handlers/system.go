package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/db-check
func (h *Handlers) DBCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		RespondDomainError(c, domain.TransientError(err))
		return
	}
	st := h.DB.Stats()
	missing := intdb.MissingTables(ctx, h.DB)
	status, code := "ok", http.StatusOK
	if len(missing) > 0 {
		status, code = "schema_incomplete", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":           status,
		"missing_tables":   missing,
		"open_connections": st.OpenConnections,
		"in_use":           st.InUse,
		"idle":             st.Idle,
		"wait_count":       st.WaitCount,
		"wait_duration_ms": st.WaitDuration.Milliseconds(),
	})
}
