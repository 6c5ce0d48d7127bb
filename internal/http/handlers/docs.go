package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/tickets/:id/e-ticket
func (h *Handlers) GetETicketPDF(c *gin.Context) {
	h.servePDF(c, h.Docs.GenerateETicket)
}

// GET /api/tickets/:id/receipt
func (h *Handlers) GetReceiptPDF(c *gin.Context) {
	h.servePDF(c, h.Docs.GenerateReceipt)
}

func (h *Handlers) servePDF(c *gin.Context, render func(context.Context, int64) ([]byte, string, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := render(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
