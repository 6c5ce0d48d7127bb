package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "ticketoffice/internal/config"
	"ticketoffice/internal/domain"
	h "ticketoffice/internal/http/handlers"
	"ticketoffice/internal/http/middleware"
	"ticketoffice/internal/logger"
	"ticketoffice/internal/metrics"
	"ticketoffice/internal/services"
)

// NewRouter wires the API routes. tokens verifies bearer tokens for every
// route except login and the ops endpoints.
func NewRouter(env intconfig.Env, hs *h.Handlers, tokens middleware.TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.CORSAllowedOrigins),
		middleware.Timeout(env.RequestTimeout),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Get().Warn("failed to set trusted proxies", "error", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, h.ErrorResponse{
			Error:     "route not found",
			Code:      string(domain.KindNotFound),
			RequestID: middleware.GetRequestID(c),
		})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/db-check", hs.DBCheck)
	api.POST("/auth/login", hs.Login)

	authed := api.Group("", middleware.RequireAgent(tokens), middleware.RequireRoles(services.RoleAgent, services.RoleAdmin))

	trips := authed.Group("/trips")
	trips.GET("/:id", hs.GetTrip)
	trips.GET("/:id/seats", hs.GetSeatMap)
	trips.GET("/:id/occupancy", hs.GetOccupancy)
	trips.GET("/:id/fare", hs.QuoteTripFare)

	authed.POST("/fares/quote", hs.QuoteFare)

	tickets := authed.Group("/tickets")
	tickets.POST("", hs.SellTicket)
	tickets.GET("", hs.FindTickets)
	tickets.GET("/:id", hs.GetTicket)
	tickets.POST("/:id/cancel", hs.CancelTicket)
	tickets.GET("/:id/e-ticket", hs.GetETicketPDF)
	tickets.GET("/:id/receipt", hs.GetReceiptPDF)

	admin := authed.Group("", middleware.RequireRoles(services.RoleAdmin))
	admin.DELETE("/trips/:id", hs.Deactivate(domain.EntityTrip))
	admin.DELETE("/stations/:id", hs.Deactivate(domain.EntityStation))
	admin.DELETE("/vehicles/:id", hs.Deactivate(domain.EntityVehicle))
	admin.DELETE("/carriers/:id", hs.Deactivate(domain.EntityCarrier))

	return r
}
