package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ticketoffice/internal/clock"
	intconfig "ticketoffice/internal/config"
	intdb "ticketoffice/internal/db"
	router "ticketoffice/internal/http"
	"ticketoffice/internal/http/handlers"
	"ticketoffice/internal/logger"
	"ticketoffice/internal/messaging"
	"ticketoffice/internal/repositories"
	"ticketoffice/internal/services"
)

func main() {
	env := intconfig.LoadEnv()
	if err := env.Validate(); err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	logger.Init(env.LogLevel, env.LogFormat)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := intconfig.OpenDB(ctx, env.DB)
	if err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	defer db.Close()

	if env.DB.RunMigrations {
		if err := intdb.RunMigrations(ctx, db); err != nil {
			logger.Fatal("migrations failed", "error", err)
		}
	}

	events, err := messaging.NewPublisher(messaging.Config{
		URL:       env.NATSURL,
		ClusterID: env.NATSClusterID,
		ClientID:  env.NATSClientID,
	})
	if err != nil {
		log.Warn("event publisher unavailable, continuing without events", "error", err)
		events = messaging.NopPublisher{}
	}
	defer events.Close()

	clk := clock.NewSystem()
	tx := repositories.TxManager{DB: db}
	trips := repositories.TripRepository{DB: db}
	tickets := repositories.TicketRepository{DB: db}
	payments := repositories.PaymentRepository{DB: db}

	auth := services.AuthService{
		Agents: repositories.AgentRepository{DB: db},
		Secret: []byte(env.JWTSecret),
		TTL:    env.JWTTTL,
		Clock:  clk,
	}
	if env.AdminUsername != "" && env.AdminPassword != "" {
		if err := auth.EnsureAdmin(ctx, env.AdminUsername, env.AdminPassword); err != nil {
			logger.Fatal("seeding admin agent failed", "error", err)
		}
	}

	seatMaps := services.SeatMapService{Trips: trips, Seats: tickets}
	hs := &handlers.Handlers{
		Auth:      auth,
		Trips:     trips,
		SeatMaps:  seatMaps,
		Occupancy: services.OccupancyService{SeatMaps: seatMaps},
		Fares:     services.FareService{Rules: repositories.FareRuleRepository{DB: db}, Trips: trips},
		Sales: services.BookingService{
			Tx:        tx,
			Trips:     trips,
			Tickets:   tickets,
			Payments:  payments,
			Customers: repositories.CustomerRepository{DB: db},
			Clock:     clk,
			Events:    events,
		},
		Cancellations: services.CancellationService{
			Tx:       tx,
			Trips:    trips,
			Tickets:  tickets,
			Payments: payments,
			Clock:    clk,
			MinLead:  env.MinCancelLead,
			Events:   events,
		},
		Tickets: services.TicketQueryService{Tickets: tickets},
		Docs:    services.DocsService{Tickets: tickets, Clock: clk},
		Deactivation: services.DeactivationService{
			Tx:    tx,
			Store: repositories.DeactivationRepository{DB: db},
			Clock: clk,
		},
		DB: db,
	}

	sweeper := &services.UsageSweeper{Tickets: tickets, Clock: clk, Interval: env.UsageSweepInterval, Events: events}
	sweeper.Start(ctx)
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           router.NewRouter(env, hs, auth),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("ticket office API listening", "addr", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
