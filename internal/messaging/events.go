package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"

	"ticketoffice/internal/domain"
	"ticketoffice/internal/logger"
)

const (
	SubjectTicketSold      = "ticket.sold"
	SubjectTicketCancelled = "ticket.cancelled"
	SubjectTicketsUsed     = "tickets.used"
)

// TicketEvent is the payload of ticket lifecycle subjects.
type TicketEvent struct {
	TicketID    int64               `json:"ticket_id"`
	TripID      int64               `json:"trip_id"`
	SeatNumber  int                 `json:"seat_number"`
	Status      domain.TicketStatus `json:"status"`
	Price       domain.Money        `json:"price"`
	Salesperson string              `json:"salesperson,omitempty"`
	OccurredAt  time.Time           `json:"occurred_at"`
	RequestID   string              `json:"request_id,omitempty"`
}

// Publisher delivers events after the owning transaction committed.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close() error
}

type Config struct {
	URL       string
	ClusterID string
	ClientID  string
}

// NATSPublisher publishes JSON payloads to NATS Streaming.
type NATSPublisher struct {
	conn stan.Conn
}

// NewPublisher connects to NATS Streaming, or returns a no-op publisher when
// no URL is configured.
func NewPublisher(cfg Config) (Publisher, error) {
	if cfg.URL == "" {
		return NopPublisher{}, nil
	}

	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8])
	conn, err := stan.Connect(cfg.ClusterID, clientID, stan.NatsURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS Streaming: %w", err)
	}

	logger.Get().Info("connected to NATS Streaming", "url", cfg.URL, "cluster", cfg.ClusterID, "client", clientID)
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish to subject %s: %w", subject, err)
	}
	logger.WithContext(ctx).Debug("event published", "subject", subject)
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// PublishBestEffort logs publish failures instead of returning them. The
// ticket state is already committed at this point.
func PublishBestEffort(ctx context.Context, p Publisher, subject string, event any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, event); err != nil {
		logger.WithContext(ctx).Error("failed to publish event", "subject", subject, "error", err)
	}
}
