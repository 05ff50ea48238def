package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/abhinavece/matchpay-backend/pkg/config"
	"github.com/abhinavece/matchpay-backend/pkg/enums"
	"github.com/abhinavece/matchpay-backend/pkg/logger"
	"github.com/google/uuid"
)

// LedgerEvent is the envelope published to the ledger topic after a
// reconciliation operation commits. Consumers (analytics, notification
// digests) read these; the HTTP path never depends on publish success.
type LedgerEvent struct {
	PaymentID   uuid.UUID             `json:"payment_id"`
	MemberID    *uuid.UUID            `json:"member_id,omitempty"`
	ActorUserID uuid.UUID             `json:"actor_user_id"`
	Type        enums.LedgerEventType `json:"type"`
	AmountPaise int64                 `json:"amount_paise"`
	OccurredAt  time.Time             `json:"occurred_at"`
}

// Publisher publishes ledger events. A nil *Publisher is a no-op so the
// service can run without Pub/Sub configured (local development, tests).
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
}

var errProjectIDRequired = errors.New("gcp project id is required")

// NewPublisher creates a publish-only Pub/Sub v2 client for the ledger topic.
func NewPublisher(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Publisher, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	topic := strings.TrimSpace(cfg.LedgerTopic)
	if topic == "" {
		return nil, errors.New("pubsub ledger topic is required")
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	p := &Publisher{
		client:    psClient,
		publisher: psClient.Publisher(topicResourceName(gcp.ProjectID, topic)),
		topic:     topic,
	}

	if logg != nil {
		logg.Info(ctx, "ledger event publisher initialized")
	}
	return p, nil
}

// Publish sends one ledger event. Failures are returned for the caller to
// log; they must never roll back the committed operation.
func (p *Publisher) Publish(ctx context.Context, event LedgerEvent) error {
	if p == nil || p.publisher == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding ledger event: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"type":       string(event.Type),
			"payment_id": event.PaymentID.String(),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing ledger event %s: %w", event.Type, err)
	}
	return nil
}

// Close releases the Pub/Sub client resources.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	if p.publisher != nil {
		p.publisher.Stop()
	}
	return p.client.Close()
}

func topicResourceName(projectID, name string) string {
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/topics/") {
		return name
	}
	return fmt.Sprintf("projects/%s/topics/%s", projectID, name)
}
