package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhinavece/matchpay-backend/pkg/db/models"
	"github.com/abhinavece/matchpay-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service records immutable ledger events for reconciliation operations.
type Service interface {
	WithTx(tx *gorm.DB) Service
	RecordEvent(ctx context.Context, input RecordEventInput) (*models.LedgerEvent, error)
	History(ctx context.Context, paymentID uuid.UUID) ([]models.LedgerEvent, error)
}

type service struct {
	repo Repository
}

// RecordEventInput captures the immutable data a ledger event requires.
type RecordEventInput struct {
	PaymentID   uuid.UUID             `json:"payment_id"`
	MemberID    *uuid.UUID            `json:"member_id,omitempty"`
	ActorUserID uuid.UUID             `json:"actor_user_id"`
	Type        enums.LedgerEventType `json:"type"`
	AmountPaise int64                 `json:"amount_paise"`
	Metadata    json.RawMessage       `json:"metadata"`
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) RecordEvent(ctx context.Context, input RecordEventInput) (*models.LedgerEvent, error) {
	if input.PaymentID == uuid.Nil {
		return nil, fmt.Errorf("payment id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, fmt.Errorf("actor user id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid ledger event type %q", input.Type)
	}

	event := &models.LedgerEvent{
		PaymentID:   input.PaymentID,
		MemberID:    input.MemberID,
		ActorUserID: input.ActorUserID,
		Type:        input.Type,
		AmountPaise: input.AmountPaise,
		Metadata:    input.Metadata,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) History(ctx context.Context, paymentID uuid.UUID) ([]models.LedgerEvent, error) {
	if paymentID == uuid.Nil {
		return nil, fmt.Errorf("payment id is required")
	}
	return s.repo.ListByPaymentID(ctx, paymentID)
}
