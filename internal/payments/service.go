package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhinavece/matchpay-backend/internal/audit"
	"github.com/abhinavece/matchpay-backend/internal/messaging"
	"github.com/abhinavece/matchpay-backend/pkg/db/models"
	"github.com/abhinavece/matchpay-backend/pkg/enums"
	apperrors "github.com/abhinavece/matchpay-backend/pkg/errors"
	"github.com/abhinavece/matchpay-backend/pkg/events"
	"github.com/abhinavece/matchpay-backend/pkg/logger"
	"github.com/abhinavece/matchpay-backend/pkg/metrics"
	"github.com/abhinavece/matchpay-backend/pkg/money"
	"github.com/abhinavece/matchpay-backend/pkg/phone"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the reconciliation API: every mutation on a payment is atomic
// and serialized through the payment row lock.
type Service interface {
	CreatePayment(ctx context.Context, actorID uuid.UUID, input CreatePaymentInput) (*PaymentView, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentView, error)
	ListPayments(ctx context.Context) ([]PaymentView, error)
	ListByMatch(ctx context.Context, matchID string) ([]PaymentView, error)
	UpdateTotalAmount(ctx context.Context, actorID, paymentID uuid.UUID, total decimal.Decimal) (*PaymentView, error)
	AddMember(ctx context.Context, actorID, paymentID uuid.UUID, input MemberInput) (*PaymentView, error)
	RemoveMember(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (*RemoveMemberResult, error)
	PinMemberAmount(ctx context.Context, actorID, paymentID, memberID uuid.UUID, amount *decimal.Decimal) (*PaymentView, error)
	RecordPayment(ctx context.Context, actorID, paymentID, memberID uuid.UUID, input RecordPaymentInput) (*PaymentView, error)
	MarkUnpaid(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (*PaymentView, error)
	SettleOverpayment(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (*PaymentView, error)
	SendPaymentRequests(ctx context.Context, actorID, paymentID uuid.UUID, input SendRequestsInput) (*SendRequestsResult, error)
	DeletePayment(ctx context.Context, actorID, paymentID uuid.UUID) error
	MarkScreenshotReceived(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (*PaymentView, error)
}

// TxRunner runs a function inside a database transaction. Satisfied by
// *db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceDeps wires the reconciliation service.
type ServiceDeps struct {
	Tx         TxRunner
	Repo       Repository
	Audit      audit.Service
	Dispatcher messaging.Dispatcher
	Logger     *logger.Logger
	Metrics    *metrics.LedgerMetrics
	Events     *events.Publisher
	Dispatch   messaging.FanOutOptions
}

type service struct {
	tx         TxRunner
	repo       Repository
	audit      audit.Service
	dispatcher messaging.Dispatcher
	logg       *logger.Logger
	metrics    *metrics.LedgerMetrics
	events     *events.Publisher
	dispatch   messaging.FanOutOptions
}

// NewService validates dependencies and returns the reconciliation service.
func NewService(deps ServiceDeps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if deps.Audit == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("messaging dispatcher required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:         deps.Tx,
		repo:       deps.Repo,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		logg:       deps.Logger,
		metrics:    deps.Metrics,
		events:     deps.Events,
		dispatch:   deps.Dispatch,
	}, nil
}

func (s *service) CreatePayment(ctx context.Context, actorID uuid.UUID, input CreatePaymentInput) (_ *PaymentView, err error) {
	defer func() { s.metrics.IncOperation("create_payment", err) }()

	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if input.MatchID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "match id is required")
	}
	totalPaise, err := positivePaise(input.TotalAmount, "total amount")
	if err != nil {
		return nil, err
	}
	if len(input.Members) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "at least one squad member is required")
	}

	// squad snapshots can repeat a player; keep the first occurrence per
	// normalized phone
	seen := map[string]bool{}
	members := make([]*models.SquadMember, 0, len(input.Members))
	for _, in := range input.Members {
		if in.PlayerName == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "player name is required")
		}
		if !phone.Valid(in.PlayerPhone) {
			return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("malformed phone %q", in.PlayerPhone))
		}
		normalized := phone.Normalize(in.PlayerPhone)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		members = append(members, &models.SquadMember{
			ID:          uuid.New(),
			PlayerID:    in.PlayerID,
			PlayerName:  in.PlayerName,
			PlayerPhone: normalized,
			Position:    len(members),
		})
	}

	if _, err := Resplit(totalPaise, members); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:         uuid.New(),
		MatchID:    input.MatchID,
		TotalPaise: totalPaise,
	}

	var out *models.Payment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return err
		}
		for _, m := range members {
			m.PaymentID = payment.ID
			if err := repo.CreateMember(ctx, m); err != nil {
				return err
			}
		}
		if _, err := s.audit.WithTx(tx).RecordEvent(ctx, audit.RecordEventInput{
			PaymentID:   payment.ID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventPaymentCreated,
			AmountPaise: totalPaise,
		}); err != nil {
			return err
		}

		refreshed, err := repo.FindPaymentByID(ctx, payment.ID)
		if err != nil {
			return err
		}
		out = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerEventPaymentCreated, payment.ID, nil, actorID, totalPaise)
	return NewPaymentView(*out), nil
}

func (s *service) GetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentView, error) {
	payment, err := s.repo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, asNotFound(err, "payment")
	}
	return NewPaymentView(*payment), nil
}

func (s *service) ListPayments(ctx context.Context) ([]PaymentView, error) {
	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	return projectViews(payments), nil
}

func (s *service) ListByMatch(ctx context.Context, matchID string) ([]PaymentView, error) {
	if matchID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "match id is required")
	}
	payments, err := s.repo.FindPaymentsByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return projectViews(payments), nil
}

func (s *service) UpdateTotalAmount(ctx context.Context, actorID, paymentID uuid.UUID, total decimal.Decimal) (_ *PaymentView, err error) {
	defer func() { s.metrics.IncOperation("update_total_amount", err) }()

	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	totalPaise, err := positivePaise(total, "total amount")
	if err != nil {
		return nil, err
	}

	out, err := s.mutatePayment(ctx, paymentID, func(tx *gorm.DB, repo Repository, payment *models.Payment) error {
		payment.TotalPaise = totalPaise
		if err := s.resplitAndSave(ctx, repo, payment); err != nil {
			return err
		}
		if err := repo.SavePayment(ctx, payment); err != nil {
			return err
		}
		return s.recordAudit(ctx, tx, audit.RecordEventInput{
			PaymentID:   paymentID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventTotalUpdated,
			AmountPaise: totalPaise,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerEventTotalUpdated, paymentID, nil, actorID, totalPaise)
	return NewPaymentView(*out), nil
}

func (s *service) AddMember(ctx context.Context, actorID, paymentID uuid.UUID, input MemberInput) (_ *PaymentView, err error) {
	defer func() { s.metrics.IncOperation("add_member", err) }()

	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if input.PlayerName == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "player name is required")
	}
	if !phone.Valid(input.PlayerPhone) {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("malformed phone %q", input.PlayerPhone))
	}

	var newMemberID uuid.UUID
	out, err := s.mutatePayment(ctx, paymentID, func(tx *gorm.DB, repo Repository, payment *models.Payment) error {
		normalized := phone.Normalize(input.PlayerPhone)
		position := 0
		for i := range payment.Members {
			if phone.Same(payment.Members[i].PlayerPhone, normalized) {
				return apperrors.New(apperrors.CodeDuplicate,
					fmt.Sprintf("member with phone %s already exists", normalized))
			}
			if payment.Members[i].Position >= position {
				position = payment.Members[i].Position + 1
			}
		}

		member := &models.SquadMember{
			ID:          uuid.New(),
			PaymentID:   payment.ID,
			PlayerID:    input.PlayerID,
			PlayerName:  input.PlayerName,
			PlayerPhone: normalized,
			Position:    position,
		}
		if err := repo.CreateMember(ctx, member); err != nil {
			return err
		}
		newMemberID = member.ID

		payment.Members = append(payment.Members, *member)
		if err := s.resplitAndSave(ctx, repo, payment); err != nil {
			return err
		}
		return s.recordAudit(ctx, tx, audit.RecordEventInput{
			PaymentID:   paymentID,
			MemberID:    &member.ID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventMemberAdded,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerEventMemberAdded, paymentID, &newMemberID, actorID, 0)
	return NewPaymentView(*out), nil
}

func (s *service) RemoveMember(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (_ *RemoveMemberResult, err error) {
	defer func() { s.metrics.IncOperation("remove_member", err) }()

	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var abandoned int64
	out, err := s.mutatePayment(ctx, paymentID, func(tx *gorm.DB, repo Repository, payment *models.Payment) error {
		member := findMember(payment, memberID)
		if member == nil {
			return apperrors.New(apperrors.CodeNotFound, "squad member not found")
		}
		abandoned = member.AmountPaidPaise
		if abandoned > 0 {
			mctx := s.logg.WithMemberID(s.logg.WithPaymentID(ctx, paymentID.String()), memberID.String())
			s.logg.Warn(mctx, fmt.Sprintf("removing member with %d paise paid; amount abandoned from aggregates", abandoned))
		}

		if err := repo.DeleteMember(ctx, memberID); err != nil {
			return err
		}

		survivors := make([]models.SquadMember, 0, len(payment.Members)-1)
		for i := range payment.Members {
			if payment.Members[i].ID != memberID {
				survivors = append(survivors, payment.Members[i])
			}
		}
		payment.Members = survivors
		if err := s.resplitAndSave(ctx, repo, payment); err != nil {
			return err
		}
		return s.recordAudit(ctx, tx, audit.RecordEventInput{
			PaymentID:   paymentID,
			MemberID:    &memberID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventMemberRemoved,
			AmountPaise: abandoned,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerEventMemberRemoved, paymentID, &memberID, actorID, abandoned)
	return &RemoveMemberResult{
		Payment:         NewPaymentView(*out),
		AbandonedAmount: money.DecimalFromPaise(abandoned),
	}, nil
}

func (s *service) PinMemberAmount(ctx context.Context, actorID, paymentID, memberID uuid.UUID, amount *decimal.Decimal) (_ *PaymentView, err error) {
	defer func() { s.metrics.IncOperation("pin_member_amount", err) }()

	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var pinned *int64
	if amount != nil {
		paise, err := money.PaiseFromDecimal(*amount)
		if err != nil {
			return nil, err
		}
		if paise < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "pinned amount must not be negative")
		}
		pinned = &paise
	}

	var auditAmount int64
	out, err := s.mutatePayment(ctx, paymentID, func(tx *gorm.DB, repo Repository, payment *models.Payment) error {
		member := findMember(payment, memberID)
		if member == nil {
			return apperrors.New(apperrors.CodeNotFound, "squad member not found")
		}
		member.AdjustedPaise = pinned
		if pinned != nil {
			auditAmount = *pinned
		}
		if err := s.resplitAndSave(ctx, repo, payment); err != nil {
			return err
		}
		return s.recordAudit(ctx, tx, audit.RecordEventInput{
			PaymentID:   paymentID,
			MemberID:    &memberID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventMemberPinned,
			AmountPaise: auditAmount,
			Metadata:    jsonMeta(map[string]any{"cleared": pinned == nil}),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerEventMemberPinned, paymentID, &memberID, actorID, auditAmount)
	return NewPaymentView(*out), nil
}

func (s *service) RecordPayment(ctx context.Context, actorID, paymentID, memberID uuid.UUID, input RecordPaymentInput) (_ *PaymentView, err error) {
	defer func() { s.metrics.IncOperation("record_payment", err) }()

	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	amountPaise, err := positivePaise(input.Amount, "payment amount")
	if err != nil {
		return nil, err
	}
	method := input.Method
	if method == "" {
		method = enums.PaymentMethodUPI
	}
	if !method.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}
	paidAt := time.Now().UTC()
	if input.PaidAt != nil {
		paidAt = input.PaidAt.UTC()
	}

	out, err := s.mutatePayment(ctx, paymentID, func(tx *gorm.DB, repo Repository, payment *models.Payment) error {
		member := findMember(payment, memberID)
		if member == nil {
			return apperrors.New(apperrors.CodeNotFound, "squad member not found")
		}

		entry := &models.PaymentEntry{
			ID:          uuid.New(),
			MemberID:    member.ID,
			AmountPaise: amountPaise,
			Method:      method,
			Notes:       input.Notes,
			PaidAt:      paidAt,
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return err
		}

		// overpayment is a valid, trackable state; no upper bound here
		member.AmountPaidPaise += amountPaise
		if err := repo.SaveMember(ctx, member); err != nil {
			return err
		}
		return s.recordAudit(ctx, tx, audit.RecordEventInput{
			PaymentID:   paymentID,
			MemberID:    &memberID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventPaymentRecorded,
			AmountPaise: amountPaise,
			Metadata:    jsonMeta(map[string]any{"method": method}),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerEventPaymentRecorded, paymentID, &memberID, actorID, amountPaise)
	return NewPaymentView(*out), nil
}

func (s *service) MarkUnpaid(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (_ *PaymentView, err error) {
	defer func() { s.metrics.IncOperation("mark_unpaid", err) }()

	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var reversed int64
	out, err := s.mutatePayment(ctx, paymentID, func(tx *gorm.DB, repo Repository, payment *models.Payment) error {
		member := findMember(payment, memberID)
		if member == nil {
			return apperrors.New(apperrors.CodeNotFound, "squad member not found")
		}

		reversed = member.AmountPaidPaise
		if err := repo.DeleteEntriesByMember(ctx, memberID); err != nil {
			return err
		}
		member.AmountPaidPaise = 0
		member.SettledPaise = 0
		if err := repo.SaveMember(ctx, member); err != nil {
			return err
		}
		return s.recordAudit(ctx, tx, audit.RecordEventInput{
			PaymentID:   paymentID,
			MemberID:    &memberID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventMarkedUnpaid,
			AmountPaise: reversed,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerEventMarkedUnpaid, paymentID, &memberID, actorID, reversed)
	return NewPaymentView(*out), nil
}

func (s *service) SettleOverpayment(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (_ *PaymentView, err error) {
	defer func() { s.metrics.IncOperation("settle_overpayment", err) }()

	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var settled int64
	var recipient models.SquadMember
	out, err := s.mutatePayment(ctx, paymentID, func(tx *gorm.DB, repo Repository, payment *models.Payment) error {
		member := findMember(payment, memberID)
		if member == nil {
			return apperrors.New(apperrors.CodeNotFound, "squad member not found")
		}

		ledger := DeriveMemberLedger(*member)
		if ledger.OwedPaise == 0 {
			return apperrors.New(apperrors.CodeConflict, "member has no overpayment to settle")
		}

		settled = ledger.OwedPaise
		member.SettledPaise += settled
		if err := repo.SaveMember(ctx, member); err != nil {
			return err
		}
		recipient = *member
		return s.recordAudit(ctx, tx, audit.RecordEventInput{
			PaymentID:   paymentID,
			MemberID:    &memberID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventOverpaymentSettled,
			AmountPaise: settled,
		})
	})
	if err != nil {
		return nil, err
	}

	// refund notice is best-effort; the settlement already committed
	notice := messaging.Message{
		MemberID: memberID,
		Phone:    recipient.PlayerPhone,
		Body: fmt.Sprintf("Hi %s, your overpayment of Rs %s has been settled back to you.",
			recipient.PlayerName, money.FormatRupees(settled)),
	}
	if sendErr := s.dispatcher.Send(ctx, notice); sendErr != nil {
		s.logg.Error(s.logg.WithPaymentID(ctx, paymentID.String()), "settlement notice dispatch failed", sendErr)
	}

	s.publish(ctx, enums.LedgerEventOverpaymentSettled, paymentID, &memberID, actorID, settled)
	return NewPaymentView(*out), nil
}

func (s *service) SendPaymentRequests(ctx context.Context, actorID, paymentID uuid.UUID, input SendRequestsInput) (_ *SendRequestsResult, err error) {
	defer func() { s.metrics.IncOperation("send_payment_requests", err) }()

	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	payment, err := s.repo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, asNotFound(err, "payment")
	}

	recipients, err := selectRecipients(payment, input.MemberIDs)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "no members with a due amount to notify")
	}

	msgs := make([]messaging.Message, 0, len(recipients))
	for _, m := range recipients {
		due := DeriveMemberLedger(*m).DuePaise
		msgs = append(msgs, messaging.Message{
			MemberID: m.ID,
			Phone:    m.PlayerPhone,
			Body:     messaging.RenderTemplate(input.MessageTemplate, m.PlayerName, money.FormatRupees(due)),
		})
	}

	// dispatch happens outside the payment lock; each recipient is
	// independent and a failure only affects that recipient
	dispatchResults, dispatchErr := messaging.FanOut(ctx, s.dispatcher, msgs, s.dispatch)
	if dispatchErr != nil {
		s.logg.Warn(s.logg.WithPaymentID(ctx, paymentID.String()),
			fmt.Sprintf("payment request dispatch had failures: %v", dispatchErr))
	}

	sentIDs := make([]uuid.UUID, 0, len(dispatchResults))
	results := make([]DispatchResult, 0, len(dispatchResults))
	for i, res := range dispatchResults {
		out := DispatchResult{
			MemberID:   res.MemberID,
			PlayerName: recipients[i].PlayerName,
			Sent:       res.Err == nil,
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		} else {
			sentIDs = append(sentIDs, res.MemberID)
		}
		results = append(results, out)
	}
	sent := len(sentIDs)
	failed := len(results) - sent
	s.metrics.AddDispatchResults(sent, failed)

	refreshed, err := s.mutatePayment(ctx, paymentID, func(tx *gorm.DB, repo Repository, payment *models.Payment) error {
		now := time.Now().UTC()
		for _, id := range sentIDs {
			member := findMember(payment, id)
			if member == nil {
				continue // removed concurrently; nothing to mark
			}
			member.MessageSentAt = &now
			if err := repo.SaveMember(ctx, member); err != nil {
				return err
			}
		}
		if sent > 0 && payment.RequestsSentAt == nil {
			payment.RequestsSentAt = &now
			if err := repo.SavePayment(ctx, payment); err != nil {
				return err
			}
		}
		return s.recordAudit(ctx, tx, audit.RecordEventInput{
			PaymentID:   paymentID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventRequestsSent,
			Metadata:    jsonMeta(map[string]any{"sent": sent, "failed": failed}),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerEventRequestsSent, paymentID, nil, actorID, 0)
	return &SendRequestsResult{
		Sent:    sent,
		Failed:  failed,
		Results: results,
		Payment: NewPaymentView(*refreshed),
	}, nil
}

func (s *service) DeletePayment(ctx context.Context, actorID, paymentID uuid.UUID) (err error) {
	defer func() { s.metrics.IncOperation("delete_payment", err) }()

	if err := requireActor(actorID); err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.FindPaymentForUpdate(ctx, paymentID)
		if err != nil {
			return asNotFound(err, "payment")
		}
		if err := repo.DeletePayment(ctx, payment.ID); err != nil {
			return err
		}
		// ledger events survive the payment; they are the audit trail
		return s.recordAudit(ctx, tx, audit.RecordEventInput{
			PaymentID:   paymentID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventPaymentDeleted,
			AmountPaise: payment.TotalPaise,
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, enums.LedgerEventPaymentDeleted, paymentID, nil, actorID, 0)
	return nil
}

func (s *service) MarkScreenshotReceived(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (_ *PaymentView, err error) {
	defer func() { s.metrics.IncOperation("mark_screenshot_received", err) }()

	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	out, err := s.mutatePayment(ctx, paymentID, func(tx *gorm.DB, repo Repository, payment *models.Payment) error {
		member := findMember(payment, memberID)
		if member == nil {
			return apperrors.New(apperrors.CodeNotFound, "squad member not found")
		}
		now := time.Now().UTC()
		member.ScreenshotReceivedAt = &now
		if err := repo.SaveMember(ctx, member); err != nil {
			return err
		}
		return s.recordAudit(ctx, tx, audit.RecordEventInput{
			PaymentID:   paymentID,
			MemberID:    &memberID,
			ActorUserID: actorID,
			Type:        enums.LedgerEventScreenshotReceived,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerEventScreenshotReceived, paymentID, &memberID, actorID, 0)
	return NewPaymentView(*out), nil
}

// mutatePayment serializes one read-modify-write on a payment: lock the row,
// apply fn, then reload the full graph inside the same transaction.
func (s *service) mutatePayment(ctx context.Context, paymentID uuid.UUID, fn func(tx *gorm.DB, repo Repository, payment *models.Payment) error) (*models.Payment, error) {
	var out *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.FindPaymentForUpdate(ctx, paymentID)
		if err != nil {
			return asNotFound(err, "payment")
		}
		if err := fn(tx, repo, payment); err != nil {
			return err
		}
		refreshed, err := repo.FindPaymentByID(ctx, paymentID)
		if err != nil {
			return err
		}
		out = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) resplitAndSave(ctx context.Context, repo Repository, payment *models.Payment) error {
	members := make([]*models.SquadMember, len(payment.Members))
	for i := range payment.Members {
		members[i] = &payment.Members[i]
	}

	start := time.Now()
	result, err := Resplit(payment.TotalPaise, members)
	if err != nil {
		return err
	}
	s.metrics.ObserveSplit(time.Since(start))

	if result.UnallocatedPaise != 0 {
		pctx := s.logg.WithPaymentID(ctx, payment.ID.String())
		s.logg.Warn(pctx, fmt.Sprintf("all members pinned; %d paise unallocated", result.UnallocatedPaise))
	}
	return repo.SaveMembers(ctx, members)
}

func (s *service) recordAudit(ctx context.Context, tx *gorm.DB, input audit.RecordEventInput) error {
	_, err := s.audit.WithTx(tx).RecordEvent(ctx, input)
	return err
}

func (s *service) publish(ctx context.Context, eventType enums.LedgerEventType, paymentID uuid.UUID, memberID *uuid.UUID, actorID uuid.UUID, amountPaise int64) {
	err := s.events.Publish(ctx, events.LedgerEvent{
		PaymentID:   paymentID,
		MemberID:    memberID,
		ActorUserID: actorID,
		Type:        eventType,
		AmountPaise: amountPaise,
	})
	if err != nil {
		s.logg.Error(s.logg.WithPaymentID(ctx, paymentID.String()), "ledger event publish failed", err)
	}
}

func selectRecipients(payment *models.Payment, memberIDs []uuid.UUID) ([]*models.SquadMember, error) {
	if len(memberIDs) == 0 {
		due := make([]*models.SquadMember, 0, len(payment.Members))
		for i := range payment.Members {
			if DeriveMemberLedger(payment.Members[i]).DuePaise > 0 {
				due = append(due, &payment.Members[i])
			}
		}
		return due, nil
	}

	selected := make([]*models.SquadMember, 0, len(memberIDs))
	for _, id := range memberIDs {
		member := findMember(payment, id)
		if member == nil {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("squad member %s not found", id))
		}
		selected = append(selected, member)
	}
	return selected, nil
}

func findMember(payment *models.Payment, memberID uuid.UUID) *models.SquadMember {
	for i := range payment.Members {
		if payment.Members[i].ID == memberID {
			return &payment.Members[i]
		}
	}
	return nil
}

func projectViews(payments []models.Payment) []PaymentView {
	views := make([]PaymentView, 0, len(payments))
	for i := range payments {
		views = append(views, *NewPaymentView(payments[i]))
	}
	return views
}

func positivePaise(amount decimal.Decimal, field string) (int64, error) {
	paise, err := money.PaiseFromDecimal(amount)
	if err != nil {
		return 0, err
	}
	if paise <= 0 {
		return 0, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("%s must be positive", field))
	}
	return paise, nil
}

func requireActor(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "actor user id is required")
	}
	return nil
}

func asNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(apperrors.CodeNotFound, resource+" not found")
	}
	return err
}

func jsonMeta(fields map[string]any) json.RawMessage {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return raw
}
