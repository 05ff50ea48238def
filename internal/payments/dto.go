package payments

import (
	"time"

	"github.com/abhinavece/matchpay-backend/pkg/db/models"
	"github.com/abhinavece/matchpay-backend/pkg/enums"
	"github.com/abhinavece/matchpay-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemberInput is one player handed to create_payment or add_member.
type MemberInput struct {
	PlayerID    *uuid.UUID `json:"player_id,omitempty"`
	PlayerName  string     `json:"player_name" validate:"required"`
	PlayerPhone string     `json:"player_phone" validate:"required"`
}

// CreatePaymentInput starts a collection for one match.
type CreatePaymentInput struct {
	MatchID     string          `json:"match_id" validate:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"required"`
	Members     []MemberInput   `json:"members" validate:"required,min=1,dive"`
}

// RecordPaymentInput appends one entry to a member's payment history.
type RecordPaymentInput struct {
	Amount decimal.Decimal     `json:"amount" validate:"required"`
	Method enums.PaymentMethod `json:"method"`
	Notes  *string             `json:"notes,omitempty"`
	PaidAt *time.Time          `json:"paid_at,omitempty"`
}

// SendRequestsInput selects recipients for payment-request dispatch. An empty
// MemberIDs list means every member with a positive due amount.
type SendRequestsInput struct {
	MemberIDs       []uuid.UUID `json:"member_ids,omitempty"`
	MessageTemplate string      `json:"message_template,omitempty"`
}

// EntryView is one payment-history row.
type EntryView struct {
	ID     uuid.UUID           `json:"id"`
	Amount decimal.Decimal     `json:"amount"`
	Method enums.PaymentMethod `json:"method"`
	Notes  *string             `json:"notes,omitempty"`
	PaidAt time.Time           `json:"paid_at"`
}

// MemberView is one member's ledger as the UI consumes it. Due, owed and
// status are derived on every read.
type MemberView struct {
	ID          uuid.UUID  `json:"id"`
	PlayerID    *uuid.UUID `json:"player_id,omitempty"`
	PlayerName  string     `json:"player_name"`
	PlayerPhone string     `json:"player_phone"`

	CalculatedAmount decimal.Decimal  `json:"calculated_amount"`
	AdjustedAmount   *decimal.Decimal `json:"adjusted_amount,omitempty"`
	EffectiveAmount  decimal.Decimal  `json:"effective_amount"`
	AmountPaid       decimal.Decimal  `json:"amount_paid"`
	SettledAmount    decimal.Decimal  `json:"settled_amount"`
	DueAmount        decimal.Decimal  `json:"due_amount"`
	OwedAmount       decimal.Decimal  `json:"owed_amount"`

	PaymentStatus  enums.MemberPaymentStatus `json:"payment_status"`
	PaymentHistory []EntryView               `json:"payment_history"`

	MessageSentAt        *time.Time `json:"message_sent_at,omitempty"`
	ScreenshotReceivedAt *time.Time `json:"screenshot_received_at,omitempty"`
}

// PaymentView is the full payment with derived aggregates.
type PaymentView struct {
	ID          uuid.UUID       `json:"id"`
	MatchID     string          `json:"match_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`

	Status         enums.PaymentStatus `json:"status"`
	TotalCollected decimal.Decimal     `json:"total_collected"`
	TotalPending   decimal.Decimal     `json:"total_pending"`
	TotalOwed      decimal.Decimal     `json:"total_owed"`
	// Unallocated is nonzero only when every member is pinned and the pins
	// do not add up to the total. Surfaced, never absorbed.
	Unallocated decimal.Decimal `json:"unallocated"`

	PaidCount    int `json:"paid_count"`
	MembersCount int `json:"members_count"`

	Members []MemberView `json:"members"`

	RequestsSentAt *time.Time `json:"requests_sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DispatchResult reports one recipient's outcome from send_payment_requests.
type DispatchResult struct {
	MemberID   uuid.UUID `json:"member_id"`
	PlayerName string    `json:"player_name"`
	Sent       bool      `json:"sent"`
	Error      string    `json:"error,omitempty"`
}

// SendRequestsResult is the batch summary plus per-recipient detail.
type SendRequestsResult struct {
	Sent    int              `json:"sent"`
	Failed  int              `json:"failed"`
	Results []DispatchResult `json:"results"`
	Payment *PaymentView     `json:"payment"`
}

// RemoveMemberResult carries the refreshed payment plus whatever the removed
// member had paid, which is abandoned from the aggregates.
type RemoveMemberResult struct {
	Payment         *PaymentView    `json:"payment"`
	AbandonedAmount decimal.Decimal `json:"abandoned_amount"`
}

func newMemberView(m models.SquadMember) MemberView {
	ledger := DeriveMemberLedger(m)

	view := MemberView{
		ID:                   m.ID,
		PlayerID:             m.PlayerID,
		PlayerName:           m.PlayerName,
		PlayerPhone:          m.PlayerPhone,
		CalculatedAmount:     money.DecimalFromPaise(m.CalculatedPaise),
		EffectiveAmount:      money.DecimalFromPaise(ledger.EffectivePaise),
		AmountPaid:           money.DecimalFromPaise(m.AmountPaidPaise),
		SettledAmount:        money.DecimalFromPaise(m.SettledPaise),
		DueAmount:            money.DecimalFromPaise(ledger.DuePaise),
		OwedAmount:           money.DecimalFromPaise(ledger.OwedPaise),
		PaymentStatus:        ledger.Status,
		PaymentHistory:       make([]EntryView, 0, len(m.Entries)),
		MessageSentAt:        m.MessageSentAt,
		ScreenshotReceivedAt: m.ScreenshotReceivedAt,
	}
	if m.AdjustedPaise != nil {
		adjusted := money.DecimalFromPaise(*m.AdjustedPaise)
		view.AdjustedAmount = &adjusted
	}
	for _, entry := range m.Entries {
		view.PaymentHistory = append(view.PaymentHistory, EntryView{
			ID:     entry.ID,
			Amount: money.DecimalFromPaise(entry.AmountPaise),
			Method: entry.Method,
			Notes:  entry.Notes,
			PaidAt: entry.PaidAt,
		})
	}
	return view
}

// NewPaymentView projects a stored payment into its derived API shape.
func NewPaymentView(p models.Payment) *PaymentView {
	agg := DeriveAggregates(p)

	view := &PaymentView{
		ID:             p.ID,
		MatchID:        p.MatchID,
		TotalAmount:    money.DecimalFromPaise(p.TotalPaise),
		Status:         agg.Status,
		TotalCollected: money.DecimalFromPaise(agg.TotalCollectedPaise),
		TotalPending:   money.DecimalFromPaise(agg.TotalPendingPaise),
		TotalOwed:      money.DecimalFromPaise(agg.TotalOwedPaise),
		Unallocated:    money.DecimalFromPaise(agg.UnallocatedPaise),
		PaidCount:      agg.PaidCount,
		MembersCount:   agg.MembersCount,
		Members:        make([]MemberView, 0, len(p.Members)),
		RequestsSentAt: p.RequestsSentAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for _, m := range p.Members {
		view.Members = append(view.Members, newMemberView(m))
	}
	return view
}
