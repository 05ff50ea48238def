package payments

import (
	"github.com/abhinavece/matchpay-backend/pkg/db/models"
	"github.com/abhinavece/matchpay-backend/pkg/enums"
)

// MemberLedger is the derived view of one member's position. All fields are
// pure functions of the stored ledger; nothing here is ever written back.
type MemberLedger struct {
	EffectivePaise int64
	DuePaise       int64
	OwedPaise      int64
	Status         enums.MemberPaymentStatus
}

// DeriveMemberLedger recomputes a member's due, owed and status from the
// stored amounts. Net contribution is paid minus settled; due and owed can
// never both be positive.
func DeriveMemberLedger(m models.SquadMember) MemberLedger {
	effective := m.EffectivePaise()
	net := m.AmountPaidPaise - m.SettledPaise

	due := effective - m.AmountPaidPaise
	if due < 0 {
		due = 0
	}
	owed := net - effective
	if owed < 0 {
		owed = 0
	}

	ledger := MemberLedger{
		EffectivePaise: effective,
		DuePaise:       due,
		OwedPaise:      owed,
	}

	switch {
	case effective == 0 && net == 0:
		// free player, trivially satisfied
		ledger.Status = enums.MemberPaymentStatusPaid
	case net > effective:
		ledger.Status = enums.MemberPaymentStatusOverpaid
	case net == effective:
		ledger.Status = enums.MemberPaymentStatusPaid
	case net > 0:
		ledger.Status = enums.MemberPaymentStatusPartial
	default:
		ledger.Status = enums.MemberPaymentStatusPending
	}

	return ledger
}

// PaymentAggregates is the derived rollup across a payment's members.
type PaymentAggregates struct {
	TotalCollectedPaise int64
	TotalPendingPaise   int64
	TotalOwedPaise      int64
	UnallocatedPaise    int64
	PaidCount           int
	MembersCount        int
	Status              enums.PaymentStatus
}

// DeriveAggregates recomputes the payment-level rollup. Status follows the
// member set plus whether requests went out: completed when everyone is
// settled up, partial once any money arrived, sent after dispatch, else draft.
func DeriveAggregates(p models.Payment) PaymentAggregates {
	agg := PaymentAggregates{MembersCount: len(p.Members)}

	var effectiveSum int64
	anyPaid := false
	allSettledUp := true
	for _, m := range p.Members {
		ledger := DeriveMemberLedger(m)
		agg.TotalCollectedPaise += m.AmountPaidPaise
		agg.TotalPendingPaise += ledger.DuePaise
		agg.TotalOwedPaise += ledger.OwedPaise
		effectiveSum += ledger.EffectivePaise
		if m.AmountPaidPaise > 0 {
			anyPaid = true
		}
		if ledger.Status.IsSettledUp() {
			agg.PaidCount++
		} else {
			allSettledUp = false
		}
	}
	agg.UnallocatedPaise = p.TotalPaise - effectiveSum

	switch {
	case agg.MembersCount > 0 && allSettledUp:
		agg.Status = enums.PaymentStatusCompleted
	case anyPaid:
		agg.Status = enums.PaymentStatusPartial
	case p.RequestsSentAt != nil:
		agg.Status = enums.PaymentStatusSent
	default:
		agg.Status = enums.PaymentStatusDraft
	}

	return agg
}
