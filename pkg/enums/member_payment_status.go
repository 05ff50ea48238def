package enums

import "fmt"

// MemberPaymentStatus tracks where a squad member stands against their share.
// It is always derived from the ledger; no code path assigns it directly.
type MemberPaymentStatus string

const (
	MemberPaymentStatusPending  MemberPaymentStatus = "pending"
	MemberPaymentStatusPartial  MemberPaymentStatus = "partial"
	MemberPaymentStatusDue      MemberPaymentStatus = "due"
	MemberPaymentStatusPaid     MemberPaymentStatus = "paid"
	MemberPaymentStatusOverpaid MemberPaymentStatus = "overpaid"
)

// Derivation never produces "due"; it is the client-side rendering of
// "pending" once the match date has passed. It stays in the enum because the
// UI contract serializes it.
var validMemberPaymentStatuses = []MemberPaymentStatus{
	MemberPaymentStatusPending,
	MemberPaymentStatusPartial,
	MemberPaymentStatusDue,
	MemberPaymentStatusPaid,
	MemberPaymentStatusOverpaid,
}

// String implements fmt.Stringer.
func (s MemberPaymentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known MemberPaymentStatus.
func (s MemberPaymentStatus) IsValid() bool {
	for _, candidate := range validMemberPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsSettledUp reports whether the member owes nothing further.
func (s MemberPaymentStatus) IsSettledUp() bool {
	return s == MemberPaymentStatusPaid || s == MemberPaymentStatusOverpaid
}

// ParseMemberPaymentStatus converts raw input into a MemberPaymentStatus.
func ParseMemberPaymentStatus(value string) (MemberPaymentStatus, error) {
	for _, candidate := range validMemberPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member payment status %q", value)
}
