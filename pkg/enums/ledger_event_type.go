package enums

import "fmt"

// LedgerEventType labels entries in the reconciliation audit trail.
type LedgerEventType string

const (
	LedgerEventPaymentCreated     LedgerEventType = "payment_created"
	LedgerEventTotalUpdated       LedgerEventType = "total_updated"
	LedgerEventMemberAdded        LedgerEventType = "member_added"
	LedgerEventMemberRemoved      LedgerEventType = "member_removed"
	LedgerEventMemberPinned       LedgerEventType = "member_pinned"
	LedgerEventPaymentRecorded    LedgerEventType = "payment_recorded"
	LedgerEventMarkedUnpaid       LedgerEventType = "marked_unpaid"
	LedgerEventOverpaymentSettled LedgerEventType = "overpayment_settled"
	LedgerEventRequestsSent       LedgerEventType = "requests_sent"
	LedgerEventScreenshotReceived LedgerEventType = "screenshot_received"
	LedgerEventPaymentDeleted     LedgerEventType = "payment_deleted"
)

var validLedgerEventTypes = []LedgerEventType{
	LedgerEventPaymentCreated,
	LedgerEventTotalUpdated,
	LedgerEventMemberAdded,
	LedgerEventMemberRemoved,
	LedgerEventMemberPinned,
	LedgerEventPaymentRecorded,
	LedgerEventMarkedUnpaid,
	LedgerEventOverpaymentSettled,
	LedgerEventRequestsSent,
	LedgerEventScreenshotReceived,
	LedgerEventPaymentDeleted,
}

// String implements fmt.Stringer.
func (t LedgerEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known LedgerEventType.
func (t LedgerEventType) IsValid() bool {
	for _, candidate := range validLedgerEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerEventType converts raw input into a LedgerEventType.
func ParseLedgerEventType(value string) (LedgerEventType, error) {
	for _, candidate := range validLedgerEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger event type %q", value)
}
