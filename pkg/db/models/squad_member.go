package models

import (
	"time"

	"github.com/google/uuid"
)

// SquadMember is one player's ledger inside a Payment. Identity is local to
// the payment; PlayerID links to the durable player record when known, but
// the normalized phone is the join key within a payment.
type SquadMember struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID uuid.UUID  `gorm:"column:payment_id;type:uuid;not null;index"`
	PlayerID  *uuid.UUID `gorm:"column:player_id;type:uuid"`

	PlayerName  string `gorm:"column:player_name;not null"`
	PlayerPhone string `gorm:"column:player_phone;not null"`

	// Position preserves insertion order; the split engine biases the
	// rounding remainder onto the last position.
	Position int `gorm:"column:position;not null"`

	CalculatedPaise int64  `gorm:"column:calculated_paise;not null;default:0"`
	AdjustedPaise   *int64 `gorm:"column:adjusted_paise"`
	AmountPaidPaise int64  `gorm:"column:amount_paid_paise;not null;default:0"`
	SettledPaise    int64  `gorm:"column:settled_paise;not null;default:0"`

	MessageSentAt        *time.Time `gorm:"column:message_sent_at"`
	ScreenshotReceivedAt *time.Time `gorm:"column:screenshot_received_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Entries []PaymentEntry `gorm:"foreignKey:MemberID"`
}

// EffectivePaise is the amount the member actually owes: the admin pin when
// set (zero is a valid pin meaning free player), otherwise the computed share.
func (m SquadMember) EffectivePaise() int64 {
	if m.AdjustedPaise != nil {
		return *m.AdjustedPaise
	}
	return m.CalculatedPaise
}

// Pinned reports whether the member is excluded from automatic re-splits.
func (m SquadMember) Pinned() bool {
	return m.AdjustedPaise != nil
}
