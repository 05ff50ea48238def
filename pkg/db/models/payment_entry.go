package models

import (
	"time"

	"github.com/abhinavece/matchpay-backend/pkg/enums"
	"github.com/google/uuid"
)

// PaymentEntry is one append-only payment-history record for a squad member.
// Entries are never edited; mark-unpaid removes the whole history.
type PaymentEntry struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID    uuid.UUID           `gorm:"column:member_id;type:uuid;not null;index"`
	AmountPaise int64               `gorm:"column:amount_paise;not null"`
	Method      enums.PaymentMethod `gorm:"column:method;type:text;not null;default:'upi'"`
	Notes       *string             `gorm:"column:notes"`
	PaidAt      time.Time           `gorm:"column:paid_at;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
