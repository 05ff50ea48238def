package models

import (
	"encoding/json"
	"time"

	"github.com/abhinavece/matchpay-backend/pkg/enums"
	"github.com/google/uuid"
)

// LedgerEvent is an immutable audit record for every reconciliation
// operation applied to a payment.
type LedgerEvent struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID   uuid.UUID             `gorm:"column:payment_id;type:uuid;not null;index"`
	MemberID    *uuid.UUID            `gorm:"column:member_id;type:uuid"`
	ActorUserID uuid.UUID             `gorm:"column:actor_user_id;type:uuid;not null"`
	Type        enums.LedgerEventType `gorm:"column:type;type:text;not null"`
	AmountPaise int64                 `gorm:"column:amount_paise;not null;default:0"`
	Metadata    json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
