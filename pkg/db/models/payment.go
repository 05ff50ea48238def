package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is the durable ledger record for one match's fee collection.
// Aggregate figures (collected, pending, owed, counts, status) are never
// stored; they are recomputed from the member rows on every read.
type Payment struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MatchID        string     `gorm:"column:match_id;not null;index"`
	TotalPaise     int64      `gorm:"column:total_paise;not null"`
	RequestsSentAt *time.Time `gorm:"column:requests_sent_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Members []SquadMember `gorm:"foreignKey:PaymentID"`
}
