package payments

import (
	"context"

	"github.com/abhinavece/matchpay-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for payments, members and history entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	// FindPaymentForUpdate takes the payment row lock that serializes all
	// mutations on one payment. Only meaningful inside a transaction.
	FindPaymentForUpdate(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindPaymentsByMatchID(ctx context.Context, matchID string) ([]models.Payment, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	SavePayment(ctx context.Context, payment *models.Payment) error
	DeletePayment(ctx context.Context, id uuid.UUID) error

	CreateMember(ctx context.Context, member *models.SquadMember) error
	FindMemberByID(ctx context.Context, id uuid.UUID) (*models.SquadMember, error)
	SaveMember(ctx context.Context, member *models.SquadMember) error
	SaveMembers(ctx context.Context, members []*models.SquadMember) error
	DeleteMember(ctx context.Context, id uuid.UUID) error

	CreateEntry(ctx context.Context, entry *models.PaymentEntry) error
	DeleteEntriesByMember(ctx context.Context, memberID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Members.Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindPaymentForUpdate(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}

	locked, err := r.FindPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return locked, nil
}

func (r *repository) FindPaymentsByMatchID(ctx context.Context, matchID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Members.Entries").
		Where("match_id = ?", matchID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Members.Entries").
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) SavePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]any{
			"match_id":         payment.MatchID,
			"total_paise":      payment.TotalPaise,
			"requests_sent_at": payment.RequestsSentAt,
		}).Error
}

func (r *repository) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memberIDs := tx.Model(&models.SquadMember{}).
			Select("id").
			Where("payment_id = ?", id)
		if err := tx.Where("member_id IN (?)", memberIDs).
			Delete(&models.PaymentEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("payment_id = ?", id).
			Delete(&models.SquadMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Payment{}).Error
	})
}

func (r *repository) CreateMember(ctx context.Context, member *models.SquadMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) FindMemberByID(ctx context.Context, id uuid.UUID) (*models.SquadMember, error) {
	var member models.SquadMember
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) SaveMember(ctx context.Context, member *models.SquadMember) error {
	return r.db.WithContext(ctx).
		Model(&models.SquadMember{}).
		Where("id = ?", member.ID).
		Updates(map[string]any{
			"player_id":              member.PlayerID,
			"player_name":            member.PlayerName,
			"player_phone":           member.PlayerPhone,
			"position":               member.Position,
			"calculated_paise":       member.CalculatedPaise,
			"adjusted_paise":         member.AdjustedPaise,
			"amount_paid_paise":      member.AmountPaidPaise,
			"settled_paise":          member.SettledPaise,
			"message_sent_at":        member.MessageSentAt,
			"screenshot_received_at": member.ScreenshotReceivedAt,
		}).Error
}

func (r *repository) SaveMembers(ctx context.Context, members []*models.SquadMember) error {
	for _, member := range members {
		if err := r.SaveMember(ctx, member); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) DeleteMember(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", id).
		Delete(&models.PaymentEntry{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.SquadMember{}).Error
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.PaymentEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) DeleteEntriesByMember(ctx context.Context, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Delete(&models.PaymentEntry{}).Error
}
