package loyalty

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
)

// Repository manages the append-only loyalty ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.LoyaltyLedgerEntry) error
	SumByMember(ctx context.Context, memberID uuid.UUID) (int, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.LoyaltyLedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a loyalty repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LoyaltyLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// SumByMember derives the member's balance from the ledger. There is no
// cached counter anywhere to disagree with this figure.
func (r *repository) SumByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	var total int
	if err := r.db.WithContext(ctx).
		Model(&models.LoyaltyLedgerEntry{}).
		Select("COALESCE(SUM(points), 0)").
		Where("member_id = ?", memberID).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.LoyaltyLedgerEntry, error) {
	var entries []models.LoyaltyLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
