package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
)

// Repository manages persistence for cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.CartLine, error)
	FindLine(ctx context.Context, memberID, perfumeID uuid.UUID) (*models.CartLine, error)
	FindLineByID(ctx context.Context, memberID, lineID uuid.UUID) (*models.CartLine, error)
	CreateLine(ctx context.Context, line *models.CartLine) error
	UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, memberID, lineID uuid.UUID) error
	DeleteLinesByIDs(ctx context.Context, memberID uuid.UUID, lineIDs []uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.WithContext(ctx).
		Preload("Perfume").
		Where("member_id = ?", memberID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindLine(ctx context.Context, memberID, perfumeID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	if err := r.db.WithContext(ctx).
		First(&line, "member_id = ? AND perfume_id = ?", memberID, perfumeID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) FindLineByID(ctx context.Context, memberID, lineID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	if err := r.db.WithContext(ctx).
		First(&line, "id = ? AND member_id = ?", lineID, memberID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *repository) DeleteLine(ctx context.Context, memberID, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND member_id = ?", lineID, memberID).
		Delete(&models.CartLine{}).Error
}

// DeleteLinesByIDs removes exactly the identified lines. Lines added after the
// caller captured the IDs are untouched.
func (r *repository) DeleteLinesByIDs(ctx context.Context, memberID uuid.UUID, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("member_id = ? AND id IN ?", memberID, lineIDs).
		Delete(&models.CartLine{}).Error
}
