package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/internal/repo"
	"github.com/aion-commerce/aion-backend/pkg/db/models"
)

// Repository persists wishlist entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.WishlistItem) error
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.WishlistItem, error)
	FindByMemberAndPerfume(ctx context.Context, memberID, perfumeID uuid.UUID) (*models.WishlistItem, error)
	Delete(ctx context.Context, memberID, itemID uuid.UUID) (bool, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) Create(ctx context.Context, item *models.WishlistItem) error {
	return r.DB(ctx).Create(item).Error
}

func (r *repository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.DB(ctx).
		Preload("Perfume").
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindByMemberAndPerfume(ctx context.Context, memberID, perfumeID uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.DB(ctx).
		Where("member_id = ? AND perfume_id = ?", memberID, perfumeID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Delete(ctx context.Context, memberID, itemID uuid.UUID) (bool, error) {
	result := r.DB(ctx).
		Where("id = ? AND member_id = ?", itemID, memberID).
		Delete(&models.WishlistItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
