package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
)

// Repository manages persistence for coupon definitions and issued coupons.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateDefinition(ctx context.Context, definition *models.CouponDefinition) error
	FindDefinitionByID(ctx context.Context, id uuid.UUID) (*models.CouponDefinition, error)
	FindDefinitionByCode(ctx context.Context, code string) (*models.CouponDefinition, error)
	ListDefinitions(ctx context.Context) ([]models.CouponDefinition, error)
	Issue(ctx context.Context, issued *models.IssuedCoupon) error
	CountIssued(ctx context.Context, couponID uuid.UUID) (int64, error)
	FindIssuedByID(ctx context.Context, id uuid.UUID) (*models.IssuedCoupon, error)
	FindIssuedByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.IssuedCoupon, error)
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error)
	ListIssuedByMember(ctx context.Context, memberID uuid.UUID) ([]models.IssuedCoupon, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a coupon repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateDefinition(ctx context.Context, definition *models.CouponDefinition) error {
	return r.db.WithContext(ctx).Create(definition).Error
}

func (r *repository) FindDefinitionByID(ctx context.Context, id uuid.UUID) (*models.CouponDefinition, error) {
	var definition models.CouponDefinition
	if err := r.db.WithContext(ctx).First(&definition, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &definition, nil
}

func (r *repository) FindDefinitionByCode(ctx context.Context, code string) (*models.CouponDefinition, error) {
	var definition models.CouponDefinition
	if err := r.db.WithContext(ctx).First(&definition, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &definition, nil
}

func (r *repository) ListDefinitions(ctx context.Context) ([]models.CouponDefinition, error) {
	var definitions []models.CouponDefinition
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&definitions).Error; err != nil {
		return nil, err
	}
	return definitions, nil
}

func (r *repository) Issue(ctx context.Context, issued *models.IssuedCoupon) error {
	return r.db.WithContext(ctx).Create(issued).Error
}

func (r *repository) CountIssued(ctx context.Context, couponID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.IssuedCoupon{}).
		Where("coupon_id = ?", couponID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) FindIssuedByID(ctx context.Context, id uuid.UUID) (*models.IssuedCoupon, error) {
	var issued models.IssuedCoupon
	if err := r.db.WithContext(ctx).
		Preload("Coupon").
		First(&issued, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &issued, nil
}

// FindIssuedByIDForUpdate locks the redemption row for the remainder of the
// enclosing transaction so concurrent checkouts serialize on it.
func (r *repository) FindIssuedByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.IssuedCoupon, error) {
	var issued models.IssuedCoupon
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&issued, "id = ?", id).Error; err != nil {
		return nil, err
	}
	var definition models.CouponDefinition
	if err := r.db.WithContext(ctx).
		First(&definition, "id = ?", issued.CouponID).Error; err != nil {
		return nil, err
	}
	issued.Coupon = &definition
	return &issued, nil
}

// MarkUsed flips used from false to true. The WHERE clause re-checks used so
// a redemption can only ever be consumed once; the boolean reports whether
// this call won the flip.
func (r *repository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.IssuedCoupon{}).
		Where("id = ? AND used = ?", id, false).
		Updates(map[string]any{"used": true, "used_at": usedAt})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) ListIssuedByMember(ctx context.Context, memberID uuid.UUID) ([]models.IssuedCoupon, error) {
	var issued []models.IssuedCoupon
	if err := r.db.WithContext(ctx).
		Preload("Coupon").
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&issued).Error; err != nil {
		return nil, err
	}
	return issued, nil
}
