package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
)

// Repository manages stock counts and their audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindPerfumeForUpdate(ctx context.Context, id uuid.UUID) (*models.Perfume, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error
	ListAdjustments(ctx context.Context, perfumeID uuid.UUID) ([]models.StockAdjustment, error)
	SumAdjustments(ctx context.Context, perfumeID uuid.UUID, changeType enums.StockChangeType) (int, error)
	ListPerfumeStock(ctx context.Context) ([]PerfumeStock, error)
}

// PerfumeStock is the reconcile view of one catalog row.
type PerfumeStock struct {
	ID         uuid.UUID
	Name       string
	StockCount int
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindPerfumeForUpdate(ctx context.Context, id uuid.UUID) (*models.Perfume, error) {
	var perfume models.Perfume
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&perfume, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &perfume, nil
}

// DecrementStock subtracts quantity only while the floor holds. The WHERE
// clause re-checks stock_count so two concurrent checkouts cannot drive it
// negative; the boolean reports whether the row was updated.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Perfume{}).
		Where("id = ? AND stock_count >= ?", id, quantity).
		UpdateColumn("stock_count", gorm.Expr("stock_count - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementStock adds quantity to an existing row; the boolean reports
// whether a row matched so callers can distinguish a missing perfume.
func (r *repository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Perfume{}).
		Where("id = ?", id).
		UpdateColumn("stock_count", gorm.Expr("stock_count + ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *repository) ListAdjustments(ctx context.Context, perfumeID uuid.UUID) ([]models.StockAdjustment, error) {
	var adjustments []models.StockAdjustment
	if err := r.db.WithContext(ctx).
		Where("perfume_id = ?", perfumeID).
		Order("created_at ASC").
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

func (r *repository) SumAdjustments(ctx context.Context, perfumeID uuid.UUID, changeType enums.StockChangeType) (int, error) {
	var total int
	if err := r.db.WithContext(ctx).
		Model(&models.StockAdjustment{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("perfume_id = ? AND change_type = ?", perfumeID, changeType).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) ListPerfumeStock(ctx context.Context) ([]PerfumeStock, error) {
	var rows []PerfumeStock
	if err := r.db.WithContext(ctx).
		Model(&models.Perfume{}).
		Select("id, name, stock_count").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
