package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/pagination"
)

// ListFilter narrows catalog listings.
type ListFilter struct {
	Brand      string
	Gender     string
	ActiveOnly bool
}

// Repository manages persistence for the perfume catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, perfume *models.Perfume) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Perfume, error)
	Update(ctx context.Context, perfume *models.Perfume) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Perfume, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, perfume *models.Perfume) error {
	return r.db.WithContext(ctx).Create(perfume).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Perfume, error) {
	var perfume models.Perfume
	if err := r.db.WithContext(ctx).First(&perfume, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &perfume, nil
}

func (r *repository) Update(ctx context.Context, perfume *models.Perfume) error {
	return r.db.WithContext(ctx).Save(perfume).Error
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Perfume{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Perfume, error) {
	query := r.db.WithContext(ctx).Model(&models.Perfume{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var perfumes []models.Perfume
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&perfumes).Error; err != nil {
		return nil, err
	}
	return perfumes, nil
}
