package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/internal/inventory"
	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
	"github.com/aion-commerce/aion-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines catalog reads for shoppers and writes for admins.
type Service interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*PerfumePage, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Perfume, error)
	Create(ctx context.Context, input CreatePerfumeInput) (*models.Perfume, error)
	Update(ctx context.Context, id uuid.UUID, input UpdatePerfumeInput) (*models.Perfume, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// CreatePerfumeInput captures a new catalog listing.
type CreatePerfumeInput struct {
	Name         string   `json:"name" validate:"required"`
	NameEN       *string  `json:"name_en"`
	Brand        string   `json:"brand" validate:"required"`
	Description  *string  `json:"description"`
	Price        int      `json:"price" validate:"gte=0"`
	VolumeML     int      `json:"volume_ml"`
	Gender       *string  `json:"gender"`
	ScentNotes   []string `json:"scent_notes"`
	InitialStock int      `json:"initial_stock" validate:"gte=0"`
}

// UpdatePerfumeInput captures editable listing fields. Stock is deliberately
// absent; it only moves through inventory adjustments.
type UpdatePerfumeInput struct {
	Name        string   `json:"name" validate:"required"`
	NameEN      *string  `json:"name_en"`
	Brand       string   `json:"brand" validate:"required"`
	Description *string  `json:"description"`
	Price       int      `json:"price" validate:"gte=0"`
	VolumeML    int      `json:"volume_ml"`
	Gender      *string  `json:"gender"`
	ScentNotes  []string `json:"scent_notes"`
}

// PerfumePage is one page of catalog listings.
type PerfumePage struct {
	Perfumes   []models.Perfume
	NextCursor string
	HasMore    bool
}

type service struct {
	tx        txRunner
	repo      Repository
	inventory inventory.Repository
}

// NewService wires a catalog service with the provided dependencies.
func NewService(tx txRunner, repo Repository, inventoryRepo inventory.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{tx: tx, repo: repo, inventory: inventoryRepo}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*PerfumePage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, filter, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, err
	}

	perfumes, hasMore := pagination.TrimPage(rows, params.Limit)
	page := &PerfumePage{Perfumes: perfumes, HasMore: hasMore}
	if hasMore && len(perfumes) > 0 {
		last := perfumes[len(perfumes)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Perfume, error) {
	perfume, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "perfume not found")
		}
		return nil, err
	}
	return perfume, nil
}

// Create inserts the listing and, when seeded with stock, its opening audit
// row in one transaction so the adjustment trail accounts for every unit.
func (s *service) Create(ctx context.Context, input CreatePerfumeInput) (*models.Perfume, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.Brand == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.InitialStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}
	volume := input.VolumeML
	if volume <= 0 {
		volume = 50
	}

	perfume := &models.Perfume{
		Name:        input.Name,
		NameEN:      input.NameEN,
		Brand:       input.Brand,
		Description: input.Description,
		Price:       input.Price,
		VolumeML:    volume,
		Gender:      input.Gender,
		ScentNotes:  pq.StringArray(input.ScentNotes),
		StockCount:  input.InitialStock,
		IsActive:    true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, perfume); err != nil {
			return err
		}
		if input.InitialStock == 0 {
			return nil
		}
		return s.inventory.WithTx(tx).CreateAdjustment(ctx, &models.StockAdjustment{
			PerfumeID:  perfume.ID,
			ChangeType: enums.StockChangeIn,
			Quantity:   input.InitialStock,
			Reason:     "initial stock",
		})
	})
	if err != nil {
		return nil, err
	}
	return perfume, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdatePerfumeInput) (*models.Perfume, error) {
	perfume, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.Brand == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	perfume.Name = input.Name
	perfume.NameEN = input.NameEN
	perfume.Brand = input.Brand
	perfume.Description = input.Description
	perfume.Price = input.Price
	if input.VolumeML > 0 {
		perfume.VolumeML = input.VolumeML
	}
	perfume.Gender = input.Gender
	perfume.ScentNotes = pq.StringArray(input.ScentNotes)

	if err := s.repo.Update(ctx, perfume); err != nil {
		return nil, err
	}
	return perfume, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, active)
}
