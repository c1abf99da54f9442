package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
)

type perfumeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Perfume, error)
}

// Service defines cart operations for a member.
type Service interface {
	List(ctx context.Context, memberID uuid.UUID) ([]models.CartLine, error)
	Add(ctx context.Context, memberID, perfumeID uuid.UUID, quantity int) (*models.CartLine, error)
	UpdateQuantity(ctx context.Context, memberID, lineID uuid.UUID, quantity int) (*models.CartLine, error)
	Remove(ctx context.Context, memberID, lineID uuid.UUID) error
	ClearLines(ctx context.Context, tx *gorm.DB, memberID uuid.UUID, lineIDs []uuid.UUID) error
}

type service struct {
	repo     Repository
	perfumes perfumeFinder
}

// NewService wires a cart service with the provided dependencies.
func NewService(repo Repository, perfumes perfumeFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if perfumes == nil {
		return nil, fmt.Errorf("perfume finder required")
	}
	return &service{repo: repo, perfumes: perfumes}, nil
}

func (s *service) List(ctx context.Context, memberID uuid.UUID) ([]models.CartLine, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	return s.repo.ListByMember(ctx, memberID)
}

// Add puts a perfume in the cart, merging quantities when a line for it
// already exists.
func (s *service) Add(ctx context.Context, memberID, perfumeID uuid.UUID, quantity int) (*models.CartLine, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	perfume, err := s.perfumes.FindByID(ctx, perfumeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "perfume not found")
		}
		return nil, err
	}
	if !perfume.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "perfume is not available")
	}

	existing, err := s.repo.FindLine(ctx, memberID, perfumeID)
	switch {
	case err == nil:
		merged := existing.Quantity + quantity
		if err := s.repo.UpdateQuantity(ctx, existing.ID, merged); err != nil {
			return nil, err
		}
		existing.Quantity = merged
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		line := &models.CartLine{
			MemberID:  memberID,
			PerfumeID: perfumeID,
			Quantity:  quantity,
		}
		if err := s.repo.CreateLine(ctx, line); err != nil {
			return nil, err
		}
		return line, nil
	default:
		return nil, err
	}
}

func (s *service) UpdateQuantity(ctx context.Context, memberID, lineID uuid.UUID, quantity int) (*models.CartLine, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	line, err := s.repo.FindLineByID(ctx, memberID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, err
	}

	if err := s.repo.UpdateQuantity(ctx, line.ID, quantity); err != nil {
		return nil, err
	}
	line.Quantity = quantity
	return line, nil
}

func (s *service) Remove(ctx context.Context, memberID, lineID uuid.UUID) error {
	if _, err := s.repo.FindLineByID(ctx, memberID, lineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return err
	}
	return s.repo.DeleteLine(ctx, memberID, lineID)
}

// ClearLines removes the lines snapshotted at the start of checkout, inside
// the checkout transaction. Lines added to the cart mid-checkout survive.
func (s *service) ClearLines(ctx context.Context, tx *gorm.DB, memberID uuid.UUID, lineIDs []uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("clear lines requires an open transaction")
	}
	return s.repo.WithTx(tx).DeleteLinesByIDs(ctx, memberID, lineIDs)
}
