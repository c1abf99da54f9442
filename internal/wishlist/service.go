package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db"
	"github.com/aion-commerce/aion-backend/pkg/db/models"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
)

type perfumeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Perfume, error)
}

// Service defines wishlist operations for a member.
type Service interface {
	List(ctx context.Context, memberID uuid.UUID) ([]models.WishlistItem, error)
	Add(ctx context.Context, memberID, perfumeID uuid.UUID) (*models.WishlistItem, error)
	Remove(ctx context.Context, memberID, itemID uuid.UUID) error
}

type service struct {
	repo     Repository
	perfumes perfumeFinder
}

// NewService wires a wishlist service with the provided dependencies.
func NewService(repo Repository, perfumes perfumeFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if perfumes == nil {
		return nil, fmt.Errorf("perfume finder required")
	}
	return &service{repo: repo, perfumes: perfumes}, nil
}

func (s *service) List(ctx context.Context, memberID uuid.UUID) ([]models.WishlistItem, error) {
	return s.repo.ListByMember(ctx, memberID)
}

func (s *service) Add(ctx context.Context, memberID, perfumeID uuid.UUID) (*models.WishlistItem, error) {
	_, err := s.perfumes.FindByID(ctx, perfumeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "perfume not found")
		}
		return nil, err
	}

	item := &models.WishlistItem{MemberID: memberID, PerfumeID: perfumeID}
	if err := s.repo.Create(ctx, item); err != nil {
		if db.IsUniqueViolation(err, "idx_wishlist_member_perfume") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "perfume already wishlisted")
		}
		return nil, err
	}
	return item, nil
}

func (s *service) Remove(ctx context.Context, memberID, itemID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, memberID, itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wishlist item not found")
	}
	return nil
}
