package members

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
)

// Service defines member profile operations.
type Service interface {
	Get(ctx context.Context, memberID uuid.UUID) (*MemberDTO, error)
	UpdateProfile(ctx context.Context, memberID uuid.UUID, input UpdateProfileInput) (*MemberDTO, error)
}

// UpdateProfileInput captures the editable profile fields.
type UpdateProfileInput struct {
	Name  string  `json:"name" validate:"required"`
	Phone *string `json:"phone"`
}

type service struct {
	repo Repository
}

// NewService wires a members service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("members repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, memberID uuid.UUID) (*MemberDTO, error) {
	member, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, err
	}
	return FromModel(member), nil
}

func (s *service) UpdateProfile(ctx context.Context, memberID uuid.UUID, input UpdateProfileInput) (*MemberDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}

	if _, err := s.repo.FindByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, memberID, name, input.Phone); err != nil {
		return nil, err
	}
	return s.Get(ctx, memberID)
}
