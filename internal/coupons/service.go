package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
)

var (
	// ErrAlreadyUsed is returned when a redemption has been consumed before.
	ErrAlreadyUsed = errors.New("coupon already used")
	// ErrNotOwned is returned when a member presents another member's redemption.
	ErrNotOwned = errors.New("coupon belongs to another member")
	// ErrUsageLimitReached is returned when a definition has no issuances left.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines coupon administration, issuance, and redemption.
type Service interface {
	CreateDefinition(ctx context.Context, input CreateDefinitionInput) (*models.CouponDefinition, error)
	ListDefinitions(ctx context.Context) ([]models.CouponDefinition, error)
	Issue(ctx context.Context, couponID, memberID uuid.UUID) (*models.IssuedCoupon, error)
	ListForMember(ctx context.Context, memberID uuid.UUID) ([]models.IssuedCoupon, error)
	GetIssued(ctx context.Context, redemptionID uuid.UUID) (*models.IssuedCoupon, error)
	Redeem(ctx context.Context, tx *gorm.DB, redemptionID, memberID uuid.UUID, now time.Time) (*models.IssuedCoupon, error)
}

// CreateDefinitionInput captures the admin-supplied rules for a new coupon.
type CreateDefinitionInput struct {
	Code          string             `json:"code"`
	DiscountType  enums.DiscountType `json:"discount_type"`
	DiscountValue int                `json:"discount_value"`
	MaxDiscount   *int               `json:"max_discount"`
	MinPurchase   *int               `json:"min_purchase"`
	ExpiresAt     *time.Time         `json:"expires_at"`
	UsageLimit    int                `json:"usage_limit"`
	IsStackable   bool               `json:"is_stackable"`
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService wires a coupon service with the provided dependencies.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) CreateDefinition(ctx context.Context, input CreateDefinitionInput) (*models.CouponDefinition, error) {
	if input.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if !input.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", input.DiscountType))
	}
	if input.DiscountValue <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if input.DiscountType == enums.DiscountTypePercentage && input.DiscountValue > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if input.UsageLimit <= 0 {
		input.UsageLimit = 1
	}

	definition := &models.CouponDefinition{
		Code:          input.Code,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		MaxDiscount:   input.MaxDiscount,
		MinPurchase:   input.MinPurchase,
		ExpiresAt:     input.ExpiresAt,
		UsageLimit:    input.UsageLimit,
		IsStackable:   input.IsStackable,
	}

	if err := s.repo.CreateDefinition(ctx, definition); err != nil {
		return nil, err
	}
	return definition, nil
}

func (s *service) ListDefinitions(ctx context.Context) ([]models.CouponDefinition, error) {
	return s.repo.ListDefinitions(ctx)
}

// Issue grants one redemption of the definition to the member. The issue count
// check and insert run in one transaction so the usage limit holds under
// concurrent requests.
func (s *service) Issue(ctx context.Context, couponID, memberID uuid.UUID) (*models.IssuedCoupon, error) {
	if couponID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}

	var issued *models.IssuedCoupon
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		definition, err := repo.FindDefinitionByID(ctx, couponID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
			}
			return err
		}

		count, err := repo.CountIssued(ctx, couponID)
		if err != nil {
			return err
		}
		if count >= int64(definition.UsageLimit) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrUsageLimitReached, "coupon usage limit reached")
		}

		issued = &models.IssuedCoupon{
			MemberID: memberID,
			CouponID: couponID,
		}
		return repo.Issue(ctx, issued)
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

func (s *service) ListForMember(ctx context.Context, memberID uuid.UUID) ([]models.IssuedCoupon, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	return s.repo.ListIssuedByMember(ctx, memberID)
}

func (s *service) GetIssued(ctx context.Context, redemptionID uuid.UUID) (*models.IssuedCoupon, error) {
	issued, err := s.repo.FindIssuedByID(ctx, redemptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, err
	}
	return issued, nil
}

// Redeem consumes the redemption inside the caller's transaction. It locks
// the row, verifies ownership and the unused flag, then flips used with a
// guarded UPDATE so a concurrent transaction on the same redemption fails.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, redemptionID, memberID uuid.UUID, now time.Time) (*models.IssuedCoupon, error) {
	if tx == nil {
		return nil, fmt.Errorf("redeem requires an open transaction")
	}
	repo := s.repo.WithTx(tx)

	issued, err := repo.FindIssuedByIDForUpdate(ctx, redemptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, err
	}

	if issued.MemberID != memberID {
		return nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, ErrNotOwned, "coupon belongs to another member")
	}
	if issued.Used {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, ErrAlreadyUsed, "coupon already used")
	}

	flipped, err := repo.MarkUsed(ctx, redemptionID, now)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, ErrAlreadyUsed, "coupon already used")
	}

	issued.Used = true
	issued.UsedAt = &now
	return issued, nil
}
