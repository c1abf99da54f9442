package loyalty

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
)

// Service defines loyalty point accrual and reads over the ledger.
type Service interface {
	CreditForOrder(ctx context.Context, tx *gorm.DB, memberID, orderID uuid.UUID, finalAmount int, orderNumber string) (int, error)
	Balance(ctx context.Context, memberID uuid.UUID) (int, error)
	History(ctx context.Context, memberID uuid.UUID) ([]models.LoyaltyLedgerEntry, error)
}

type service struct {
	repo Repository
	rate decimal.Decimal
}

// NewService wires a loyalty service accruing points at the given rate per won.
func NewService(repo Repository, rate decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("accrual rate cannot be negative")
	}
	return &service{repo: repo, rate: rate}, nil
}

// CreditForOrder writes one earn entry for the order inside the caller's
// transaction. Points are floor(finalAmount × rate); a zero award writes no
// row at all. Returns the points credited.
func (s *service) CreditForOrder(ctx context.Context, tx *gorm.DB, memberID, orderID uuid.UUID, finalAmount int, orderNumber string) (int, error) {
	if tx == nil {
		return 0, fmt.Errorf("credit requires an open transaction")
	}
	if memberID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if finalAmount < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "final amount cannot be negative")
	}

	points := int(decimal.NewFromInt(int64(finalAmount)).Mul(s.rate).Floor().IntPart())
	if points == 0 {
		return 0, nil
	}

	entry := &models.LoyaltyLedgerEntry{
		MemberID:    memberID,
		OrderID:     &orderID,
		Points:      points,
		Description: fmt.Sprintf("purchase %s", orderNumber),
		ActionType:  enums.LoyaltyActionEarn,
	}
	if err := s.repo.WithTx(tx).CreateEntry(ctx, entry); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording loyalty points")
	}
	return points, nil
}

func (s *service) Balance(ctx context.Context, memberID uuid.UUID) (int, error) {
	if memberID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	return s.repo.SumByMember(ctx, memberID)
}

func (s *service) History(ctx context.Context, memberID uuid.UUID) ([]models.LoyaltyLedgerEntry, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	return s.repo.ListByMember(ctx, memberID)
}
