package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
)

// ErrInsufficientStock is returned when a decrement would take stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ReasonCheckout is the audit reason written by checkout decrements.
const ReasonCheckout = "order checkout"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines stock mutation and audit operations.
type Service interface {
	Decrement(ctx context.Context, tx *gorm.DB, perfumeID uuid.UUID, quantity int, reason string) error
	AdjustStock(ctx context.Context, input AdjustStockInput) (*models.StockAdjustment, error)
	History(ctx context.Context, perfumeID uuid.UUID) ([]models.StockAdjustment, error)
	Reconcile(ctx context.Context) error
}

// AdjustStockInput captures an admin-initiated stock change.
type AdjustStockInput struct {
	PerfumeID  uuid.UUID             `json:"perfume_id"`
	ChangeType enums.StockChangeType `json:"change_type"`
	Quantity   int                   `json:"quantity"`
	Reason     string                `json:"reason"`
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService wires an inventory service with the provided dependencies.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

// Decrement lowers stock inside the caller's transaction and writes one audit
// row for the change. It fails without touching the row when the floor would
// be crossed.
func (s *service) Decrement(ctx context.Context, tx *gorm.DB, perfumeID uuid.UUID, quantity int, reason string) error {
	if tx == nil {
		return fmt.Errorf("decrement requires an open transaction")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	repo := s.repo.WithTx(tx)

	updated, err := repo.DecrementStock(ctx, perfumeID, quantity)
	if err != nil {
		return err
	}
	if !updated {
		if _, err := repo.FindPerfumeForUpdate(ctx, perfumeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "perfume not found")
			}
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrInsufficientStock, "insufficient stock")
	}

	return repo.CreateAdjustment(ctx, &models.StockAdjustment{
		PerfumeID:  perfumeID,
		ChangeType: enums.StockChangeOut,
		Quantity:   quantity,
		Reason:     reason,
	})
}

// AdjustStock applies an admin stock change in its own transaction.
func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (*models.StockAdjustment, error) {
	if input.PerfumeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "perfume id required")
	}
	if !input.ChangeType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid change type %q", input.ChangeType))
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	adjustment := &models.StockAdjustment{
		PerfumeID:  input.PerfumeID,
		ChangeType: input.ChangeType,
		Quantity:   input.Quantity,
		Reason:     input.Reason,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if input.ChangeType == enums.StockChangeIn {
			updated, err := repo.IncrementStock(ctx, input.PerfumeID, input.Quantity)
			if err != nil {
				return err
			}
			if !updated {
				return pkgerrors.New(pkgerrors.CodeNotFound, "perfume not found")
			}
			return repo.CreateAdjustment(ctx, adjustment)
		}

		updated, err := repo.DecrementStock(ctx, input.PerfumeID, input.Quantity)
		if err != nil {
			return err
		}
		if !updated {
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrInsufficientStock, "insufficient stock")
		}
		return repo.CreateAdjustment(ctx, adjustment)
	})
	if err != nil {
		return nil, err
	}
	return adjustment, nil
}

func (s *service) History(ctx context.Context, perfumeID uuid.UUID) ([]models.StockAdjustment, error) {
	if perfumeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "perfume id required")
	}
	return s.repo.ListAdjustments(ctx, perfumeID)
}

// Reconcile cross-checks every perfume's stock count against the net of its
// audit trail and reports all drifted rows at once.
func (s *service) Reconcile(ctx context.Context) error {
	rows, err := s.repo.ListPerfumeStock(ctx)
	if err != nil {
		return err
	}

	var result error
	for _, row := range rows {
		in, err := s.repo.SumAdjustments(ctx, row.ID, enums.StockChangeIn)
		if err != nil {
			return err
		}
		out, err := s.repo.SumAdjustments(ctx, row.ID, enums.StockChangeOut)
		if err != nil {
			return err
		}
		if expected := in - out; expected != row.StockCount {
			result = multierr.Append(result, fmt.Errorf(
				"perfume %s (%s): stock_count %d does not match adjustment net %d",
				row.ID, row.Name, row.StockCount, expected,
			))
		}
	}
	return result
}
