package orders

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
	"github.com/aion-commerce/aion-backend/pkg/pagination"
)

// Service defines order persistence and retrieval.
type Service interface {
	Create(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (*models.Order, error)
	GetByID(ctx context.Context, memberID, orderID uuid.UUID) (*models.Order, error)
	ListByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) (*OrderPage, error)
}

// CreateOrderInput captures everything checkout computed for the new order.
type CreateOrderInput struct {
	MemberID        uuid.UUID
	TotalAmount     int
	DiscountAmount  int
	FinalAmount     int
	PaymentMethod   enums.PaymentMethod
	IssuedCouponID  *uuid.UUID
	ReceiverName    string
	ReceiverPhone   string
	ShippingZipcode string
	ShippingAddress string
	Lines           []CreateOrderLine
}

// CreateOrderLine snapshots one cart line into the order.
type CreateOrderLine struct {
	PerfumeID   uuid.UUID
	PerfumeName string
	Quantity    int
	UnitPrice   int
	FinalPrice  int
}

// OrderPage is one page of a member's order history.
type OrderPage struct {
	Orders     []models.Order
	NextCursor string
	HasMore    bool
}

type service struct {
	repo Repository
}

// NewService wires an orders service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// Create persists the order and its lines inside the caller's transaction.
// Persistence failures are surfaced as retryable internal errors since the
// enclosing transaction rolls everything back.
func (s *service) Create(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (*models.Order, error) {
	if tx == nil {
		return nil, fmt.Errorf("order creation requires an open transaction")
	}
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	number, err := generateOrderNumber()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating order number")
	}

	order := &models.Order{
		MemberID:        input.MemberID,
		OrderNumber:     number,
		TotalAmount:     input.TotalAmount,
		DiscountAmount:  input.DiscountAmount,
		FinalAmount:     input.FinalAmount,
		Status:          enums.OrderStatusCompleted,
		PaymentMethod:   input.PaymentMethod,
		IssuedCouponID:  input.IssuedCouponID,
		ReceiverName:    input.ReceiverName,
		ReceiverPhone:   input.ReceiverPhone,
		ShippingZipcode: input.ShippingZipcode,
		ShippingAddress: input.ShippingAddress,
	}
	for _, line := range input.Lines {
		order.Lines = append(order.Lines, models.OrderLine{
			PerfumeID:           line.PerfumeID,
			PerfumeNameSnapshot: line.PerfumeName,
			Quantity:            line.Quantity,
			UnitPrice:           line.UnitPrice,
			FinalPrice:          line.FinalPrice,
		})
	}

	if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order")
	}
	return order, nil
}

func (s *service) GetByID(ctx context.Context, memberID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	if order.MemberID != memberID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another member")
	}
	return order, nil
}

func (s *service) ListByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListByMember(ctx, memberID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, err
	}

	orders, hasMore := pagination.TrimPage(rows, params.Limit)
	page := &OrderPage{Orders: orders, HasMore: hasMore}
	if hasMore && len(orders) > 0 {
		last := orders[len(orders)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// generateOrderNumber produces identifiers like ORD-1A2B3C4D.
func generateOrderNumber() (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "ORD-" + strings.ToUpper(hex.EncodeToString(bytes)), nil
}
