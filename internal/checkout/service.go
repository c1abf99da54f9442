package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/internal/cart"
	"github.com/aion-commerce/aion-backend/internal/coupons"
	"github.com/aion-commerce/aion-backend/internal/inventory"
	"github.com/aion-commerce/aion-backend/internal/loyalty"
	"github.com/aion-commerce/aion-backend/internal/orders"
	"github.com/aion-commerce/aion-backend/internal/pricing"
	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
	"github.com/aion-commerce/aion-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type couponRedeemer interface {
	Redeem(ctx context.Context, tx *gorm.DB, redemptionID, memberID uuid.UUID, now time.Time) (*models.IssuedCoupon, error)
}

type stockDecrementer interface {
	Decrement(ctx context.Context, tx *gorm.DB, perfumeID uuid.UUID, quantity int, reason string) error
}

type orderCreator interface {
	Create(ctx context.Context, tx *gorm.DB, input orders.CreateOrderInput) (*models.Order, error)
}

type pointCrediter interface {
	CreditForOrder(ctx context.Context, tx *gorm.DB, memberID, orderID uuid.UUID, finalAmount int, orderNumber string) (int, error)
}

type cartClearer interface {
	ClearLines(ctx context.Context, tx *gorm.DB, memberID uuid.UUID, lineIDs []uuid.UUID) error
}

// Service executes the checkout transaction.
type Service interface {
	Execute(ctx context.Context, memberID uuid.UUID, input Input) (*Result, error)
}

// Input carries everything the member submits at checkout.
type Input struct {
	IssuedCouponID  *uuid.UUID          `json:"issued_coupon_id"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	ReceiverName    string              `json:"receiver_name"`
	ReceiverPhone   string              `json:"receiver_phone"`
	ShippingZipcode string              `json:"shipping_zipcode"`
	ShippingAddress string              `json:"shipping_address"`
}

// Result is the outcome of a committed checkout.
type Result struct {
	Order        *models.Order `json:"order"`
	PointsEarned int           `json:"points_earned"`
}

type service struct {
	tx        txRunner
	cartRepo  cart.Repository
	couponSvc couponRedeemer
	stockSvc  stockDecrementer
	orderSvc  orderCreator
	loyalties pointCrediter
	cartSvc   cartClearer
	metrics   *metrics.CheckoutMetrics
	now       func() time.Time
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	cartRepo cart.Repository,
	couponSvc couponRedeemer,
	stockSvc stockDecrementer,
	orderSvc orderCreator,
	loyalties pointCrediter,
	cartSvc cartClearer,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon redeemer required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock decrementer required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if loyalties == nil {
		return nil, fmt.Errorf("point crediter required")
	}
	if cartSvc == nil {
		return nil, fmt.Errorf("cart clearer required")
	}
	return &service{
		tx:        tx,
		cartRepo:  cartRepo,
		couponSvc: couponSvc,
		stockSvc:  stockSvc,
		orderSvc:  orderSvc,
		loyalties: loyalties,
		cartSvc:   cartSvc,
		metrics:   checkoutMetrics,
		now:       time.Now,
	}, nil
}

// Execute runs the whole checkout in one database transaction: snapshot the
// cart, consume the coupon, price the lines, decrement stock, persist the
// order, credit points, and clear exactly the snapshotted cart lines. Any
// failure rolls back every prior step.
func (s *service) Execute(ctx context.Context, memberID uuid.UUID, input Input) (*Result, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	started := s.now()
	result, err := s.execute(ctx, memberID, input)
	s.metrics.ObserveDuration(s.now().Sub(started))
	if err != nil {
		s.metrics.IncFailure(failureReason(err))
		return nil, err
	}
	s.metrics.IncSuccess()
	return result, nil
}

func (s *service) execute(ctx context.Context, memberID uuid.UUID, input Input) (*Result, error) {
	now := s.now()

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		lines, err := s.cartRepo.WithTx(tx).ListByMember(ctx, memberID)
		if err != nil {
			return err
		}

		priceLines := make([]pricing.Line, 0, len(lines))
		lineIDs := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			if line.Perfume == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("cart line %s has no perfume", line.ID))
			}
			priceLines = append(priceLines, pricing.Line{
				PerfumeID: line.PerfumeID,
				Quantity:  line.Quantity,
				UnitPrice: line.Perfume.Price,
			})
			lineIDs = append(lineIDs, line.ID)
		}

		var terms *pricing.CouponTerms
		if input.IssuedCouponID != nil {
			issued, err := s.couponSvc.Redeem(ctx, tx, *input.IssuedCouponID, memberID, now)
			if err != nil {
				return err
			}
			if issued.Coupon == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, "redeemed coupon has no definition")
			}
			terms = &pricing.CouponTerms{
				DiscountType:  issued.Coupon.DiscountType,
				DiscountValue: issued.Coupon.DiscountValue,
				MaxDiscount:   issued.Coupon.MaxDiscount,
				MinPurchase:   issued.Coupon.MinPurchase,
				ExpiresAt:     issued.Coupon.ExpiresAt,
			}
		}

		quote, err := pricing.Compute(priceLines, terms, now)
		if err != nil {
			return err
		}

		for _, line := range priceLines {
			if err := s.stockSvc.Decrement(ctx, tx, line.PerfumeID, line.Quantity, inventory.ReasonCheckout); err != nil {
				return err
			}
		}

		orderLines := make([]orders.CreateOrderLine, len(lines))
		for i, line := range lines {
			orderLines[i] = orders.CreateOrderLine{
				PerfumeID:   line.PerfumeID,
				PerfumeName: line.Perfume.Name,
				Quantity:    line.Quantity,
				UnitPrice:   line.Perfume.Price,
				FinalPrice:  line.Perfume.Price * line.Quantity,
			}
		}

		order, err := s.orderSvc.Create(ctx, tx, orders.CreateOrderInput{
			MemberID:        memberID,
			TotalAmount:     quote.Total,
			DiscountAmount:  quote.Discount,
			FinalAmount:     quote.Final,
			PaymentMethod:   input.PaymentMethod,
			IssuedCouponID:  input.IssuedCouponID,
			ReceiverName:    input.ReceiverName,
			ReceiverPhone:   input.ReceiverPhone,
			ShippingZipcode: input.ShippingZipcode,
			ShippingAddress: input.ShippingAddress,
			Lines:           orderLines,
		})
		if err != nil {
			return err
		}

		points, err := s.loyalties.CreditForOrder(ctx, tx, memberID, order.ID, order.FinalAmount, order.OrderNumber)
		if err != nil {
			return err
		}

		if err := s.cartSvc.ClearLines(ctx, tx, memberID, lineIDs); err != nil {
			return err
		}

		result = &Result{Order: order, PointsEarned: points}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateInput(input Input) error {
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if input.ReceiverName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "receiver name required")
	}
	if input.ReceiverPhone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "receiver phone required")
	}
	if input.ShippingZipcode == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping zipcode required")
	}
	if input.ShippingAddress == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	return nil
}

// WithClock overrides the service clock. Test hook.
func WithClock(svc Service, clock func() time.Time) Service {
	if s, ok := svc.(*service); ok && clock != nil {
		s.now = clock
	}
	return svc
}

var _ couponRedeemer = (coupons.Service)(nil)
var _ pointCrediter = (loyalty.Service)(nil)
