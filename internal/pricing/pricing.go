package pricing

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
)

var (
	// ErrEmptyCart is returned when a quote is requested over zero lines.
	ErrEmptyCart = errors.New("cart contains no lines")
	// ErrMinPurchaseNotMet is returned when the cart total is below the coupon's minimum.
	ErrMinPurchaseNotMet = errors.New("cart total below coupon minimum purchase")
	// ErrCouponExpired is returned when the coupon's expiry predates the quote time.
	ErrCouponExpired = errors.New("coupon expired")
)

// Line is one priced cart row. UnitPrice is in won.
type Line struct {
	PerfumeID uuid.UUID
	Quantity  int
	UnitPrice int
}

// CouponTerms carries the discount rules read from a coupon definition.
type CouponTerms struct {
	DiscountType  enums.DiscountType
	DiscountValue int
	MaxDiscount   *int
	MinPurchase   *int
	ExpiresAt     *time.Time
}

// Quote is the result of pricing a cart. Final is always
// max(0, Total-Discount); amounts are in won.
type Quote struct {
	Total    int
	Discount int
	Final    int
}

// Compute prices the given lines with an optional coupon. It reads no state
// and takes the clock as an argument, so the same inputs always produce the
// same quote.
func Compute(lines []Line, coupon *CouponTerms, now time.Time) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrEmptyCart, "cannot price an empty cart")
	}

	total := 0
	for _, line := range lines {
		total += line.UnitPrice * line.Quantity
	}

	discount := 0
	if coupon != nil {
		var err error
		discount, err = couponDiscount(total, coupon, now)
		if err != nil {
			return Quote{}, err
		}
	}

	final := total - discount
	if final < 0 {
		final = 0
	}

	return Quote{
		Total:    total,
		Discount: discount,
		Final:    final,
	}, nil
}

func couponDiscount(total int, coupon *CouponTerms, now time.Time) (int, error) {
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(now) {
		return 0, pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrCouponExpired, "coupon expired")
	}
	if coupon.MinPurchase != nil && total < *coupon.MinPurchase {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMinPurchaseNotMet, "cart total below coupon minimum purchase")
	}

	var discount int
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = total * coupon.DiscountValue / 100
		// The cap applies to percentage coupons only; a fixed coupon is
		// bounded by the cart total alone.
		if coupon.MaxDiscount != nil && discount > *coupon.MaxDiscount {
			discount = *coupon.MaxDiscount
		}
	case enums.DiscountTypeFixed:
		discount = coupon.DiscountValue
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown discount type")
	}

	if discount > total {
		discount = total
	}
	return discount, nil
}
