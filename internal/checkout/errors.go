package checkout

import (
	"errors"

	"github.com/aion-commerce/aion-backend/internal/coupons"
	"github.com/aion-commerce/aion-backend/internal/inventory"
	"github.com/aion-commerce/aion-backend/internal/pricing"
)

// IsEmptyCart reports whether checkout failed because the cart had no lines.
func IsEmptyCart(err error) bool {
	return errors.Is(err, pricing.ErrEmptyCart)
}

// IsMinPurchaseNotMet reports whether the cart total fell below the coupon minimum.
func IsMinPurchaseNotMet(err error) bool {
	return errors.Is(err, pricing.ErrMinPurchaseNotMet)
}

// IsCouponExpired reports whether the presented coupon had expired.
func IsCouponExpired(err error) bool {
	return errors.Is(err, pricing.ErrCouponExpired)
}

// IsCouponAlreadyUsed reports whether the redemption was consumed before.
func IsCouponAlreadyUsed(err error) bool {
	return errors.Is(err, coupons.ErrAlreadyUsed)
}

// IsCouponNotOwned reports whether the member presented another member's redemption.
func IsCouponNotOwned(err error) bool {
	return errors.Is(err, coupons.ErrNotOwned)
}

// IsInsufficientStock reports whether a line would have driven stock below zero.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, inventory.ErrInsufficientStock)
}

// failureReason labels a checkout error for metrics.
func failureReason(err error) string {
	switch {
	case IsEmptyCart(err):
		return "empty_cart"
	case IsMinPurchaseNotMet(err):
		return "min_purchase_not_met"
	case IsCouponExpired(err):
		return "coupon_expired"
	case IsCouponAlreadyUsed(err):
		return "coupon_already_used"
	case IsCouponNotOwned(err):
		return "coupon_not_owned"
	case IsInsufficientStock(err):
		return "insufficient_stock"
	default:
		return "internal"
	}
}
