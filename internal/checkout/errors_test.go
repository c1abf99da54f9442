package checkout

import (
	"errors"
	"testing"

	"github.com/aion-commerce/aion-backend/internal/coupons"
	"github.com/aion-commerce/aion-backend/internal/inventory"
	"github.com/aion-commerce/aion-backend/internal/pricing"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
)

func TestPredicatesMatchWrappedErrors(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		predicate func(error) bool
	}{
		{"empty cart", pkgerrors.Wrap(pkgerrors.CodeValidation, pricing.ErrEmptyCart, "cannot price an empty cart"), IsEmptyCart},
		{"min purchase", pkgerrors.Wrap(pkgerrors.CodeValidation, pricing.ErrMinPurchaseNotMet, "below minimum"), IsMinPurchaseNotMet},
		{"expired", pkgerrors.Wrap(pkgerrors.CodeStateConflict, pricing.ErrCouponExpired, "coupon expired"), IsCouponExpired},
		{"already used", pkgerrors.Wrap(pkgerrors.CodeConflict, coupons.ErrAlreadyUsed, "coupon already used"), IsCouponAlreadyUsed},
		{"not owned", pkgerrors.Wrap(pkgerrors.CodeForbidden, coupons.ErrNotOwned, "foreign coupon"), IsCouponNotOwned},
		{"insufficient stock", pkgerrors.Wrap(pkgerrors.CodeStateConflict, inventory.ErrInsufficientStock, "insufficient stock"), IsInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.predicate(tc.err) {
				t.Fatalf("predicate did not match %v", tc.err)
			}
			if tc.predicate(errors.New("unrelated")) {
				t.Fatal("predicate matched unrelated error")
			}
		})
	}
}

func TestFailureReasonLabels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{pkgerrors.Wrap(pkgerrors.CodeValidation, pricing.ErrEmptyCart, ""), "empty_cart"},
		{pkgerrors.Wrap(pkgerrors.CodeValidation, pricing.ErrMinPurchaseNotMet, ""), "min_purchase_not_met"},
		{pkgerrors.Wrap(pkgerrors.CodeStateConflict, pricing.ErrCouponExpired, ""), "coupon_expired"},
		{pkgerrors.Wrap(pkgerrors.CodeConflict, coupons.ErrAlreadyUsed, ""), "coupon_already_used"},
		{pkgerrors.Wrap(pkgerrors.CodeForbidden, coupons.ErrNotOwned, ""), "coupon_not_owned"},
		{pkgerrors.Wrap(pkgerrors.CodeStateConflict, inventory.ErrInsufficientStock, ""), "insufficient_stock"},
		{errors.New("boom"), "internal"},
	}
	for _, tc := range cases {
		if got := failureReason(tc.err); got != tc.want {
			t.Fatalf("failureReason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
