package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
)

var quoteTime = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func sampleLines() []Line {
	return []Line{
		{PerfumeID: uuid.New(), Quantity: 2, UnitPrice: 50000},
		{PerfumeID: uuid.New(), Quantity: 1, UnitPrice: 30000},
	}
}

func TestComputeWithoutCoupon(t *testing.T) {
	quote, err := Compute(sampleLines(), nil, quoteTime)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if quote.Total != 130000 {
		t.Fatalf("Total = %d, want 130000", quote.Total)
	}
	if quote.Discount != 0 {
		t.Fatalf("Discount = %d, want 0", quote.Discount)
	}
	if quote.Final != 130000 {
		t.Fatalf("Final = %d, want 130000", quote.Final)
	}
}

func TestComputePercentageCouponCapped(t *testing.T) {
	coupon := &CouponTerms{
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 10,
		MaxDiscount:   intPtr(5000),
	}

	quote, err := Compute(sampleLines(), coupon, quoteTime)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if quote.Discount != 5000 {
		t.Fatalf("Discount = %d, want 5000 (10%% of 130000 capped)", quote.Discount)
	}
	if quote.Final != 125000 {
		t.Fatalf("Final = %d, want 125000", quote.Final)
	}
}

func TestComputePercentageCouponUncapped(t *testing.T) {
	coupon := &CouponTerms{
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 10,
	}

	quote, err := Compute(sampleLines(), coupon, quoteTime)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if quote.Discount != 13000 {
		t.Fatalf("Discount = %d, want 13000", quote.Discount)
	}
	if quote.Final != 117000 {
		t.Fatalf("Final = %d, want 117000", quote.Final)
	}
}

func TestComputeFixedCouponClampedToTotal(t *testing.T) {
	lines := []Line{{PerfumeID: uuid.New(), Quantity: 1, UnitPrice: 3000}}
	coupon := &CouponTerms{
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 5000,
	}

	quote, err := Compute(lines, coupon, quoteTime)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if quote.Discount != 3000 {
		t.Fatalf("Discount = %d, want 3000 (clamped to total)", quote.Discount)
	}
	if quote.Final != 0 {
		t.Fatalf("Final = %d, want 0", quote.Final)
	}
}

func TestComputeFixedCouponIgnoresMaxDiscount(t *testing.T) {
	coupon := &CouponTerms{
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 8000,
		MaxDiscount:   intPtr(5000),
	}

	quote, err := Compute(sampleLines(), coupon, quoteTime)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if quote.Discount != 8000 {
		t.Fatalf("Discount = %d, want 8000 (cap is percentage-only)", quote.Discount)
	}
	if quote.Final != 122000 {
		t.Fatalf("Final = %d, want 122000", quote.Final)
	}
}

func TestComputeEmptyCart(t *testing.T) {
	_, err := Compute(nil, nil, quoteTime)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected CodeValidation, got %v", err)
	}
}

func TestComputeMinPurchaseNotMet(t *testing.T) {
	lines := []Line{{PerfumeID: uuid.New(), Quantity: 1, UnitPrice: 10000}}
	coupon := &CouponTerms{
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 2000,
		MinPurchase:   intPtr(30000),
	}

	_, err := Compute(lines, coupon, quoteTime)
	if !errors.Is(err, ErrMinPurchaseNotMet) {
		t.Fatalf("expected ErrMinPurchaseNotMet, got %v", err)
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected CodeValidation, got %v", err)
	}
}

func TestComputeExpiredCoupon(t *testing.T) {
	expired := quoteTime.Add(-time.Hour)
	coupon := &CouponTerms{
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 10,
		ExpiresAt:     &expired,
	}

	_, err := Compute(sampleLines(), coupon, quoteTime)
	if !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("expected ErrCouponExpired, got %v", err)
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected CodeStateConflict, got %v", err)
	}
}

func TestComputeExpiryBoundary(t *testing.T) {
	atQuoteTime := quoteTime
	coupon := &CouponTerms{
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 1000,
		ExpiresAt:     &atQuoteTime,
	}

	quote, err := Compute(sampleLines(), coupon, quoteTime)
	if err != nil {
		t.Fatalf("coupon expiring exactly now should still apply: %v", err)
	}
	if quote.Discount != 1000 {
		t.Fatalf("Discount = %d, want 1000", quote.Discount)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	lines := sampleLines()
	coupon := &CouponTerms{
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 15,
		MaxDiscount:   intPtr(10000),
	}

	first, err := Compute(lines, coupon, quoteTime)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Compute(lines, coupon, quoteTime)
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		if again != first {
			t.Fatalf("quote changed between identical calls: %+v vs %+v", again, first)
		}
	}
}
