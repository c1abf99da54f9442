package coupons

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(new(gorm.DB))
}

type stubRepo struct {
	definitions map[uuid.UUID]*models.CouponDefinition
	issued      map[uuid.UUID]*models.IssuedCoupon
	issuedCount int64
	markUsedOK  bool
	findErr     error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		definitions: map[uuid.UUID]*models.CouponDefinition{},
		issued:      map[uuid.UUID]*models.IssuedCoupon{},
		markUsedOK:  true,
	}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) CreateDefinition(_ context.Context, definition *models.CouponDefinition) error {
	if definition.ID == uuid.Nil {
		definition.ID = uuid.New()
	}
	r.definitions[definition.ID] = definition
	return nil
}

func (r *stubRepo) FindDefinitionByID(_ context.Context, id uuid.UUID) (*models.CouponDefinition, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	definition, ok := r.definitions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return definition, nil
}

func (r *stubRepo) FindDefinitionByCode(_ context.Context, code string) (*models.CouponDefinition, error) {
	for _, definition := range r.definitions {
		if definition.Code == code {
			return definition, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) ListDefinitions(_ context.Context) ([]models.CouponDefinition, error) {
	out := make([]models.CouponDefinition, 0, len(r.definitions))
	for _, definition := range r.definitions {
		out = append(out, *definition)
	}
	return out, nil
}

func (r *stubRepo) Issue(_ context.Context, issued *models.IssuedCoupon) error {
	if issued.ID == uuid.Nil {
		issued.ID = uuid.New()
	}
	r.issued[issued.ID] = issued
	r.issuedCount++
	return nil
}

func (r *stubRepo) CountIssued(_ context.Context, couponID uuid.UUID) (int64, error) {
	return r.issuedCount, nil
}

func (r *stubRepo) FindIssuedByID(_ context.Context, id uuid.UUID) (*models.IssuedCoupon, error) {
	issued, ok := r.issued[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return issued, nil
}

func (r *stubRepo) FindIssuedByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.IssuedCoupon, error) {
	return r.FindIssuedByID(ctx, id)
}

func (r *stubRepo) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	if !r.markUsedOK {
		return false, nil
	}
	issued, ok := r.issued[id]
	if !ok || issued.Used {
		return false, nil
	}
	issued.Used = true
	issued.UsedAt = &usedAt
	return true, nil
}

func (r *stubRepo) ListIssuedByMember(_ context.Context, memberID uuid.UUID) ([]models.IssuedCoupon, error) {
	var out []models.IssuedCoupon
	for _, issued := range r.issued {
		if issued.MemberID == memberID {
			out = append(out, *issued)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(stubTxRunner{}, repo)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestCreateDefinitionValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	cases := []struct {
		name  string
		input CreateDefinitionInput
	}{
		{"missing code", CreateDefinitionInput{DiscountType: enums.DiscountTypeFixed, DiscountValue: 1000}},
		{"bad type", CreateDefinitionInput{Code: "X", DiscountType: "bogus", DiscountValue: 1000}},
		{"zero value", CreateDefinitionInput{Code: "X", DiscountType: enums.DiscountTypeFixed, DiscountValue: 0}},
		{"percent over 100", CreateDefinitionInput{Code: "X", DiscountType: enums.DiscountTypePercentage, DiscountValue: 150}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateDefinition(context.Background(), tc.input)
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected CodeValidation, got %v", err)
			}
		})
	}
}

func TestCreateDefinitionDefaultsUsageLimit(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	definition, err := svc.CreateDefinition(context.Background(), CreateDefinitionInput{
		Code:          "WELCOME10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 10,
	})
	if err != nil {
		t.Fatalf("CreateDefinition returned error: %v", err)
	}
	if definition.UsageLimit != 1 {
		t.Fatalf("UsageLimit = %d, want 1", definition.UsageLimit)
	}
}

func TestIssueEnforcesUsageLimit(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	definition := &models.CouponDefinition{
		ID:            uuid.New(),
		Code:          "ONCE",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 5000,
		UsageLimit:    1,
	}
	repo.definitions[definition.ID] = definition

	memberID := uuid.New()
	if _, err := svc.Issue(context.Background(), definition.ID, memberID); err != nil {
		t.Fatalf("first Issue returned error: %v", err)
	}

	_, err := svc.Issue(context.Background(), definition.ID, memberID)
	if !errors.Is(err, ErrUsageLimitReached) {
		t.Fatalf("expected ErrUsageLimitReached, got %v", err)
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CodeConflict, got %v", err)
	}
}

func TestIssueUnknownCoupon(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.Issue(context.Background(), uuid.New(), uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}

func TestRedeemHappyPath(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	memberID := uuid.New()
	issued := &models.IssuedCoupon{ID: uuid.New(), MemberID: memberID}
	repo.issued[issued.ID] = issued

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	redeemed, err := svc.Redeem(context.Background(), new(gorm.DB), issued.ID, memberID, now)
	if err != nil {
		t.Fatalf("Redeem returned error: %v", err)
	}
	if !redeemed.Used {
		t.Fatal("expected redemption marked used")
	}
	if redeemed.UsedAt == nil || !redeemed.UsedAt.Equal(now) {
		t.Fatalf("UsedAt = %v, want %v", redeemed.UsedAt, now)
	}
}

func TestRedeemRejectsForeignCoupon(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	issued := &models.IssuedCoupon{ID: uuid.New(), MemberID: uuid.New()}
	repo.issued[issued.ID] = issued

	_, err := svc.Redeem(context.Background(), new(gorm.DB), issued.ID, uuid.New(), time.Now())
	if !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected CodeForbidden, got %v", err)
	}
	if issued.Used {
		t.Fatal("redemption must not be consumed on ownership failure")
	}
}

func TestRedeemRejectsUsedCoupon(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	memberID := uuid.New()
	issued := &models.IssuedCoupon{ID: uuid.New(), MemberID: memberID, Used: true}
	repo.issued[issued.ID] = issued

	_, err := svc.Redeem(context.Background(), new(gorm.DB), issued.ID, memberID, time.Now())
	if !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed, got %v", err)
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CodeConflict, got %v", err)
	}
}

func TestRedeemLostFlipRace(t *testing.T) {
	repo := newStubRepo()
	repo.markUsedOK = false
	svc := newTestService(t, repo)

	memberID := uuid.New()
	issued := &models.IssuedCoupon{ID: uuid.New(), MemberID: memberID}
	repo.issued[issued.ID] = issued

	_, err := svc.Redeem(context.Background(), new(gorm.DB), issued.ID, memberID, time.Now())
	if !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed when the guarded update flips no row, got %v", err)
	}
}

func TestRedeemUnknownCoupon(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.Redeem(context.Background(), new(gorm.DB), uuid.New(), uuid.New(), time.Now())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}
