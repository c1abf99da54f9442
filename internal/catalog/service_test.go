package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/internal/inventory"
	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
	"github.com/aion-commerce/aion-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(new(gorm.DB))
}

type stubCatalogRepo struct {
	perfumes map[uuid.UUID]*models.Perfume
	listRows []models.Perfume
	created  []*models.Perfume
	updated  []*models.Perfume
	active   map[uuid.UUID]bool
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		perfumes: map[uuid.UUID]*models.Perfume{},
		active:   map[uuid.UUID]bool{},
	}
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) Create(ctx context.Context, perfume *models.Perfume) error {
	if perfume.ID == uuid.Nil {
		perfume.ID = uuid.New()
	}
	s.created = append(s.created, perfume)
	s.perfumes[perfume.ID] = perfume
	return nil
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Perfume, error) {
	perfume, ok := s.perfumes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return perfume, nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, perfume *models.Perfume) error {
	s.updated = append(s.updated, perfume)
	s.perfumes[perfume.ID] = perfume
	return nil
}

func (s *stubCatalogRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	s.active[id] = active
	return nil
}

func (s *stubCatalogRepo) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Perfume, error) {
	if limit < len(s.listRows) {
		return s.listRows[:limit], nil
	}
	return s.listRows, nil
}

type stubInventoryRepo struct {
	adjustments []*models.StockAdjustment
}

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) inventory.Repository { return s }

func (s *stubInventoryRepo) FindPerfumeForUpdate(ctx context.Context, id uuid.UUID) (*models.Perfume, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubInventoryRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	return false, nil
}

func (s *stubInventoryRepo) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	return true, nil
}

func (s *stubInventoryRepo) CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error {
	s.adjustments = append(s.adjustments, adjustment)
	return nil
}

func (s *stubInventoryRepo) ListAdjustments(ctx context.Context, perfumeID uuid.UUID) ([]models.StockAdjustment, error) {
	return nil, nil
}

func (s *stubInventoryRepo) SumAdjustments(ctx context.Context, perfumeID uuid.UUID, changeType enums.StockChangeType) (int, error) {
	return 0, nil
}

func (s *stubInventoryRepo) ListPerfumeStock(ctx context.Context) ([]inventory.PerfumeStock, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo *stubCatalogRepo, inv *stubInventoryRepo) Service {
	t.Helper()
	svc, err := NewService(stubTxRunner{}, repo, inv)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateSeedsInitialStockAdjustment(t *testing.T) {
	repo := newStubCatalogRepo()
	inv := &stubInventoryRepo{}
	svc := newTestService(t, repo, inv)

	perfume, err := svc.Create(context.Background(), CreatePerfumeInput{
		Name:         "Santal Noir",
		Brand:        "Aion",
		Price:        85000,
		InitialStock: 12,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if perfume.StockCount != 12 {
		t.Fatalf("stock count = %d, want 12", perfume.StockCount)
	}
	if !perfume.IsActive {
		t.Fatalf("new perfume should be active")
	}
	if perfume.VolumeML != 50 {
		t.Fatalf("volume = %d, want default 50", perfume.VolumeML)
	}
	if len(inv.adjustments) != 1 {
		t.Fatalf("adjustments = %d, want 1", len(inv.adjustments))
	}
	adj := inv.adjustments[0]
	if adj.ChangeType != enums.StockChangeIn || adj.Quantity != 12 {
		t.Fatalf("adjustment = %s/%d, want in/12", adj.ChangeType, adj.Quantity)
	}
	if adj.Reason != "initial stock" {
		t.Fatalf("reason = %q", adj.Reason)
	}
	if adj.PerfumeID != perfume.ID {
		t.Fatalf("adjustment perfume id mismatch")
	}
}

func TestCreateWithoutStockSkipsAdjustment(t *testing.T) {
	repo := newStubCatalogRepo()
	inv := &stubInventoryRepo{}
	svc := newTestService(t, repo, inv)

	if _, err := svc.Create(context.Background(), CreatePerfumeInput{
		Name:  "Aqua Vitae",
		Brand: "Aion",
		Price: 62000,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(inv.adjustments) != 0 {
		t.Fatalf("adjustments = %d, want 0", len(inv.adjustments))
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, newStubCatalogRepo(), &stubInventoryRepo{})

	cases := []struct {
		name  string
		input CreatePerfumeInput
	}{
		{"missing name", CreatePerfumeInput{Brand: "Aion", Price: 1000}},
		{"missing brand", CreatePerfumeInput{Name: "X", Price: 1000}},
		{"negative price", CreatePerfumeInput{Name: "X", Brand: "Aion", Price: -1}},
		{"negative stock", CreatePerfumeInput{Name: "X", Brand: "Aion", Price: 1, InitialStock: -5}},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), tc.input)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: error = %v, want validation code", tc.name, err)
		}
	}
}

func TestGetUnknownPerfume(t *testing.T) {
	svc := newTestService(t, newStubCatalogRepo(), &stubInventoryRepo{})

	_, err := svc.Get(context.Background(), uuid.New())
	if err == nil {
		t.Fatalf("expected error")
	}
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("error = %v, want not found code", err)
	}
}

func TestUpdateEditsListing(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newTestService(t, repo, &stubInventoryRepo{})

	created, err := svc.Create(context.Background(), CreatePerfumeInput{
		Name: "Old Name", Brand: "Aion", Price: 50000, InitialStock: 0,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, UpdatePerfumeInput{
		Name:     "New Name",
		Brand:    "Aion",
		Price:    55000,
		VolumeML: 100,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "New Name" || updated.Price != 55000 || updated.VolumeML != 100 {
		t.Fatalf("updated = %+v", updated)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("update calls = %d, want 1", len(repo.updated))
	}
}

func TestUpdateDoesNotTouchStock(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newTestService(t, repo, &stubInventoryRepo{})

	created, err := svc.Create(context.Background(), CreatePerfumeInput{
		Name: "Iris Bloom", Brand: "Aion", Price: 70000, InitialStock: 7,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, UpdatePerfumeInput{
		Name: "Iris Bloom", Brand: "Aion", Price: 72000,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.StockCount != 7 {
		t.Fatalf("stock count = %d, want 7", updated.StockCount)
	}
}

func TestSetActiveTogglesListing(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newTestService(t, repo, &stubInventoryRepo{})

	created, err := svc.Create(context.Background(), CreatePerfumeInput{
		Name: "Vetiver", Brand: "Aion", Price: 40000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.SetActive(context.Background(), created.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if active, ok := repo.active[created.ID]; !ok || active {
		t.Fatalf("active = %v/%v, want recorded false", active, ok)
	}

	if err := svc.SetActive(context.Background(), uuid.New(), false); err == nil {
		t.Fatalf("expected not found for unknown perfume")
	}
}

func TestListPaginatesAndEncodesCursor(t *testing.T) {
	repo := newStubCatalogRepo()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		repo.listRows = append(repo.listRows, models.Perfume{
			ID:        uuid.New(),
			Name:      "Perfume",
			Brand:     "Aion",
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	svc := newTestService(t, repo, &stubInventoryRepo{})

	page, err := svc.List(context.Background(), ListFilter{ActiveOnly: true}, pagination.Params{Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Perfumes) != 3 {
		t.Fatalf("page size = %d, want 3", len(page.Perfumes))
	}
	if !page.HasMore {
		t.Fatalf("expected more pages")
	}

	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	last := page.Perfumes[2]
	if cursor == nil || cursor.ID != last.ID || !cursor.CreatedAt.Equal(last.CreatedAt) {
		t.Fatalf("cursor = %+v, want last row of page", cursor)
	}
}

func TestListRejectsMalformedCursor(t *testing.T) {
	svc := newTestService(t, newStubCatalogRepo(), &stubInventoryRepo{})

	_, err := svc.List(context.Background(), ListFilter{}, pagination.Params{Cursor: "not-a-cursor"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want validation code", err)
	}
}
