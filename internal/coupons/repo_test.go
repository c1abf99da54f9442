package coupons

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
)

func setupCouponsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:coupons_repo?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	require.NoError(t, err)

	definitions := `
CREATE TABLE IF NOT EXISTS coupon_definitions (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  discount_type TEXT NOT NULL,
  discount_value INTEGER NOT NULL,
  max_discount INTEGER,
  min_purchase INTEGER,
  expires_at DATETIME,
  usage_limit INTEGER NOT NULL DEFAULT 1,
  is_stackable INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	issued := `
CREATE TABLE IF NOT EXISTS issued_coupons (
  id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL,
  coupon_id TEXT NOT NULL,
  used INTEGER NOT NULL DEFAULT 0,
  used_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(definitions).Error)
	require.NoError(t, db.Exec(issued).Error)
	return db
}

func insertIssuedCoupon(t *testing.T, db *gorm.DB, memberID uuid.UUID) models.IssuedCoupon {
	t.Helper()

	issued := models.IssuedCoupon{
		ID:        uuid.New(),
		MemberID:  memberID,
		CouponID:  uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&issued).Error)
	return issued
}

func TestMarkUsedFlipsExactlyOnce(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	issued := insertIssuedCoupon(t, db, uuid.New())

	won, err := repo.MarkUsed(ctx, issued.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, won)

	again, err := repo.MarkUsed(ctx, issued.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, again)

	stored, err := repo.FindIssuedByID(ctx, issued.ID)
	require.NoError(t, err)
	assert.True(t, stored.Used)
	require.NotNil(t, stored.UsedAt)
}

func TestMarkUsedConcurrentRedeemsHaveOneWinner(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	issued := insertIssuedCoupon(t, db, uuid.New())

	const attempts = 8
	wins := make(chan bool, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := repo.MarkUsed(ctx, issued.ID, time.Now().UTC())
			assert.NoError(t, err)
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	var winners int
	for won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestFindIssuedByIDUnknown(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindIssuedByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListIssuedByMemberScopesRows(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	memberID := uuid.New()
	mine := insertIssuedCoupon(t, db, memberID)
	insertIssuedCoupon(t, db, uuid.New())

	rows, err := repo.ListIssuedByMember(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)
}
