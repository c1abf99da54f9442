package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aion-commerce/aion-backend/pkg/db/models"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:inventory_repo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	perfumes := `
CREATE TABLE IF NOT EXISTS perfumes (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  name_en TEXT,
  brand TEXT NOT NULL,
  description TEXT,
  price INTEGER NOT NULL,
  volume_ml INTEGER NOT NULL DEFAULT 50,
  gender TEXT,
  scent_notes TEXT,
  stock_count INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(perfumes).Error)
	t.Cleanup(func() {
		db.Exec("DELETE FROM perfumes")
	})
	return db
}

func insertPerfume(t *testing.T, db *gorm.DB, stock int) uuid.UUID {
	t.Helper()
	perfume := models.Perfume{
		ID:         uuid.New(),
		Name:       "Iris Ombre",
		Brand:      "Maison AION",
		Price:      92000,
		VolumeML:   50,
		StockCount: stock,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&perfume).Error)
	return perfume.ID
}

func TestIncrementStockAddsQuantity(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	perfumeID := insertPerfume(t, db, 3)

	updated, err := repo.IncrementStock(ctx, perfumeID, 7)
	require.NoError(t, err)
	assert.True(t, updated)

	var perfume models.Perfume
	require.NoError(t, db.First(&perfume, "id = ?", perfumeID).Error)
	assert.Equal(t, 10, perfume.StockCount)
}

func TestIncrementStockUnknownPerfume(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	updated, err := repo.IncrementStock(context.Background(), uuid.New(), 5)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestDecrementStockEnforcesFloor(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	perfumeID := insertPerfume(t, db, 2)

	updated, err := repo.DecrementStock(ctx, perfumeID, 3)
	require.NoError(t, err)
	assert.False(t, updated)

	var perfume models.Perfume
	require.NoError(t, db.First(&perfume, "id = ?", perfumeID).Error)
	assert.Equal(t, 2, perfume.StockCount)
}
