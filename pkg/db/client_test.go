package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type txRecord struct {
	ID    uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Value string    `gorm:"column:value"`
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	dsn := "file:dbclient_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&txRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return FromGorm(conn)
}

func TestWithTxCommits(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	id := uuid.New()
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&txRecord{ID: id, Value: "kept"}).Error
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got txRecord
	if err := client.DB().First(&got, "id = ?", id).Error; err != nil {
		t.Fatalf("row should exist after commit: %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	id := uuid.New()
	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&txRecord{ID: id, Value: "discarded"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	if err := client.DB().Model(&txRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatal("row must not survive rollback")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error is not a violation")
	}
	if !IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "orders_order_number_key"`), "") {
		t.Fatal("expected postgres duplicate to match")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: orders.order_number"), "") {
		t.Fatal("expected sqlite duplicate to match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error must not match")
	}
}
