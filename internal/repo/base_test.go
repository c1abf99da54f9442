package repo

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func TestBaseBindsContext(t *testing.T) {
	base := NewBase(newTestDB(t))

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	bound := base.DB(ctx)

	if bound == nil || bound.Statement == nil {
		t.Fatalf("expected statement bound to context")
	}
	if bound.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", bound.Statement.Context)
	}
}

func TestBaseNilContextReturnsRawConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestRebindSwitchesToTransaction(t *testing.T) {
	db := newTestDB(t)
	tx := newTestDB(t)
	base := NewBase(db)

	rebound := base.Rebind(tx)
	if rebound.db != tx {
		t.Fatalf("expected rebound base to use tx connection")
	}

	kept := base.Rebind(nil)
	if kept.db != db {
		t.Fatalf("expected nil tx to keep original connection")
	}
}
