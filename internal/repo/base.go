package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the connection handling shared by the domain repositories:
// context binding for every query and transaction rebinding for WithTx.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// Rebind returns a Base bound to tx so repository methods run inside the
// caller's transaction. A nil tx keeps the current binding.
func (b Base) Rebind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// DB returns the connection bound to ctx for cancellation propagation.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
