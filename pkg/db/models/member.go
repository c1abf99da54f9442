package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/pkg/enums"
)

// Member is a registered shopper (or admin). The running point balance is
// deliberately not cached here; it is derived from the loyalty ledger.
type Member struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Name         string           `gorm:"column:name;not null"`
	Phone        *string          `gorm:"column:phone"`
	Role         enums.MemberRole `gorm:"column:role;not null;default:'member'"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
