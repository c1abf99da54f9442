package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/pkg/enums"
)

// StockAdjustment is the append-only audit trail of stock mutations. Every
// change to Perfume.StockCount writes exactly one row whose quantity is the
// absolute delta.
type StockAdjustment struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PerfumeID  uuid.UUID             `gorm:"column:perfume_id;type:uuid;not null;index"`
	ChangeType enums.StockChangeType `gorm:"column:change_type;not null"`
	Quantity   int                   `gorm:"column:quantity;not null"`
	Reason     string                `gorm:"column:reason;not null"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
}
