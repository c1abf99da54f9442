package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/pkg/enums"
)

// LoyaltyLedgerEntry is an append-only record of point movement. The member's
// balance is SUM(points) over their entries; there is no cached counter to
// drift out of sync.
type LoyaltyLedgerEntry struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID    uuid.UUID           `gorm:"column:member_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID          `gorm:"column:order_id;type:uuid"`
	Points      int                 `gorm:"column:points;not null"`
	Description string              `gorm:"column:description;not null"`
	ActionType  enums.LoyaltyAction `gorm:"column:action_type;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
