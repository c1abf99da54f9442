package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is one perfume/quantity pair in a member's cart. Lines are mutable
// until checkout, which deletes exactly the lines it priced.
type CartLine struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID  uuid.UUID `gorm:"column:member_id;type:uuid;not null;uniqueIndex:idx_cart_member_perfume"`
	PerfumeID uuid.UUID `gorm:"column:perfume_id;type:uuid;not null;uniqueIndex:idx_cart_member_perfume"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Perfume   *Perfume  `gorm:"foreignKey:PerfumeID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
