package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem marks a perfume a member saved for later.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID  uuid.UUID `gorm:"column:member_id;type:uuid;not null;uniqueIndex:idx_wishlist_member_perfume"`
	PerfumeID uuid.UUID `gorm:"column:perfume_id;type:uuid;not null;uniqueIndex:idx_wishlist_member_perfume"`
	Perfume   *Perfume  `gorm:"foreignKey:PerfumeID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
