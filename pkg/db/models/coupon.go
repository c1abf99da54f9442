package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/pkg/enums"
)

// CouponDefinition is the admin-managed template a redemption is issued from.
// Definitions are immutable once issued to members.
type CouponDefinition struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code          string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue int                `gorm:"column:discount_value;not null"`
	MaxDiscount   *int               `gorm:"column:max_discount"`
	MinPurchase   *int               `gorm:"column:min_purchase"`
	ExpiresAt     *time.Time         `gorm:"column:expires_at"`
	UsageLimit    int                `gorm:"column:usage_limit;not null;default:1"`
	IsStackable   bool               `gorm:"column:is_stackable;not null;default:false"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// IssuedCoupon is one redemption of a definition held by one member.
// Used flips false to true exactly once and never reverses.
type IssuedCoupon struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID  uuid.UUID         `gorm:"column:member_id;type:uuid;not null;index"`
	CouponID  uuid.UUID         `gorm:"column:coupon_id;type:uuid;not null"`
	Used      bool              `gorm:"column:used;not null;default:false"`
	UsedAt    *time.Time        `gorm:"column:used_at"`
	Coupon    *CouponDefinition `gorm:"foreignKey:CouponID"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
