package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/pkg/enums"
)

// Order is the immutable record of a completed checkout. Amounts satisfy
// FinalAmount == max(0, TotalAmount-DiscountAmount) at creation and only the
// status may change afterwards.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID        uuid.UUID           `gorm:"column:member_id;type:uuid;not null;index"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex"`
	TotalAmount     int                 `gorm:"column:total_amount;not null"`
	DiscountAmount  int                 `gorm:"column:discount_amount;not null;default:0"`
	FinalAmount     int                 `gorm:"column:final_amount;not null"`
	Status          enums.OrderStatus   `gorm:"column:status;not null;default:'completed'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null"`
	IssuedCouponID  *uuid.UUID          `gorm:"column:issued_coupon_id;type:uuid;uniqueIndex"`
	ReceiverName    string              `gorm:"column:receiver_name;not null"`
	ReceiverPhone   string              `gorm:"column:receiver_phone;not null"`
	ShippingZipcode string              `gorm:"column:shipping_zipcode;not null"`
	ShippingAddress string              `gorm:"column:shipping_address;not null"`
	Lines           []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// OrderLine snapshots a cart line at checkout time so later catalog edits do
// not rewrite order history.
type OrderLine struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	PerfumeID           uuid.UUID `gorm:"column:perfume_id;type:uuid;not null"`
	PerfumeNameSnapshot string    `gorm:"column:perfume_name_snapshot;not null"`
	Quantity            int       `gorm:"column:quantity;not null"`
	UnitPrice           int       `gorm:"column:unit_price;not null"`
	FinalPrice          int       `gorm:"column:final_price;not null"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
}
