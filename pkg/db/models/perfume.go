package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Perfume is the canonical catalog listing. Price is stored in won and stock
// is only mutated through the inventory store so every change is audited.
type Perfume struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string         `gorm:"column:name;not null"`
	NameEN      *string        `gorm:"column:name_en"`
	Brand       string         `gorm:"column:brand;not null"`
	Description *string        `gorm:"column:description"`
	Price       int            `gorm:"column:price;not null"`
	VolumeML    int            `gorm:"column:volume_ml;not null;default:50"`
	Gender      *string        `gorm:"column:gender"`
	ScentNotes  pq.StringArray `gorm:"column:scent_notes;type:text[]"`
	StockCount  int            `gorm:"column:stock_count;not null;default:0"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
