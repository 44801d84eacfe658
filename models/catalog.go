package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Slug  string `gorm:"size:100;uniqueIndex;not null" json:"slug" binding:"required,max=100,slug"`
	Image string `gorm:"size:255" json:"image" binding:"max=255"` // path under the uploads dir
}

type Manufacturer struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Country string `gorm:"size:100;not null" json:"country" binding:"required,max=100"`
}

type Product struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string          `gorm:"size:200;not null" json:"name" binding:"required,max=200"`
	Slug           string          `gorm:"size:200;uniqueIndex;not null" json:"slug" binding:"required,max=200,slug"`
	Description    string          `gorm:"type:text" json:"description" binding:"required"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price" binding:"money"`
	Stock          int             `gorm:"not null;default:0" json:"stock" binding:"gte=0"`
	CategoryID     uint            `gorm:"not null;index" json:"category_id"`
	Category       *Category       `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
	ManufacturerID *uint           `gorm:"index" json:"manufacturer_id"` // nil means unspecified
	Manufacturer   *Manufacturer   `gorm:"constraint:OnDelete:SET NULL" json:"manufacturer,omitempty"`
	MainImage      string          `gorm:"size:255" json:"main_image" binding:"required,max=255"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;<-:create" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
