package models

import "time"

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID *uint     `gorm:"uniqueIndex" json:"account_id"` // nil for admin-entered customers
	FirstName string    `gorm:"size:100;not null" json:"first_name" binding:"required,max=100"`
	LastName  string    `gorm:"size:100;not null" json:"last_name" binding:"required,max=100"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email" binding:"required,email,max=254"`
	Phone     string    `gorm:"size:20" json:"phone" binding:"required,max=20"`
	CreatedAt time.Time `gorm:"autoCreateTime;<-:create" json:"created_at"`
}

type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Product    *Product  `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Customer   *Customer `gorm:"constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	Rating     int       `gorm:"not null" json:"rating" binding:"min=1,max=5"`
	Comment    string    `gorm:"type:text" json:"comment" binding:"required"`
	CreatedAt  time.Time `gorm:"autoCreateTime;<-:create" json:"created_at"`
}
