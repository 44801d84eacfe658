package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // Placed by checkout, awaiting fulfilment
	OrderStatusCompleted OrderStatus = "completed" // Fulfilled
	OrderStatusCancelled OrderStatus = "cancelled" // Cancelled, stock returned
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	CustomerID uint        `gorm:"not null;index" json:"customer_id"`
	Customer   *Customer   `gorm:"constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	Status     OrderStatus `gorm:"type:VARCHAR(20);not null;default:'pending'" json:"status"`
	CreatedAt  time.Time   `gorm:"autoCreateTime;<-:create" json:"created_at"`
	Items      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Total sums the line subtotals of the loaded items.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price)
	}
	return total
}

// OrderItem.Price is the line subtotal (unit price x quantity), not the unit price.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"` // lines go with their product
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}
