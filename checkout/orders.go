package checkout

import (
	"context"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/catalog"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// OrderService administers placed orders. Stock goes back to the catalog whenever
// a pending order is cancelled or deleted.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

func (s *OrderService) load(ctx context.Context, tx *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	err := tx.WithContext(ctx).Preload("Items").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "order with id %d", id)
	}
	if err != nil {
		return nil, apperr.Upstream(err, "load order")
	}
	return &order, nil
}

// Get loads an order with its items and their products.
func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items.Product").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "order with id %d", id)
	}
	if err != nil {
		return nil, apperr.Upstream(err, "load order")
	}
	return &order, nil
}

// ForCustomer lists a customer's orders, newest first.
func (s *OrderService) ForCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Preload("Items.Product").
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Upstream(err, "list orders")
	}
	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		invalid := apperr.NewValidationError()
		invalid.Add("status", "\""+string(status)+"\" is not a valid choice.")
		return nil, invalid
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if order.Status == status {
			return nil
		}
		if order.Status == models.OrderStatusCancelled {
			invalid := apperr.NewValidationError()
			invalid.Add("status", "A cancelled order cannot change status.")
			return invalid
		}
		if order.Status == models.OrderStatusPending && status == models.OrderStatusCancelled {
			if err := restock(ctx, tx, order); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error; err != nil {
			return apperr.Upstream(err, "update order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an order and its items.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusPending {
			if err := restock(ctx, tx, order); err != nil {
				return err
			}
		}
		return deleteOrderRows(tx, id)
	})
}

func restock(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	store := catalog.NewStore(tx)
	for _, item := range order.Items {
		err := store.IncrementStock(ctx, item.ProductID, item.Quantity)
		// a product removed since the order was placed has nothing to return stock to
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
	}
	return nil
}
