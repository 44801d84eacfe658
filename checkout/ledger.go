package checkout

import (
	"context"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/catalog"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormTransactor runs each checkout in one database transaction.
type GormTransactor struct {
	db *gorm.DB
}

func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) Run(ctx context.Context, fn func(ctx context.Context, ledger Ledger) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormLedger{tx: tx, store: catalog.NewStore(tx)})
	})
}

type gormLedger struct {
	tx    *gorm.DB
	store *catalog.Store
}

func (l *gormLedger) CreateOrder(ctx context.Context, customerID uint) (*models.Order, error) {
	order := &models.Order{CustomerID: customerID, Status: models.OrderStatusPending}
	if err := l.tx.WithContext(ctx).Create(order).Error; err != nil {
		return nil, apperr.Upstream(err, "create order")
	}
	return order, nil
}

func (l *gormLedger) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	return l.store.FindProduct(ctx, id)
}

func (l *gormLedger) AddItem(ctx context.Context, item *models.OrderItem) error {
	if err := l.tx.WithContext(ctx).Omit("Product").Create(item).Error; err != nil {
		return apperr.Upstream(err, "create order item")
	}
	return nil
}

func (l *gormLedger) DecrementStock(ctx context.Context, productID uint, quantity int) error {
	return l.store.DecrementStock(ctx, productID, quantity)
}

func (l *gormLedger) IncrementStock(ctx context.Context, productID uint, quantity int) error {
	return l.store.IncrementStock(ctx, productID, quantity)
}

func (l *gormLedger) DeleteOrder(ctx context.Context, orderID uint) error {
	return deleteOrderRows(l.tx.WithContext(ctx), orderID)
}

func deleteOrderRows(tx *gorm.DB, orderID uint) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return apperr.Upstream(err, "delete order items")
	}
	res := tx.Delete(&models.Order{}, orderID)
	if res.Error != nil {
		return apperr.Upstream(res.Error, "delete order")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(apperr.ErrNotFound, "order with id %d", orderID)
	}
	return nil
}
