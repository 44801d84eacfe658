package cart

import (
	"context"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ProductCatalog is the part of the catalog the cart reads.
type ProductCatalog interface {
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	FindProducts(ctx context.Context, ids []uint) (map[uint]models.Product, error)
}

type Service struct {
	store   Store
	catalog ProductCatalog
}

func NewService(store Store, catalog ProductCatalog) *Service {
	return &Service{store: store, catalog: catalog}
}

type ViewLine struct {
	Product  models.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// View is a cart joined against current catalog prices.
type View struct {
	Items []ViewLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, apperr.Upstream(err, "load cart")
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, sessionID string, c *Cart) error {
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return apperr.Upstream(err, "save cart")
	}
	return nil
}

// Add puts one more unit of productID in the cart. The product must have stock.
func (s *Service) Add(ctx context.Context, sessionID string, productID uint) (*Cart, error) {
	product, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < 1 {
		return nil, errors.Wrapf(apperr.ErrOutOfStock, "product %s", product.Name)
	}

	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.Set(productID, c.Quantity(productID)+1)
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetQuantity replaces the quantity for productID. Values below 1 are clamped to 1.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, productID uint, quantity int) (*Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	product, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, &apperr.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.Set(productID, quantity)
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Remove(ctx context.Context, sessionID string, productID uint) (*Cart, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.Remove(productID)
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return apperr.Upstream(err, "clear cart")
	}
	return nil
}

// Materialize prices the cart against the catalog. Products that no longer exist are dropped.
func (s *Service) Materialize(ctx context.Context, sessionID string) (*View, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.FindProducts(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}

	view := &View{Items: make([]ViewLine, 0, len(c.Lines)), Total: decimal.Zero}
	for _, line := range c.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Items = append(view.Items, ViewLine{Product: product, Quantity: line.Quantity, Subtotal: subtotal})
		view.Total = view.Total.Add(subtotal)
	}
	return view, nil
}
