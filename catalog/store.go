package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/crud"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ProductFilter narrows ListProducts. Zero fields do not filter.
type ProductFilter struct {
	Search         string
	CategoryID     uint
	ManufacturerID uint
	IDs            []uint
}

// Store is the catalog: categories, manufacturers, products and their stock.
type Store struct {
	db            *gorm.DB
	Categories    *crud.Repository[models.Category]
	Manufacturers *crud.Repository[models.Manufacturer]
	Products      *crud.Repository[models.Product]
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Categories:    crud.NewRepository(db, CategorySchema),
		Manufacturers: crud.NewRepository(db, ManufacturerSchema),
		Products:      crud.NewRepository(db, ProductSchema),
	}
}

// WithTx returns a Store whose every call runs inside tx.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return NewStore(tx)
}

func (s *Store) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.Products.Get(ctx, id)
}

func (s *Store) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.Products.FindBy(ctx, "slug", slug)
}

func (s *Store) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.Categories.FindBy(ctx, "slug", slug)
}

// FindProducts loads the products with the given ids, keyed by id. Missing ids are absent from the map.
func (s *Store) FindProducts(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	found := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, apperr.Upstream(err, "load products")
	}
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

func (s *Store) ListProducts(ctx context.Context, filter ProductFilter, page, pageSize int) (*crud.Page[models.Product], error) {
	params := crud.ListParams{Search: filter.Search, Page: page, PageSize: pageSize, Filters: map[string]string{}}
	if filter.CategoryID != 0 {
		params.Filters["category"] = uintString(filter.CategoryID)
	}
	if filter.ManufacturerID != 0 {
		params.Filters["manufacturer"] = uintString(filter.ManufacturerID)
	}
	if filter.IDs != nil {
		if len(filter.IDs) == 0 {
			return &crud.Page[models.Product]{Page: 1, PageSize: pageSize, Results: []models.Product{}}, nil
		}
		ids := make([]string, len(filter.IDs))
		for i, id := range filter.IDs {
			ids[i] = uintString(id)
		}
		params.Filters["ids"] = strings.Join(ids, ",")
	}
	return s.Products.List(ctx, params)
}

// DecrementStock takes quantity units of product id in one conditional update,
// so concurrent callers can never drive stock below zero.
func (s *Store) DecrementStock(ctx context.Context, id uint, quantity int) error {
	if quantity < 1 {
		check := apperr.NewValidationError()
		check.Add("quantity", "Ensure this value is greater than or equal to 1.")
		return check
	}
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return apperr.Upstream(res.Error, "decrement stock")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	product, err := s.FindProduct(ctx, id)
	if err != nil {
		return err
	}
	return &apperr.InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Requested:   quantity,
		Available:   product.Stock,
	}
}

// IncrementStock returns quantity units to product id.
func (s *Store) IncrementStock(ctx context.Context, id uint, quantity int) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return apperr.Upstream(res.Error, "increment stock")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(apperr.ErrNotFound, "product with id %d", id)
	}
	return nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.Categories.Create(ctx, c)
}

func (s *Store) UpdateCategory(ctx context.Context, id uint, c *models.Category) error {
	return s.Categories.Update(ctx, id, c)
}

func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	return s.Categories.Delete(ctx, id)
}

func (s *Store) CreateManufacturer(ctx context.Context, m *models.Manufacturer) error {
	return s.Manufacturers.Create(ctx, m)
}

func (s *Store) UpdateManufacturer(ctx context.Context, id uint, m *models.Manufacturer) error {
	return s.Manufacturers.Update(ctx, id, m)
}

// DeleteManufacturer detaches the manufacturer's products before removing it.
func (s *Store) DeleteManufacturer(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("manufacturer_id = ?", id).
			UpdateColumn("manufacturer_id", nil).Error; err != nil {
			return apperr.Upstream(err, "detach manufacturer")
		}
		return s.Manufacturers.WithTx(tx).Delete(ctx, id)
	})
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	return s.Products.Create(ctx, p)
}

func (s *Store) UpdateProduct(ctx context.Context, id uint, p *models.Product) error {
	return s.Products.Update(ctx, id, p)
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	return s.Products.Delete(ctx, id)
}

func uintString(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
