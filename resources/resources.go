package resources

import (
	"context"

	"github.com/junaidrashid-git/shop-api/crud"
	"github.com/junaidrashid-git/shop-api/models"
	"gorm.io/gorm"
)

var CustomerSchema = crud.Schema[models.Customer]{
	Name:         "customer",
	SearchFields: []string{"first_name", "last_name", "email", "phone"},
	Filters:      []crud.Filter{{Param: "account", Column: "account_id", Kind: crud.FilterID}},
	Validate: func(ctx context.Context, check *crud.Checker, c *models.Customer, id uint) {
		check.Unique("email", &models.Customer{}, "email", c.Email, id)
		if c.AccountID != nil {
			check.Exists("account_id", &models.Account{}, *c.AccountID)
			check.Unique("account_id", &models.Customer{}, "account_id", *c.AccountID, id)
		}
	},
}

var ReviewSchema = crud.Schema[models.Review]{
	Name:         "review",
	SearchFields: []string{"comment"},
	Filters: []crud.Filter{
		{Param: "product", Column: "product_id", Kind: crud.FilterID},
		{Param: "customer", Column: "customer_id", Kind: crud.FilterID},
	},
	Validate: func(ctx context.Context, check *crud.Checker, r *models.Review, id uint) {
		check.Exists("product_id", &models.Product{}, r.ProductID)
		check.Exists("customer_id", &models.Customer{}, r.CustomerID)
	},
}

// Orders are only written by checkout and the order service, so the schema has no validator.
var OrderSchema = crud.Schema[models.Order]{
	Name: "order",
	Filters: []crud.Filter{
		{Param: "customer", Column: "customer_id", Kind: crud.FilterID},
		{Param: "status", Column: "status"},
	},
	Preload: []string{"Items"},
}

var OrderItemSchema = crud.Schema[models.OrderItem]{
	Name: "order item",
	Filters: []crud.Filter{
		{Param: "order", Column: "order_id", Kind: crud.FilterID},
		{Param: "product", Column: "product_id", Kind: crud.FilterID},
	},
}

// Set holds the repositories of the non-catalog resources.
type Set struct {
	Customers  *crud.Repository[models.Customer]
	Reviews    *crud.Repository[models.Review]
	Orders     *crud.Repository[models.Order]
	OrderItems *crud.Repository[models.OrderItem]
}

func NewSet(db *gorm.DB) *Set {
	return &Set{
		Customers:  crud.NewRepository(db, CustomerSchema),
		Reviews:    crud.NewRepository(db, ReviewSchema),
		Orders:     crud.NewRepository(db, OrderSchema),
		OrderItems: crud.NewRepository(db, OrderItemSchema),
	}
}
