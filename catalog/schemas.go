package catalog

import (
	"context"

	"github.com/junaidrashid-git/shop-api/crud"
	"github.com/junaidrashid-git/shop-api/models"
)

var CategorySchema = crud.Schema[models.Category]{
	Name:         "category",
	SearchFields: []string{"name", "slug"},
	Validate: func(ctx context.Context, check *crud.Checker, c *models.Category, id uint) {
		check.Unique("slug", &models.Category{}, "slug", c.Slug, id)
	},
}

var ManufacturerSchema = crud.Schema[models.Manufacturer]{
	Name:         "manufacturer",
	SearchFields: []string{"name", "country"},
}

var ProductSchema = crud.Schema[models.Product]{
	Name:         "product",
	SearchFields: []string{"name", "description"},
	Filters: []crud.Filter{
		{Param: "category", Column: "category_id", Kind: crud.FilterID},
		{Param: "manufacturer", Column: "manufacturer_id", Kind: crud.FilterID},
		{Param: "ids", Column: "id", Kind: crud.FilterIDSet},
	},
	Validate: func(ctx context.Context, check *crud.Checker, p *models.Product, id uint) {
		check.Unique("slug", &models.Product{}, "slug", p.Slug, id)
		check.Exists("category_id", &models.Category{}, p.CategoryID)
		if p.ManufacturerID != nil {
			check.Exists("manufacturer_id", &models.Manufacturer{}, *p.ManufacturerID)
		}
	},
}
