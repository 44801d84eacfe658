package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

var sheetHeaders = []string{
	"ID", "Name", "Slug", "Description", "Price", "Stock",
	"CategoryID", "ManufacturerID", "MainImage",
}

type ImportResult struct {
	Created int      `json:"created_count"`
	Updated int      `json:"updated_count"`
	Skipped int      `json:"skipped_count"`
	Errors  []string `json:"errors,omitempty"`
}

// ExportProducts writes every product to a single "Products" sheet.
func (s *Store) ExportProducts(ctx context.Context) (*xlsx.File, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, apperr.Upstream(err, "load products")
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, errors.Wrap(err, "add sheet")
	}
	header := sheet.AddRow()
	for _, h := range sheetHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Slug)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.CategoryID)
		if p.ManufacturerID != nil {
			row.AddCell().SetValue(*p.ManufacturerID)
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetValue(p.MainImage)
	}
	return file, nil
}

// ImportProducts reads the first sheet of file. Rows whose ID matches an existing
// product update it, other rows create one. Rows that fail validation are skipped.
func (s *Store) ImportProducts(ctx context.Context, file *xlsx.File) (*ImportResult, error) {
	if len(file.Sheets) == 0 || file.Sheets[0].MaxRow < 2 {
		return nil, errors.New("spreadsheet is empty or missing header row")
	}
	sheet := file.Sheets[0]
	result := &ImportResult{}

	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		if row == nil {
			continue
		}
		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}
		if get(1) == "" && get(2) == "" {
			continue
		}

		product, err := parseProductRow(get)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		if idStr := get(0); idStr != "" {
			id, err := strconv.ParseUint(idStr, 10, 64)
			if err == nil {
				if _, err := s.FindProduct(ctx, uint(id)); err == nil {
					if err := s.UpdateProduct(ctx, uint(id), product); err != nil {
						result.Skipped++
						result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
						continue
					}
					result.Updated++
					continue
				}
			}
		}

		if err := s.CreateProduct(ctx, product); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

func parseProductRow(get func(int) string) (*models.Product, error) {
	price, err := decimal.NewFromString(get(4))
	if err != nil {
		return nil, errors.Errorf("invalid price %q", get(4))
	}
	stock, err := strconv.Atoi(get(5))
	if err != nil {
		return nil, errors.Errorf("invalid stock %q", get(5))
	}
	categoryID, err := strconv.ParseUint(get(6), 10, 64)
	if err != nil {
		return nil, errors.Errorf("invalid category id %q", get(6))
	}
	product := &models.Product{
		Name:        get(1),
		Slug:        get(2),
		Description: get(3),
		Price:       price,
		Stock:       stock,
		CategoryID:  uint(categoryID),
		MainImage:   get(8),
	}
	if raw := get(7); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, errors.Errorf("invalid manufacturer id %q", raw)
		}
		manufacturerID := uint(id)
		product.ManufacturerID = &manufacturerID
	}
	return product, nil
}
