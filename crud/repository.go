package crud

import (
	"context"
	"strconv"
	"strings"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListParams struct {
	Search   string
	Filters  map[string]string
	Page     int
	PageSize int
}

type Page[T any] struct {
	Count    int64
	Page     int
	PageSize int
	Results  []T
}

func (p *Page[T]) HasNext() bool {
	return int64(p.Page*p.PageSize) < p.Count
}

func (p *Page[T]) HasPrevious() bool {
	return p.Page > 1
}

// Repository implements validate, persist, list and delete for one entity type.
type Repository[T any] struct {
	db     *gorm.DB
	schema Schema[T]
}

func NewRepository[T any](db *gorm.DB, schema Schema[T]) *Repository[T] {
	return &Repository[T]{db: db, schema: schema}
}

func (r *Repository[T]) Schema() Schema[T] {
	return r.schema
}

// WithTx returns a copy bound to tx.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx, schema: r.schema}
}

func (r *Repository[T]) preloaded(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, p := range r.schema.Preload {
		q = q.Preload(p)
	}
	return q
}

func (r *Repository[T]) Get(ctx context.Context, id uint) (*T, error) {
	return r.FindBy(ctx, "id", id)
}

// FindBy loads the single record whose column equals value.
func (r *Repository[T]) FindBy(ctx context.Context, column string, value interface{}) (*T, error) {
	item := new(T)
	err := r.preloaded(ctx).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).First(item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "%s with %s %v", r.schema.Name, column, value)
	}
	if err != nil {
		return nil, apperr.Upstream(err, "load "+r.schema.Name)
	}
	return item, nil
}

func (r *Repository[T]) List(ctx context.Context, params ListParams) (*Page[T], error) {
	q := r.db.WithContext(ctx).Model(new(T))

	if search := strings.TrimSpace(params.Search); search != "" && len(r.schema.SearchFields) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		conds := make([]string, 0, len(r.schema.SearchFields))
		args := make([]interface{}, 0, len(r.schema.SearchFields))
		for _, field := range r.schema.SearchFields {
			conds = append(conds, "LOWER("+field+") LIKE ?")
			args = append(args, pattern)
		}
		q = q.Where(strings.Join(conds, " OR "), args...)
	}

	invalid := apperr.NewValidationError()
	for _, f := range r.schema.Filters {
		raw, ok := params.Filters[f.Param]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		switch f.Kind {
		case FilterID:
			id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				invalid.Add(f.Param, "must be a numeric id")
				continue
			}
			q = q.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: uint(id)})
		case FilterIDSet:
			ids, err := ParseIDs(raw)
			if err != nil {
				invalid.Add(f.Param, "must be a comma separated list of ids")
				continue
			}
			q = q.Where(clause.IN{Column: clause.Column{Name: f.Column}, Values: toValues(ids)})
		default:
			q = q.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: raw})
		}
	}
	if err := invalid.Err(); err != nil {
		return nil, err
	}
	q = q.Session(&gorm.Session{})

	page := &Page[T]{Page: params.Page, PageSize: params.PageSize}
	if page.Page < 1 {
		page.Page = 1
	}
	if err := q.Count(&page.Count).Error; err != nil {
		return nil, apperr.Upstream(err, "count "+r.schema.Name)
	}

	find := q.Order("id")
	for _, p := range r.schema.Preload {
		find = find.Preload(p)
	}
	if page.PageSize > 0 {
		offset := (page.Page - 1) * page.PageSize
		if page.Page > 1 && int64(offset) >= page.Count {
			return nil, errors.Wrapf(apperr.ErrNotFound, "page %d of %s", page.Page, r.schema.Name)
		}
		find = find.Offset(offset).Limit(page.PageSize)
	}

	results := make([]T, 0)
	if err := find.Find(&results).Error; err != nil {
		return nil, apperr.Upstream(err, "list "+r.schema.Name)
	}
	page.Results = results
	return page, nil
}

func (r *Repository[T]) Create(ctx context.Context, item *T) error {
	resetServerFields(item)
	if err := r.validate(ctx, item, 0); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return apperr.Upstream(err, "create "+r.schema.Name)
	}
	return nil
}

// Update replaces every writable column of record id with item.
func (r *Repository[T]) Update(ctx context.Context, id uint, item *T) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if err := r.validate(ctx, item, id); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", clause.Associations).
		Updates(item).Error
	if err != nil {
		return apperr.Upstream(err, "update "+r.schema.Name)
	}
	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return apperr.Upstream(res.Error, "delete "+r.schema.Name)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(apperr.ErrNotFound, "%s with id %d", r.schema.Name, id)
	}
	return nil
}

func (r *Repository[T]) validate(ctx context.Context, item *T, id uint) error {
	check := NewChecker(r.db.WithContext(ctx))
	check.Struct(item)
	if r.schema.Validate != nil {
		r.schema.Validate(ctx, check, item, id)
	}
	return check.Err()
}

// ParseIDs splits "1,2,3" into ids.
func ParseIDs(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse id %q", part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func toValues(ids []uint) []interface{} {
	values := make([]interface{}, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return values
}
