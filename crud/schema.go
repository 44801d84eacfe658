package crud

import "context"

// FilterKind says how a query value is parsed before it reaches SQL.
type FilterKind int

const (
	FilterText FilterKind = iota
	FilterID
	FilterIDSet // comma separated ids
)

type Filter struct {
	Param  string // query parameter
	Column string
	Kind   FilterKind
}

// Schema describes one resource: how it is searched, filtered, preloaded and validated.
type Schema[T any] struct {
	Name         string
	SearchFields []string
	Filters      []Filter
	Preload      []string

	// Validate adds the database-backed checks for item. The binding tags of T have
	// already been applied to check. id is 0 on create.
	Validate func(ctx context.Context, check *Checker, item *T, id uint)
}
