package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrInvalidIdentifier marks an identifier of the wrong shape (mapped to a
	// 400, never a 500).
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrUnknownSortField is returned when a sort key is not in the resource's
	// allowed list. Unknown fields are rejected at the boundary instead of
	// being passed into the storage layer.
	ErrUnknownSortField = errors.New("unknown sort field")
)

// ParseID converts a path or query identifier into a numeric ID.
func ParseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	return id, nil
}

// ListOptions holds pagination, sort and search parameters for FindAll.
type ListOptions struct {
	Page   int
	Limit  int
	Sort   string
	Order  string // "asc" or "desc"
	Search string
}

// Pagination is the metadata attached to every list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ListResult pairs a page of records with pagination metadata.
type ListResult[T any] struct {
	Data       []T
	Pagination Pagination
}

// Filter is an explicit condition builder. Typed repositories construct it
// from their own input structs, so arbitrary field maps never reach the
// storage layer.
type Filter struct {
	conds []cond
}

type cond struct {
	query string
	args  []interface{}
}

func NewFilter() *Filter {
	return &Filter{}
}

// Eq adds an equality condition on a column.
func (f *Filter) Eq(column string, value interface{}) *Filter {
	f.conds = append(f.conds, cond{query: column + " = ?", args: []interface{}{value}})
	return f
}

// In adds a set-membership condition on a column.
func (f *Filter) In(column string, values interface{}) *Filter {
	f.conds = append(f.conds, cond{query: column + " IN (?)", args: []interface{}{values}})
	return f
}

// Where adds a raw condition for cases the helpers cannot express.
func (f *Filter) Where(query string, args ...interface{}) *Filter {
	f.conds = append(f.conds, cond{query: query, args: args})
	return f
}

func (f *Filter) apply(q *gorm.DB) *gorm.DB {
	if f == nil {
		return q
	}
	for _, c := range f.conds {
		q = q.Where(c.query, c.args...)
	}
	return q
}

// Collection describes the per-resource policy for the generic repository:
// which fields are searchable, which sort keys are allowed, and which
// relations are expanded on reads.
type Collection struct {
	SearchFields []string
	SortFields   map[string]string // exposed name -> column
	DefaultSort  string            // column used when no sort is requested
	Preloads     []string
}

// Repository provides uniform CRUD, pagination, search and sort for a model
// type. Resource repositories compose it rather than inheriting from it.
type Repository[T any] struct {
	db  *gorm.DB
	col Collection
}

func NewRepository[T any](db *gorm.DB, col Collection) *Repository[T] {
	if col.DefaultSort == "" {
		col.DefaultSort = "created_at"
	}
	return &Repository[T]{db: db, col: col}
}

// scoped returns a fresh filtered query; count and fetch each get their own
// so pagination metadata always matches the filter.
func (r *Repository[T]) scoped(filter *Filter, search string) *gorm.DB {
	var model T
	q := filter.apply(r.db.Model(&model))
	if search != "" && len(r.col.SearchFields) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		var parts []string
		var args []interface{}
		for _, field := range r.col.SearchFields {
			parts = append(parts, "LOWER("+field+") LIKE ?")
			args = append(args, pattern)
		}
		q = q.Where(strings.Join(parts, " OR "), args...)
	}
	return q
}

func (r *Repository[T]) orderClause(opts ListOptions) (string, error) {
	column := r.col.DefaultSort
	if opts.Sort != "" {
		mapped, ok := r.col.SortFields[opts.Sort]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownSortField, opts.Sort)
		}
		column = mapped
	}
	direction := "DESC"
	if opts.Order == "asc" {
		direction = "ASC"
	}
	return column + " " + direction, nil
}

// FindAll returns one page of records plus pagination metadata. The total is
// computed with a separate count query over the same filter, so the metadata
// stays consistent for any requested page, including out-of-range ones (which
// yield an empty data slice, not an error).
func (r *Repository[T]) FindAll(filter *Filter, opts ListOptions) (*ListResult[T], error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	order, err := r.orderClause(opts)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.scoped(filter, opts.Search).Count(&total).Error; err != nil {
		return nil, err
	}

	q := r.scoped(filter, opts.Search).
		Order(order).
		Offset((page - 1) * limit).
		Limit(limit)
	for _, p := range r.col.Preloads {
		q = q.Preload(p)
	}

	data := make([]T, 0, limit)
	if err := q.Find(&data).Error; err != nil {
		return nil, err
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	return &ListResult[T]{
		Data: data,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// FindByID finds a record by primary key with optional extra preloads.
func (r *Repository[T]) FindByID(id uint64, preload ...string) (*T, error) {
	var entity T
	q := r.db
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.First(&entity, id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindOne finds the first record matching the filter.
func (r *Repository[T]) FindOne(filter *Filter, preload ...string) (*T, error) {
	var entity T
	q := filter.apply(r.db)
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// Create persists a new record.
func (r *Repository[T]) Create(entity *T) error {
	return r.db.Create(entity).Error
}

// Update saves the full record; model hooks re-validate field constraints on
// every update, not just on create.
func (r *Repository[T]) Update(entity *T) error {
	return r.db.Save(entity).Error
}

// DeleteByID soft-deletes a record by primary key.
func (r *Repository[T]) DeleteByID(id uint64) error {
	var entity T
	result := r.db.Delete(&entity, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the number of records matching the filter.
func (r *Repository[T]) Count(filter *Filter) (int64, error) {
	var total int64
	err := r.scoped(filter, "").Count(&total).Error
	return total, err
}

// Exists reports whether any record matches the filter.
func (r *Repository[T]) Exists(filter *Filter) (bool, error) {
	total, err := r.Count(filter)
	return total > 0, err
}
