package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"blogicum/internal/models"
	"blogicum/internal/pagination"

	"gorm.io/gorm"
)

// ListQuery holds the changelist request parameters.
type ListQuery struct {
	Search  string
	Filters map[string]string
	Page    string
	PerPage int
}

// Changelist is one page of an admin listing.
type Changelist struct {
	Model      string            `json:"model"`
	Columns    []string          `json:"columns"`
	Rows       []map[string]any  `json:"rows"`
	Search     string            `json:"q"`
	Filters    map[string]string `json:"filters"`
	ListFilter []string          `json:"list_filter"`
	Page       pagination.Page   `json:"page_obj"`
}

// List runs the configured listing of model against db.
func (s *Site) List(ctx context.Context, db *gorm.DB, model string, q ListQuery) (*Changelist, error) {
	m, ok := s.Model(model)
	if !ok {
		return nil, models.NewNotFoundError("Admin model", model)
	}
	if q.PerPage <= 0 {
		q.PerPage = 100
	}

	b := &listBuilder{site: s, model: m, joined: map[string]bool{}}
	filters, err := b.filters(q.Filters)
	if err != nil {
		return nil, err
	}

	scope := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Table(m.Table)
		for _, rel := range b.joins(q.Search) {
			tx = tx.Joins(rel)
		}
		for _, cond := range b.searchConds(q.Search) {
			tx = tx.Where(cond.sql, cond.args...)
		}
		for _, cond := range filters {
			tx = tx.Where(cond.sql, cond.args...)
		}
		return tx
	}

	var total int64
	if err := scope(db.WithContext(ctx)).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	page := pagination.NewPage(q.Page, total, q.PerPage)
	rows := make([]map[string]any, 0, page.Limit())
	if total > 0 {
		err := scope(db.WithContext(ctx)).
			Select(b.selects()).
			Order(b.order()).
			Offset(page.Offset()).
			Limit(page.Limit()).
			Find(&rows).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	for _, row := range rows {
		s.present(m, row)
	}

	applied := make(map[string]string, len(filters))
	for _, cond := range filters {
		applied[cond.field] = cond.raw
	}
	return &Changelist{
		Model:      m.Name,
		Columns:    m.ListDisplay,
		Rows:       rows,
		Search:     strings.TrimSpace(q.Search),
		Filters:    applied,
		ListFilter: m.ListFilter,
		Page:       page,
	}, nil
}

// present replaces empty values and normalizes boolean columns, which
// SQLite returns as integers.
func (s *Site) present(m *ModelAdmin, row map[string]any) {
	for _, col := range m.ListDisplay {
		v := row[col]
		if m.isBoolean(col) {
			row[col] = truthy(v)
			continue
		}
		if v == nil || v == "" {
			row[col] = s.EmptyValueDisplay
		}
	}
}

type condition struct {
	field string
	raw   string
	sql   string
	args  []any
}

type listBuilder struct {
	site   *Site
	model  *ModelAdmin
	joined map[string]bool
}

// joins returns the LEFT JOINs needed by displayed relations and, when a
// search is active, by relational search fields.
func (b *listBuilder) joins(search string) []string {
	var names []string
	for _, col := range b.model.ListDisplay {
		if _, ok := b.site.Relations[col]; ok {
			names = append(names, col)
		}
	}
	if strings.TrimSpace(search) != "" {
		for _, f := range b.model.SearchFields {
			if rel, _, ok := strings.Cut(f, "__"); ok {
				names = append(names, rel)
			}
		}
	}

	var out []string
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		b.joined[name] = true
		rel := b.site.Relations[name]
		out = append(out, fmt.Sprintf("LEFT JOIN %s AS rel_%s ON rel_%s.id = %s.%s",
			rel.Table, name, name, b.model.Table, rel.ForeignKey))
	}
	return out
}

func (b *listBuilder) selects() []string {
	out := []string{b.model.Table + ".id AS id"}
	for _, col := range b.model.ListDisplay {
		if rel, ok := b.site.Relations[col]; ok {
			out = append(out, fmt.Sprintf("rel_%s.%s AS %s", col, rel.Column, col))
			continue
		}
		out = append(out, fmt.Sprintf("%s.%s AS %s", b.model.Table, col, col))
	}
	return out
}

func (b *listBuilder) order() string {
	parts := make([]string, 0, len(b.model.Ordering))
	for _, o := range b.model.Ordering {
		dir := "ASC"
		if strings.HasPrefix(o, "-") {
			dir = "DESC"
			o = o[1:]
		}
		parts = append(parts, fmt.Sprintf("%s.%s %s", b.model.Table, o, dir))
	}
	return strings.Join(parts, ", ")
}

// searchConds matches every whitespace separated term against any of the
// search fields, case-insensitively.
func (b *listBuilder) searchConds(search string) []condition {
	terms := strings.Fields(search)
	if len(terms) == 0 || len(b.model.SearchFields) == 0 {
		return nil
	}

	columns := make([]string, 0, len(b.model.SearchFields))
	for _, f := range b.model.SearchFields {
		if rel, col, ok := strings.Cut(f, "__"); ok {
			columns = append(columns, fmt.Sprintf("rel_%s.%s", rel, col))
			continue
		}
		columns = append(columns, b.model.Table+"."+f)
	}

	out := make([]condition, 0, len(terms))
	for _, term := range terms {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		ors := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			ors = append(ors, fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", col))
			args = append(args, pattern)
		}
		out = append(out, condition{sql: "(" + strings.Join(ors, " OR ") + ")", args: args})
	}
	return out
}

// filters keeps only list_filter fields. Relation filters take a key or
// "none"; boolean filters take true/false/1/0.
func (b *listBuilder) filters(raw map[string]string) ([]condition, error) {
	var out []condition
	for _, field := range b.model.ListFilter {
		value, ok := raw[field]
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			continue
		}

		if rel, isRel := b.site.Relations[field]; isRel {
			col := b.model.Table + "." + rel.ForeignKey
			if strings.EqualFold(value, "none") {
				out = append(out, condition{field: field, raw: value, sql: col + " IS NULL"})
				continue
			}
			id, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, models.NewValidationError(fmt.Sprintf("invalid %s filter %q", field, value))
			}
			out = append(out, condition{field: field, raw: value, sql: col + " = ?", args: []any{id}})
			continue
		}

		col := b.model.Table + "." + field
		if b.model.isBoolean(field) {
			v, err := strconv.ParseBool(value)
			if err != nil {
				return nil, models.NewValidationError(fmt.Sprintf("invalid %s filter %q", field, value))
			}
			out = append(out, condition{field: field, raw: value, sql: col + " = ?", args: []any{v}})
			continue
		}
		out = append(out, condition{field: field, raw: value, sql: col + " = ?", args: []any{value}})
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case []byte:
		b, _ := strconv.ParseBool(string(t))
		return b
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	default:
		return false
	}
}
