// SPDX-License-Identifier: Apache-2.0

// Package query translates a flat, untyped HTTP query string into a
// structured, safe SQL SELECT over a single table.
//
// The translation is deliberately narrow: only columns the caller whitelists
// can be filtered, sorted, or projected; comparison operators are limited to
// a fixed suffix set; values travel exclusively as bound query parameters.
// This is a controlled translation of a URL-safe parameter space, not a
// query language.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Defaults applied when the request omits the corresponding parameter.
const (
	DefaultPage    = 1
	DefaultLimit   = 100
	defaultSortCol = "created_at"
)

// reservedKeys never participate in filtering; they steer the other steps.
var reservedKeys = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

// comparison suffix tokens accepted inside brackets: field[gte]=100.
var operators = map[string]struct{}{
	"gte": {},
	"gt":  {},
	"lte": {},
	"lt":  {},
}

// Features builds a SELECT for one table from raw request parameters using
// fluent, chainable steps, mirroring how list endpoints compose them:
//
//	f := query.NewFeatures("tours", cols, r.URL.Query()).
//		Filter().
//		Sort().
//		Project().
//		Paginate()
//	sqlStr, args, err := f.Builder().ToSql()
//
// Each step configures the underlying builder lazily; nothing touches the
// database until the caller executes the built query. Steps are independent,
// so endpoints that don't paginate (e.g. stats) simply skip that call.
type Features struct {
	builder sq.SelectBuilder
	params  url.Values

	// columns is the whitelist of selectable/filterable/sortable column
	// names in their canonical order. Internal bookkeeping columns are
	// simply never part of this list, which implements the
	// "default excludes internal fields" projection contract.
	columns []string
	allowed map[string]struct{}

	projected bool
	selected  []string
}

// NewFeatures constructs a Features for table with the given column
// whitelist. Requested fields, filter keys and sort keys outside the
// whitelist are ignored.
func NewFeatures(table string, columns []string, params url.Values) *Features {
	allowed := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		allowed[c] = struct{}{}
	}

	return &Features{
		builder: sq.StatementBuilder.
			PlaceholderFormat(sq.Dollar).
			Select().
			From(table),
		params:  params,
		columns: columns,
		allowed: allowed,
	}
}

// Filter applies equality and range predicates from every non-reserved
// parameter. A bracketed suffix selects the operator: price[gte]=100 becomes
// price >= $1; a bare key is an equality match. Keys naming columns outside
// the whitelist, and unknown operators, are dropped.
//
// Values are passed to the database as bound parameters; type coercion is
// the column's job, and a value the column cannot cast surfaces as a
// store-layer cast error (normalized to a 400 downstream).
func (f *Features) Filter() *Features {
	keys := make([]string, 0, len(f.params))
	for key := range f.params {
		if _, reserved := reservedKeys[key]; reserved {
			continue
		}
		keys = append(keys, key)
	}
	// deterministic predicate order regardless of map iteration
	sort.Strings(keys)

	for _, key := range keys {
		column, op := splitOperator(key)
		if _, ok := f.allowed[column]; !ok {
			continue
		}

		value := f.params.Get(key)
		switch op {
		case "gte":
			f.builder = f.builder.Where(sq.GtOrEq{column: value})
		case "gt":
			f.builder = f.builder.Where(sq.Gt{column: value})
		case "lte":
			f.builder = f.builder.Where(sq.LtOrEq{column: value})
		case "lt":
			f.builder = f.builder.Where(sq.Lt{column: value})
		default:
			f.builder = f.builder.Where(sq.Eq{column: value})
		}
	}

	return f
}

// splitOperator decomposes "price[gte]" into ("price", "gte"). A key without
// a recognized bracketed suffix comes back with an empty operator, meaning
// equality.
func splitOperator(key string) (column, op string) {
	open := strings.IndexByte(key, '[')
	if open < 1 || !strings.HasSuffix(key, "]") {
		return key, ""
	}

	candidate := key[open+1 : len(key)-1]
	if _, ok := operators[candidate]; !ok {
		// unknown operator: treat the whole key as a (likely non-whitelisted)
		// column name so it is dropped rather than misread
		return key, ""
	}

	return key[:open], candidate
}

// Sort orders the result by the comma-separated "sort" parameter; a leading
// '-' selects descending order. Unknown columns are skipped. When the
// parameter is absent (or nothing survives the whitelist) the default is
// newest-first by creation time.
func (f *Features) Sort() *Features {
	applied := false

	if raw := f.params.Get("sort"); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			field = strings.TrimSpace(field)
			direction := " ASC"
			if strings.HasPrefix(field, "-") {
				field = field[1:]
				direction = " DESC"
			}

			if _, ok := f.allowed[field]; !ok {
				continue
			}

			f.builder = f.builder.OrderBy(field + direction)
			applied = true
		}
	}

	if !applied {
		f.builder = f.builder.OrderBy(defaultSortCol + " DESC")
	}

	return f
}

// Project narrows the selected columns to the comma-separated inclusion list
// in the "fields" parameter. When absent, all whitelisted columns are
// selected — internal bookkeeping columns are excluded by never being
// whitelisted at all, so inclusion and exclusion cannot mix.
func (f *Features) Project() *Features {
	f.projected = true

	if raw := f.params.Get("fields"); raw != "" {
		selected := make([]string, 0, len(f.columns))
		for _, field := range strings.Split(raw, ",") {
			field = strings.TrimSpace(field)
			if _, ok := f.allowed[field]; ok {
				selected = append(selected, field)
			}
		}

		if len(selected) > 0 {
			f.selected = selected
			f.builder = f.builder.Columns(selected...)
			return f
		}
	}

	f.selected = f.columns
	f.builder = f.builder.Columns(f.columns...)
	return f
}

// SelectedColumns reports, in order, the columns the built statement will
// return. Callers use it to wire scan destinations for dynamic projections.
func (f *Features) SelectedColumns() []string {
	if len(f.selected) > 0 {
		return f.selected
	}
	return f.columns
}

// Paginate applies OFFSET/LIMIT from the "page" and "limit" parameters:
// skip = (page-1) * limit. Non-numeric or non-positive values fall back to
// the defaults. No upper bound is enforced here; capping limit is the
// caller's concern.
func (f *Features) Paginate() *Features {
	page := positiveIntParam(f.params, "page", DefaultPage)
	limit := positiveIntParam(f.params, "limit", DefaultLimit)
	skip := (page - 1) * limit

	f.builder = f.builder.Offset(uint64(skip)).Limit(uint64(limit))

	return f
}

func positiveIntParam(params url.Values, key string, fallback int) int {
	raw := params.Get(key)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}

	return n
}

// Builder returns the configured SELECT builder. If Project was never
// called, the whitelisted columns are selected so the statement is always
// complete.
func (f *Features) Builder() sq.SelectBuilder {
	if !f.projected {
		return f.builder.Columns(f.columns...)
	}
	return f.builder
}
