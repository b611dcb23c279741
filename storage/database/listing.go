package database

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// Filter key suffixes mapping to range comparisons.
const (
	suffixFrom = "_from"
	suffixTo   = "_to"
	suffixMin  = "_min"
	suffixMax  = "_max"
)

var (
	groupByRegex    = regexp.MustCompile(`(?i)\bGROUP\s+BY\b`)
	selectFromRegex = regexp.MustCompile(`(?is)^\s*SELECT\s.+?\sFROM\s`)
)

// ListSQL is a built, fully parameterized list query and its matching count query.
// Args is CountArgs plus the trailing limit/offset pair.
type ListSQL struct {
	Query     string
	Args      []interface{}
	CountSQL  string
	CountArgs []interface{}
	Page      int
	Limit     int
}

// BuildList assembles a filtered, sorted, paginated query from a base query,
// its fixed leading parameters and the request's filter map.
//
// The base query must contain a WHERE clause (the fixed parameters typically
// scope it by school); dynamic conditions are ANDed onto the portion before
// any GROUP BY clause, and the GROUP BY portion is re-appended unchanged.
// Every dynamic value binds to a new positional parameter; nothing from the
// request is ever interpolated into the SQL text.
//
// Filter keys are only accepted as column references when their stripped form
// is in cfg.FilterFields; anything else is a validation error.
func BuildList(base string, fixedArgs []interface{}, params core.ListParams, cfg core.ListConfig) (ListSQL, error) {
	head, groupBy := splitGroupBy(base)

	args := make([]interface{}, len(fixedArgs), len(fixedArgs)+len(params.Filters)+3)
	copy(args, fixedArgs)

	var conds strings.Builder

	// deterministic condition order
	keys := make([]string, 0, len(params.Filters))
	for key := range params.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := params.Filters[key]
		col, op, arg, err := filterCondition(key, val)
		if err != nil {
			return ListSQL{}, err
		}
		if !fieldAllowed(col, cfg.FilterFields) {
			return ListSQL{}, core.NewValidationError(
				errors.Errorf("unknown filter: %s", key),
				core.FieldError{Field: key, Error: "filtering on this field is not allowed"},
			)
		}
		args = append(args, arg)
		fmt.Fprintf(&conds, " AND %s %s $%d", col, op, len(args))
	}

	if params.Search != "" && len(cfg.SearchFields) > 0 {
		// one shared wildcarded parameter across all search fields
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		parts := make([]string, 0, len(cfg.SearchFields))
		for _, field := range cfg.SearchFields {
			parts = append(parts, fmt.Sprintf("%s ILIKE $%d", field, n))
		}
		fmt.Fprintf(&conds, " AND (%s)", strings.Join(parts, " OR "))
	}

	filtered := head + conds.String() + groupBy

	// COUNT(DISTINCT ...) already collapses join duplicates, so the count
	// query is built without the GROUP BY portion.
	countSQL, err := countQuery(head+conds.String(), cfg.CountField)
	if err != nil {
		return ListSQL{}, err
	}
	countArgs := args[:len(args):len(args)]

	query := filtered + " ORDER BY " + ordering(params, cfg).String()
	args = append(args, params.Limit, params.Offset())
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return ListSQL{
		Query:     query,
		Args:      args,
		CountSQL:  countSQL,
		CountArgs: countArgs,
		Page:      params.Page,
		Limit:     params.Limit,
	}, nil
}

// splitGroupBy splits a query at its GROUP BY keyword (case-insensitive);
// the suffix (including the keyword) is re-appended after dynamic filters.
func splitGroupBy(query string) (head, groupBy string) {
	if loc := groupByRegex.FindStringIndex(query); loc != nil {
		return strings.TrimRight(query[:loc[0]], " \n\t"), " " + query[loc[0]:]
	}
	return query, ""
}

// filterCondition maps a filter key/value to a column, comparison operator and
// bind value, per the range-suffix conventions.
func filterCondition(key, val string) (col, op string, arg interface{}, err error) {
	switch {
	case strings.HasSuffix(key, suffixFrom):
		return strings.TrimSuffix(key, suffixFrom), ">=", val, nil
	case strings.HasSuffix(key, suffixTo):
		return strings.TrimSuffix(key, suffixTo), "<=", val, nil
	case strings.HasSuffix(key, suffixMin):
		col = strings.TrimSuffix(key, suffixMin)
		arg, err = numericArg(key, val)
		return col, ">=", arg, err
	case strings.HasSuffix(key, suffixMax):
		col = strings.TrimSuffix(key, suffixMax)
		arg, err = numericArg(key, val)
		return col, "<=", arg, err
	case key == "is_active":
		return key, "=", truthy(val), nil
	default:
		return key, "=", val, nil
	}
}

// numericArg parses a range bound eagerly so a bad value is a request error
// rather than a database one, and so the parameter binds as a numeric type.
func numericArg(key, val string) (interface{}, error) {
	if n, err := strconv.ParseInt(val, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f, nil
	}
	return nil, core.NewValidationError(
		errors.Errorf("invalid numeric filter value: %s=%s", key, val),
		core.FieldError{Field: key, Error: "must be a number"},
	)
}

// truthy coerces a query-string value to a boolean.
func truthy(val string) bool {
	switch strings.ToLower(val) {
	case "true", "1":
		return true
	}
	return false
}

func fieldAllowed(col string, allowed []string) bool {
	for _, f := range allowed {
		if f == col {
			return true
		}
	}
	return false
}

// countQuery rewrites the SELECT list of the filtered query (pre-pagination)
// to a COUNT(DISTINCT countField). A base query that does not match the
// SELECT ... FROM shape is a configuration error and fails loudly.
func countQuery(filtered, countField string) (string, error) {
	if countField == "" {
		countField = "id"
	}
	loc := selectFromRegex.FindStringIndex(filtered)
	if loc == nil {
		return "", errors.Errorf("list query does not match SELECT ... FROM: %q", filtered)
	}
	return fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", countField, filtered[loc[1]:]), nil
}

// ordering resolves the ORDER BY clause: the requested sort field when it is
// in the allow-list, the configured default otherwise. Every list is ordered.
func ordering(params core.ListParams, cfg core.ListConfig) core.DBOrdering {
	if params.SortBy != "" && fieldAllowed(params.SortBy, cfg.SortFields) {
		return core.DBOrdering{Field: params.SortBy, Ascending: params.SortOrder != "desc"}
	}
	return cfg.DefaultSort
}

// queryList builds and runs a list query and its count query. The two are
// independent and run concurrently on separate pooled connections.
func queryList[T any](
	ctx context.Context,
	db *sqlx.DB,
	base string,
	fixedArgs []interface{},
	params core.ListParams,
	cfg core.ListConfig,
) ([]T, core.Pagination, error) {
	q, err := BuildList(base, fixedArgs, params, cfg)
	if err != nil {
		return nil, core.Pagination{}, err
	}

	type countResult struct {
		total int
		err   error
	}
	countCh := make(chan countResult, 1)
	go func() {
		var total int
		err := db.GetContext(ctx, &total, q.CountSQL, q.CountArgs...)
		countCh <- countResult{total, err}
	}()

	items := make([]T, 0, q.Limit)
	selectErr := db.SelectContext(ctx, &items, q.Query, q.Args...)
	count := <-countCh

	if selectErr != nil {
		return nil, core.Pagination{}, errors.Wrap(selectErr, "querying list")
	}
	if count.err != nil {
		return nil, core.Pagination{}, errors.Wrap(count.err, "counting list")
	}
	return items, core.NewPagination(count.total, q.Page, q.Limit), nil
}
