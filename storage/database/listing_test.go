package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

func TestBuildList(t *testing.T) {
	cfg := core.ListConfig{
		FilterFields: []string{"is_active", "created_at", "capacity"},
		SearchFields: []string{"first_name", "last_name"},
		SortFields:   []string{"first_name"},
		DefaultSort:  core.DBOrdering{Field: "last_name", Ascending: true},
	}
	base := `SELECT * FROM students WHERE school_id = $1`
	schoolID := "11111111-1111-1111-1111-111111111111"

	t.Run("filters, search and pagination", func(t *testing.T) {
		params := core.ListParams{
			Page:      2,
			Limit:     10,
			Search:    "ja",
			SortBy:    "first_name",
			SortOrder: "desc",
			Filters: map[string]string{
				"is_active":       "true",
				"created_at_from": "2024-01-01",
			},
		}

		q, err := BuildList(base, []interface{}{schoolID}, params, cfg)
		require.NoError(t, err)

		assert.Equal(t,
			`SELECT * FROM students WHERE school_id = $1 AND created_at >= $2 AND is_active = $3`+
				` AND (first_name ILIKE $4 OR last_name ILIKE $4)`+
				` ORDER BY first_name DESC LIMIT $5 OFFSET $6`,
			q.Query,
		)
		assert.Equal(t, []interface{}{schoolID, "2024-01-01", true, "%ja%", 10, 10}, q.Args)

		assert.Equal(t,
			`SELECT COUNT(DISTINCT id) FROM students WHERE school_id = $1 AND created_at >= $2 AND is_active = $3`+
				` AND (first_name ILIKE $4 OR last_name ILIKE $4)`,
			q.CountSQL,
		)
		// count reuses the data args minus the trailing limit/offset pair
		assert.Equal(t, q.Args[:len(q.Args)-2], q.CountArgs)
	})

	t.Run("numeric range suffixes", func(t *testing.T) {
		params := core.ListParams{
			Page:  1,
			Limit: 20,
			Filters: map[string]string{
				"capacity_min": "10",
				"capacity_max": "30",
			},
		}

		q, err := BuildList(base, []interface{}{schoolID}, params, cfg)
		require.NoError(t, err)

		// keys bind in lexicographic order
		assert.Equal(t,
			`SELECT * FROM students WHERE school_id = $1 AND capacity <= $2 AND capacity >= $3`+
				` ORDER BY last_name ASC LIMIT $4 OFFSET $5`,
			q.Query,
		)
		// bounds are parsed so they bind as numbers, not text
		assert.Equal(t, []interface{}{schoolID, int64(30), int64(10), 20, 0}, q.Args)
	})

	t.Run("fractional numeric bound", func(t *testing.T) {
		params := core.ListParams{
			Page:    1,
			Limit:   20,
			Filters: map[string]string{"capacity_min": "10.5"},
		}

		q, err := BuildList(base, []interface{}{schoolID}, params, cfg)
		require.NoError(t, err)
		assert.Equal(t, []interface{}{schoolID, 10.5, 20, 0}, q.Args)
	})

	t.Run("non-numeric range bound is rejected", func(t *testing.T) {
		params := core.ListParams{
			Page:    1,
			Limit:   20,
			Filters: map[string]string{"capacity_min": "lots"},
		}

		_, err := BuildList(base, []interface{}{schoolID}, params, cfg)
		require.Error(t, err)

		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		require.Len(t, vErr.Fields, 1)
		assert.Equal(t, "capacity_min", vErr.Fields[0].Field)
	})

	t.Run("group by kept in data query, dropped from count", func(t *testing.T) {
		grouped := `SELECT u.id, ARRAY_AGG(r.role) AS roles FROM users u ` +
			`LEFT JOIN user_roles r ON r.user_id = u.id WHERE u.school_id = $1 GROUP BY u.id`
		groupedCfg := core.ListConfig{
			FilterFields: []string{"is_active"},
			DefaultSort:  core.DBOrdering{Field: "u.created_at", Ascending: true},
			CountField:   "u.id",
		}
		params := core.ListParams{
			Page:    1,
			Limit:   20,
			Filters: map[string]string{"is_active": "1"},
		}

		q, err := BuildList(grouped, nil, params, groupedCfg)
		require.NoError(t, err)

		assert.Equal(t,
			`SELECT u.id, ARRAY_AGG(r.role) AS roles FROM users u `+
				`LEFT JOIN user_roles r ON r.user_id = u.id WHERE u.school_id = $1 AND is_active = $2`+
				` GROUP BY u.id ORDER BY u.created_at ASC LIMIT $3 OFFSET $4`,
			q.Query,
		)
		assert.Equal(t,
			`SELECT COUNT(DISTINCT u.id) FROM users u `+
				`LEFT JOIN user_roles r ON r.user_id = u.id WHERE u.school_id = $1 AND is_active = $2`,
			q.CountSQL,
		)
	})

	t.Run("unknown filter key is rejected", func(t *testing.T) {
		params := core.ListParams{
			Page:    1,
			Limit:   20,
			Filters: map[string]string{"password_hash": "x"},
		}

		_, err := BuildList(base, []interface{}{schoolID}, params, cfg)
		require.Error(t, err)

		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		require.Len(t, vErr.Fields, 1)
		assert.Equal(t, "password_hash", vErr.Fields[0].Field)
	})

	t.Run("unlisted sort field falls back to default ordering", func(t *testing.T) {
		params := core.ListParams{Page: 1, Limit: 20, SortBy: "password_hash"}

		q, err := BuildList(base, []interface{}{schoolID}, params, cfg)
		require.NoError(t, err)
		assert.Contains(t, q.Query, "ORDER BY last_name ASC")
	})

	t.Run("non-select base fails loudly", func(t *testing.T) {
		_, err := BuildList(`UPDATE students SET is_active = false WHERE school_id = $1`,
			[]interface{}{schoolID}, core.ListParams{Page: 1, Limit: 20}, cfg)
		require.Error(t, err)
	})
}

func TestQueryList(t *testing.T) {
	type row struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}
	base := `SELECT id, name FROM leadership_roles WHERE school_id = $1`
	cfg := core.ListConfig{
		DefaultSort: core.DBOrdering{Field: "name", Ascending: true},
	}
	schoolID := "11111111-1111-1111-1111-111111111111"
	params := core.ListParams{Page: 1, Limit: 2}

	newMock := func(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
		t.Helper()
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		// data and count queries run concurrently; order must not matter
		mock.MatchExpectationsInOrder(false)
		t.Cleanup(func() { _ = mockDB.Close() })
		return sqlx.NewDb(mockDB, "postgres"), mock
	}

	t.Run("returns rows and pagination", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM leadership_roles WHERE school_id = $1 ORDER BY name ASC LIMIT $2 OFFSET $3`)).
			WithArgs(schoolID, 2, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
				AddRow("a", "Head Boy").
				AddRow("b", "Head Girl"))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(DISTINCT id) FROM leadership_roles WHERE school_id = $1`)).
			WithArgs(schoolID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		rows, pagination, err := queryList[row](context.Background(), db, base, []interface{}{schoolID}, params, cfg)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())

		assert.Len(t, rows, 2)
		assert.Equal(t, core.Pagination{Total: 5, Page: 1, Limit: 2, TotalPages: 3, HasNext: true}, pagination)
	})

	t.Run("count failure surfaces", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM leadership_roles WHERE school_id = $1 ORDER BY name ASC LIMIT $2 OFFSET $3`)).
			WithArgs(schoolID, 2, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(DISTINCT id) FROM leadership_roles WHERE school_id = $1`)).
			WithArgs(schoolID).
			WillReturnError(errors.New("boom"))

		_, _, err := queryList[row](context.Background(), db, base, []interface{}{schoolID}, params, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "counting list")
	})
}
