package query

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tourColumns = []string{"id", "name", "duration", "difficulty", "price", "ratings_average", "created_at"}

func buildSQL(t *testing.T, f *Features) (string, []any) {
	t.Helper()
	sqlStr, args, err := f.Builder().ToSql()
	require.NoError(t, err)
	return sqlStr, args
}

func TestFilter_ComparisonOperators(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		wantSQL  string
		wantArg  string
	}{
		{
			name:     "gte",
			rawQuery: "price[gte]=100",
			wantSQL:  "price >= $1",
			wantArg:  "100",
		},
		{
			name:     "gt",
			rawQuery: "price[gt]=100",
			wantSQL:  "price > $1",
			wantArg:  "100",
		},
		{
			name:     "lte",
			rawQuery: "duration[lte]=7",
			wantSQL:  "duration <= $1",
			wantArg:  "7",
		},
		{
			name:     "lt",
			rawQuery: "duration[lt]=7",
			wantSQL:  "duration < $1",
			wantArg:  "7",
		},
		{
			name:     "unqualified key is equality",
			rawQuery: "difficulty=easy",
			wantSQL:  "difficulty = $1",
			wantArg:  "easy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := url.ParseQuery(tt.rawQuery)
			require.NoError(t, err)

			f := NewFeatures("tours", tourColumns, params).Filter()
			sqlStr, args := buildSQL(t, f)

			assert.Contains(t, sqlStr, tt.wantSQL)
			require.Len(t, args, 1)
			assert.Equal(t, tt.wantArg, args[0])
		})
	}
}

func TestFilter_ReservedKeysAreDropped(t *testing.T) {
	params, err := url.ParseQuery("page=2&sort=price&limit=10&fields=name&difficulty=easy")
	require.NoError(t, err)

	f := NewFeatures("tours", tourColumns, params).Filter()
	sqlStr, args := buildSQL(t, f)

	assert.Contains(t, sqlStr, "difficulty = $1")
	assert.Len(t, args, 1)
	assert.NotContains(t, sqlStr, "page")
	assert.NotContains(t, sqlStr, "sort =")
}

func TestFilter_NonWhitelistedColumnIsIgnored(t *testing.T) {
	params, err := url.ParseQuery("password_hash=x&drop_table=1&price[gte]=50")
	require.NoError(t, err)

	f := NewFeatures("tours", tourColumns, params).Filter()
	sqlStr, args := buildSQL(t, f)

	assert.NotContains(t, sqlStr, "password_hash")
	assert.NotContains(t, sqlStr, "drop_table")
	require.Len(t, args, 1)
	assert.Equal(t, "50", args[0])
}

func TestFilter_UnknownOperatorIsIgnored(t *testing.T) {
	params, err := url.ParseQuery("price[regex]=100")
	require.NoError(t, err)

	f := NewFeatures("tours", tourColumns, params).Filter()
	sqlStr, _ := buildSQL(t, f)

	assert.NotContains(t, sqlStr, "WHERE")
}

func TestFilter_DeterministicPredicateOrder(t *testing.T) {
	params, err := url.ParseQuery("price[gte]=100&difficulty=easy&duration[lt]=10")
	require.NoError(t, err)

	first, _ := buildSQL(t, NewFeatures("tours", tourColumns, params).Filter())
	for range 20 {
		again, _ := buildSQL(t, NewFeatures("tours", tourColumns, params).Filter())
		require.Equal(t, first, again)
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name      string
		rawQuery  string
		wantOrder string
	}{
		{
			name:      "default is newest first",
			rawQuery:  "",
			wantOrder: "ORDER BY created_at DESC",
		},
		{
			name:      "ascending single field",
			rawQuery:  "sort=price",
			wantOrder: "ORDER BY price ASC",
		},
		{
			name:      "descending prefix",
			rawQuery:  "sort=-ratings_average",
			wantOrder: "ORDER BY ratings_average DESC",
		},
		{
			name:      "multiple fields keep request order",
			rawQuery:  "sort=-ratings_average,price",
			wantOrder: "ORDER BY ratings_average DESC, price ASC",
		},
		{
			name:      "unknown field falls back to default",
			rawQuery:  "sort=secret_col",
			wantOrder: "ORDER BY created_at DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := url.ParseQuery(tt.rawQuery)
			require.NoError(t, err)

			f := NewFeatures("tours", tourColumns, params).Sort()
			sqlStr, _ := buildSQL(t, f)

			assert.Contains(t, sqlStr, tt.wantOrder)
		})
	}
}

func TestProject(t *testing.T) {
	t.Run("default selects all whitelisted columns", func(t *testing.T) {
		f := NewFeatures("tours", tourColumns, url.Values{}).Project()
		sqlStr, _ := buildSQL(t, f)

		for _, col := range tourColumns {
			assert.Contains(t, sqlStr, col)
		}
	})

	t.Run("inclusion list narrows selection", func(t *testing.T) {
		params, err := url.ParseQuery("fields=name,price")
		require.NoError(t, err)

		f := NewFeatures("tours", tourColumns, params).Project()
		sqlStr, _ := buildSQL(t, f)

		assert.True(t, strings.HasPrefix(sqlStr, "SELECT name, price FROM tours"), sqlStr)
	})

	t.Run("non-whitelisted fields are dropped from inclusion", func(t *testing.T) {
		params, err := url.ParseQuery("fields=name,password_hash")
		require.NoError(t, err)

		f := NewFeatures("tours", tourColumns, params).Project()
		sqlStr, _ := buildSQL(t, f)

		assert.Contains(t, sqlStr, "name")
		assert.NotContains(t, sqlStr, "password_hash")
	})

	t.Run("fully unknown inclusion list falls back to default", func(t *testing.T) {
		params, err := url.ParseQuery("fields=nope")
		require.NoError(t, err)

		f := NewFeatures("tours", tourColumns, params).Project()
		sqlStr, _ := buildSQL(t, f)

		for _, col := range tourColumns {
			assert.Contains(t, sqlStr, col)
		}
	})
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		rawQuery   string
		wantOffset string
		wantLimit  string
	}{
		{
			name:       "defaults",
			rawQuery:   "",
			wantOffset: "OFFSET 0",
			wantLimit:  "LIMIT 100",
		},
		{
			name:       "page two limit ten skips ten",
			rawQuery:   "page=2&limit=10",
			wantOffset: "OFFSET 10",
			wantLimit:  "LIMIT 10",
		},
		{
			name:       "page five limit three",
			rawQuery:   "page=5&limit=3",
			wantOffset: "OFFSET 12",
			wantLimit:  "LIMIT 3",
		},
		{
			name:       "garbage falls back to defaults",
			rawQuery:   "page=minus&limit=-5",
			wantOffset: "OFFSET 0",
			wantLimit:  "LIMIT 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := url.ParseQuery(tt.rawQuery)
			require.NoError(t, err)

			f := NewFeatures("tours", tourColumns, params).Paginate()
			sqlStr, _ := buildSQL(t, f)

			assert.Contains(t, sqlStr, tt.wantOffset)
			assert.Contains(t, sqlStr, tt.wantLimit)
		})
	}
}

// TestPaginate_Idempotent verifies translating the same parameters twice
// yields the same skip/limit pair.
func TestPaginate_Idempotent(t *testing.T) {
	params, err := url.ParseQuery("page=2&limit=10")
	require.NoError(t, err)

	first, _ := buildSQL(t, NewFeatures("tours", tourColumns, params).Paginate())
	second, _ := buildSQL(t, NewFeatures("tours", tourColumns, params).Paginate())

	assert.Equal(t, first, second)
}

func TestChaining_AllSteps(t *testing.T) {
	params, err := url.ParseQuery("difficulty=easy&price[lte]=500&sort=price&fields=name,price&page=3&limit=5")
	require.NoError(t, err)

	f := NewFeatures("tours", tourColumns, params).
		Filter().
		Sort().
		Project().
		Paginate()

	sqlStr, args := buildSQL(t, f)

	assert.True(t, strings.HasPrefix(sqlStr, "SELECT name, price FROM tours"), sqlStr)
	assert.Contains(t, sqlStr, "difficulty = $1")
	assert.Contains(t, sqlStr, "price <= $2")
	assert.Contains(t, sqlStr, "ORDER BY price ASC")
	assert.Contains(t, sqlStr, "OFFSET 10")
	assert.Contains(t, sqlStr, "LIMIT 5")
	assert.Equal(t, []any{"easy", "500"}, args)
}

// Stats-style endpoints skip pagination entirely; the builder must not emit
// OFFSET/LIMIT on its own.
func TestChaining_SkippingPaginateLeavesQueryUnbounded(t *testing.T) {
	params, err := url.ParseQuery("difficulty=easy")
	require.NoError(t, err)

	f := NewFeatures("tours", tourColumns, params).Filter().Sort()
	sqlStr, _ := buildSQL(t, f)

	assert.NotContains(t, sqlStr, "LIMIT")
	assert.NotContains(t, sqlStr, "OFFSET")
}

func TestSplitOperator(t *testing.T) {
	tests := []struct {
		key        string
		wantColumn string
		wantOp     string
	}{
		{"price", "price", ""},
		{"price[gte]", "price", "gte"},
		{"price[lt]", "price", "lt"},
		{"price[regex]", "price[regex]", ""},
		{"[gte]", "[gte]", ""},
		{"price[gte", "price[gte", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			col, op := splitOperator(tt.key)
			assert.Equal(t, tt.wantColumn, col)
			assert.Equal(t, tt.wantOp, op)
		})
	}
}
