package source

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundwire/groundwire/pkg/config"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE employees (id INTEGER PRIMARY KEY, status TEXT)`)
	require.NoError(t, err)
	for i := 0; i < 14; i++ {
		_, err = db.Exec(`INSERT INTO employees (status) VALUES ('active')`)
		require.NoError(t, err)
	}

	return db
}

func newTestDatabaseAdapter(t *testing.T, db *sql.DB) *DatabaseAdapter {
	t.Helper()

	adapter, err := NewDatabaseAdapter(db, &config.DatabaseConfig{
		Queries: map[string]config.NamedQuery{
			"employee_count": {
				Statement: `SELECT COUNT(*) FROM employees WHERE status = ?`,
				Summary:   "%v active records",
			},
			"single_employee": {
				Statement: `SELECT id FROM employees WHERE status = ? LIMIT 1`,
			},
		},
		DefaultQuery: "employee_count",
	})
	require.NoError(t, err)
	return adapter
}

func TestDatabaseAdapter_CountQuery(t *testing.T) {
	adapter := newTestDatabaseAdapter(t, newTestDB(t))

	res := adapter.Execute(context.Background(), Query{
		Kind: KindDatabase,
		Name: "employee_count",
		Args: []any{"active"},
	})

	require.True(t, res.Success)
	assert.Equal(t, KindDatabase, res.Kind)
	assert.Equal(t, "14 active records", res.Content)
	assert.GreaterOrEqual(t, res.Latency, time.Duration(0))
}

func TestDatabaseAdapter_DefaultQuery(t *testing.T) {
	adapter := newTestDatabaseAdapter(t, newTestDB(t))

	res := adapter.Execute(context.Background(), Query{
		Kind: KindDatabase,
		Args: []any{"active"},
	})

	require.True(t, res.Success)
	assert.Equal(t, "14 active records", res.Content)
}

func TestDatabaseAdapter_UnknownQuery(t *testing.T) {
	adapter := newTestDatabaseAdapter(t, newTestDB(t))

	res := adapter.Execute(context.Background(), Query{
		Kind: KindDatabase,
		Name: "missing",
	})

	require.False(t, res.Success)
	assert.Equal(t, ErrorDataUnavailable, res.ErrorKind)
	assert.Empty(t, res.Content)
}

func TestDatabaseAdapter_NoRows(t *testing.T) {
	adapter := newTestDatabaseAdapter(t, newTestDB(t))

	res := adapter.Execute(context.Background(), Query{
		Kind: KindDatabase,
		Name: "single_employee",
		Args: []any{"terminated"},
	})

	require.False(t, res.Success)
	assert.Equal(t, ErrorDataUnavailable, res.ErrorKind)
}

func TestDatabaseAdapter_QueryError(t *testing.T) {
	db := newTestDB(t)
	adapter, err := NewDatabaseAdapter(db, &config.DatabaseConfig{
		Queries: map[string]config.NamedQuery{
			"bad": {Statement: `SELECT COUNT(*) FROM no_such_table`},
		},
		DefaultQuery: "bad",
	})
	require.NoError(t, err)

	res := adapter.Execute(context.Background(), Query{Kind: KindDatabase})

	require.False(t, res.Success)
	assert.Equal(t, ErrorDataUnavailable, res.ErrorKind)
}

func TestDatabaseAdapter_CancelledContext(t *testing.T) {
	adapter := newTestDatabaseAdapter(t, newTestDB(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := adapter.Execute(ctx, Query{Kind: KindDatabase, Args: []any{"active"}})

	require.False(t, res.Success)
	assert.Equal(t, ErrorTimeout, res.ErrorKind)
}

func TestNewDatabaseAdapter_Validation(t *testing.T) {
	db := newTestDB(t)

	_, err := NewDatabaseAdapter(nil, &config.DatabaseConfig{
		Queries: map[string]config.NamedQuery{"q": {Statement: "SELECT 1"}},
	})
	assert.Error(t, err)

	_, err = NewDatabaseAdapter(db, &config.DatabaseConfig{})
	assert.Error(t, err)
}
