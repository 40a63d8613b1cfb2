package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/groundwire/groundwire/pkg/config"
)

// DatabaseAdapter issues named parameterized aggregate queries against the
// relational store and summarizes the scanned value. It never substitutes a
// cached or invented number: any failure, including an empty result, becomes
// a failed Result.
type DatabaseAdapter struct {
	db           *sql.DB
	queries      map[string]config.NamedQuery
	defaultQuery string
}

// NewDatabaseAdapter wraps an existing connection pool. The pool is shared
// read-only across concurrent fetches; a cancelled query releases its
// connection because database/sql honors the context.
func NewDatabaseAdapter(db *sql.DB, cfg *config.DatabaseConfig) (*DatabaseAdapter, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if len(cfg.Queries) == 0 {
		return nil, fmt.Errorf("at least one named query is required")
	}

	queries := make(map[string]config.NamedQuery, len(cfg.Queries))
	for name, q := range cfg.Queries {
		queries[name] = q
	}

	return &DatabaseAdapter{
		db:           db,
		queries:      queries,
		defaultQuery: cfg.DefaultQuery,
	}, nil
}

func (a *DatabaseAdapter) Kind() Kind {
	return KindDatabase
}

func (a *DatabaseAdapter) Execute(ctx context.Context, q Query) Result {
	start := time.Now()

	summary, err := a.run(ctx, q)
	if err != nil {
		return Fail(KindDatabase, err, time.Since(start))
	}
	return Succeed(KindDatabase, summary, time.Since(start))
}

func (a *DatabaseAdapter) run(ctx context.Context, q Query) (string, error) {
	name := q.Name
	if name == "" {
		name = a.defaultQuery
	}

	named, ok := a.queries[name]
	if !ok {
		return "", NewAdapterError("DatabaseAdapter", "run", ErrorDataUnavailable,
			fmt.Sprintf("no query named %q is configured", name), nil)
	}

	var value any
	err := a.db.QueryRowContext(ctx, named.Statement, q.Args...).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", NewAdapterError("DatabaseAdapter", "run", ErrorDataUnavailable,
			fmt.Sprintf("query %q returned no rows", name), nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "", err
	case err != nil:
		return "", NewAdapterError("DatabaseAdapter", "run", ErrorDataUnavailable,
			fmt.Sprintf("query %q failed", name), err)
	}

	return formatSummary(named.Summary, value), nil
}

func formatSummary(template string, value any) string {
	// MySQL returns aggregate values as []byte.
	if b, ok := value.([]byte); ok {
		value = string(b)
	}

	if template == "" {
		return fmt.Sprintf("%v", value)
	}
	if !strings.Contains(template, "%") {
		return template
	}
	return fmt.Sprintf(template, value)
}
