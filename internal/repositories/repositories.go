package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// nextPosition returns a position that sorts ahead of every row in table.
func nextPosition(ctx context.Context, q querier, table string) (int, error) {
	var lowest sql.NullInt64
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT MIN(position) FROM %s", table)).Scan(&lowest)
	if err != nil {
		return 0, fmt.Errorf("failed to get position: %w", err)
	}
	if !lowest.Valid {
		return 0, nil
	}
	return int(lowest.Int64) - 1, nil
}
