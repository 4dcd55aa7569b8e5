package stream

import (
	"context"
	"database/sql"
)

// Scanner scans the current row into a value.
type Scanner[T any] func(*sql.Rows) (T, error)

// Query creates a Stream that runs query on subscription and emits one chunk
// per row, converted by scanner. A query, scan or iteration error fails the
// stream. The rows are closed when the stream ends, fails or ctx is done.
func Query[T any](ctx context.Context, db *sql.DB, query string, scanner Scanner[T], args ...any) *Stream {
	return QueryWith(ctx, db, query, scanner, nil, args...)
}

// QueryWith is Query with stream options.
func QueryWith[T any](ctx context.Context, db *sql.DB, query string, scanner Scanner[T], opts []Option, args ...any) *Stream {
	return produce(ctx, opts, func(ctx context.Context, send func(Result[any]) bool) {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			send(Err[any](err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			value, err := scanner(rows)
			if err != nil {
				send(Err[any](err))
				return
			}
			if !send(Ok[any](value)) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			send(Err[any](err))
		}
	})
}
