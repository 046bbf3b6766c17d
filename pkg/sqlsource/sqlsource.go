// Package sqlsource exposes SQLite query results as paged sequences.
//
// The total comes from a COUNT(*) over the query and rows are read page by
// page with LIMIT/OFFSET:
//
//	seq := sqlsource.Query(conn, sqlsource.Select{
//		SQL:      "SELECT id, name FROM orders WHERE status = ? ORDER BY id",
//		Args:     []any{"open"},
//		PageSize: 50,
//	}, func(stmt *sqlite.Stmt) (Order, error) {
//		return Order{ID: stmt.ColumnInt64(0), Name: stmt.ColumnText(1)}, nil
//	})
//
// A *sqlite.Conn is not safe for concurrent use; the source serializes its
// own statements, but the connection must not be used elsewhere while a
// sequence over it is being read.
package sqlsource

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/pagedseq/pkg/paged"
	"github.com/Sternrassler/pagedseq/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// DefaultPageSize is used when Select.PageSize is zero.
const DefaultPageSize = 100

// ErrScan wraps errors returned by the row scan function.
var ErrScan = errors.New("scan row")

// Select is a query read page by page. SQL must not carry its own LIMIT or
// OFFSET clause and should have an ORDER BY for stable pages.
type Select struct {
	SQL      string
	Args     []any
	PageSize int
}

// ScanFunc converts the current row of stmt into an item.
type ScanFunc[T any] func(stmt *sqlite.Stmt) (T, error)

// Query returns a sequence over the rows of q. Pagination reports the row
// count as TotalCount, q.PageSize and CurrentPage 1; it is resolved once.
// The snapshot advances per page unless opts select another strategy.
func Query[T any](conn *sqlite.Conn, q Select, scan ScanFunc[T], opts ...paged.Option) *paged.Adapter[T] {
	if conn == nil {
		panic("sqlsource.Query: nil connection")
	}
	if scan == nil {
		panic("sqlsource.Query: nil scan function")
	}
	if q.PageSize < 0 {
		panic(fmt.Sprintf("sqlsource.Query: negative page size %d", q.PageSize))
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}

	s := &source[T]{
		conn:   conn,
		query:  strings.TrimRight(strings.TrimSpace(q.SQL), ";"),
		args:   q.Args,
		size:   q.PageSize,
		scan:   scan,
		logger: log.With().Str("component", "sqlsource").Logger(),
	}
	opts = append([]paged.Option{paged.WithStrategy(pagination.StrategyPerPage)}, opts...)
	return paged.New[T](s.items, s.pagination, opts...)
}

type source[T any] struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	query  string
	args   []any
	size   int
	scan   ScanFunc[T]
	logger zerolog.Logger
}

func (s *source[T]) pagination(ctx context.Context) (pagination.Pagination, error) {
	var total int64
	err := s.exec(ctx, "count", "SELECT COUNT(*) FROM ("+s.query+")", s.args, func(stmt *sqlite.Stmt) error {
		total = stmt.ColumnInt64(0)
		return nil
	})
	if err != nil {
		return pagination.Pagination{}, err
	}
	return pagination.New(s.size, 1, pagination.WithTotalCount(total))
}

func (s *source[T]) items(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		pageSQL := s.query + " LIMIT ? OFFSET ?"

		for offset := 0; ; offset += s.size {
			rows, err := s.page(ctx, pageSQL, offset)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, row := range rows {
				if !yield(row, nil) {
					return
				}
			}
			if len(rows) < s.size {
				return
			}
		}
	}
}

// page reads one page into memory so the connection is released before
// items reach the consumer.
func (s *source[T]) page(ctx context.Context, pageSQL string, offset int) ([]T, error) {
	args := append(append(make([]any, 0, len(s.args)+2), s.args...), s.size, offset)
	rows := make([]T, 0, s.size)

	err := s.exec(ctx, "page", pageSQL, args, func(stmt *sqlite.Stmt) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := s.scan(stmt)
		if err != nil {
			return fmt.Errorf("%w %d: %w", ErrScan, offset+len(rows)+1, err)
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rowsRead.Add(float64(len(rows)))
	s.logger.Debug().
		Int("offset", offset).
		Int("rows", len(rows)).
		Msg("Read page")
	return rows, nil
}

func (s *source[T]) exec(ctx context.Context, kind, query string, args []any, fn func(*sqlite.Stmt) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sqlsource: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(old)

	start := time.Now()
	err := sqlitex.Execute(s.conn, query, &sqlitex.ExecOptions{
		Args:       args,
		ResultFunc: fn,
	})
	queriesTotal.WithLabelValues(kind).Inc()
	queryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("sqlsource: %w", ctxErr)
		}
		return fmt.Errorf("sqlsource %s query: %w", kind, err)
	}
	return nil
}
