package jsonbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/Sternrassler/pagedseq/pkg/paged"
	"github.com/Sternrassler/pagedseq/pkg/pagination"
	"github.com/rs/zerolog/log"
)

// Encode streams seq to w as {"pagination":{...},"items":[...]}. The
// descriptor is read before enumeration. When w implements http.Flusher or
// Flush() error it is flushed after every item.
func Encode[T any](ctx context.Context, w io.Writer, seq paged.Sequence[T]) error {
	if seq == nil {
		return fmt.Errorf("jsonbridge: %w", ErrUnsupportedType)
	}
	return encode(ctx, w, seq.Pagination, seq.All(ctx))
}

// encodeUntyped is Encode for sequences whose element type is only known at
// runtime.
func encodeUntyped(ctx context.Context, w io.Writer, seq paged.Untyped) error {
	return encode(ctx, w, seq.Pagination, seq.Untyped(ctx))
}

func encode[T any](
	ctx context.Context,
	w io.Writer,
	paginate func(context.Context) (pagination.Pagination, error),
	items iter.Seq2[T, error],
) error {
	start := time.Now()
	defer func() {
		encodeDuration.Observe(time.Since(start).Seconds())
	}()

	p, err := paginate(ctx)
	if err != nil {
		return fmt.Errorf("jsonbridge: pagination: %w", err)
	}
	head, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("jsonbridge: pagination: %w", err)
	}

	if _, err := fmt.Fprintf(w, `{"pagination":%s,"items":[`, head); err != nil {
		return err
	}

	i := 0
	for item, err := range items {
		if err != nil {
			return err
		}
		raw, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("jsonbridge: encode item %d: %w", i, err)
		}
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if _, err := w.Write(raw); err != nil {
			return err
		}
		if err := flush(w); err != nil {
			return err
		}
		itemsEncoded.Inc()
		i++
	}

	if _, err := io.WriteString(w, "]}"); err != nil {
		return err
	}
	return flush(w)
}

func flush(w io.Writer) error {
	switch f := w.(type) {
	case http.Flusher:
		f.Flush()
	case interface{ Flush() error }:
		return f.Flush()
	}
	return nil
}

// Handler serves the sequence returned by seqFn as a streamed envelope. A
// sequence implementing io.Closer is closed once the response is written.
//
// Errors from seqFn or from resolving pagination are answered with the
// status reported by an HTTPStatus() int method anywhere in the chain, or 502
// otherwise. Errors after the first byte can only abort the stream and are
// logged.
func Handler[T any](seqFn func(*http.Request) (paged.Sequence[T], error)) http.Handler {
	if seqFn == nil {
		panic("jsonbridge: nil sequence function")
	}
	logger := log.With().Str("component", "jsonbridge").Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seq, err := seqFn(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if c, ok := seq.(io.Closer); ok {
			defer c.Close()
		}
		if _, err := seq.Pagination(r.Context()); err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := Encode(r.Context(), w, seq); err != nil {
			event := logger.Warn()
			if paged.IsCancelled(err) {
				event = logger.Debug()
			}
			event.Err(err).Str("path", r.URL.Path).Msg("Stream aborted")
		}
	})
}

type statusCoder interface {
	HTTPStatus() int
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var sc statusCoder
	if errors.As(err, &sc) {
		status = sc.HTTPStatus()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
