package jsonbridge

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/Sternrassler/pagedseq/pkg/paged"
)

type encoderFunc func(ctx context.Context, w io.Writer, seq any) error

type registration struct {
	elem   reflect.Type
	match  func(seq any) bool
	encode encoderFunc
}

// Registry encodes sequences whose static type is unknown to the caller.
// The encoder for a concrete sequence type is resolved once and cached.
type Registry struct {
	mu       sync.RWMutex
	regs     []registration
	encoders map[reflect.Type]encoderFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{encoders: make(map[reflect.Type]encoderFunc)}
}

// Register adds a typed encoder for sequences of T. Registering the same
// element type twice is a no-op.
func Register[T any](r *Registry) {
	elem := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.regs {
		if reg.elem == elem {
			return
		}
	}
	r.regs = append(r.regs, registration{
		elem: elem,
		match: func(seq any) bool {
			_, ok := seq.(paged.Sequence[T])
			return ok
		},
		encode: func(ctx context.Context, w io.Writer, seq any) error {
			return Encode(ctx, w, seq.(paged.Sequence[T]))
		},
	})
}

// Encode writes seq as an envelope. Registered element types use their typed
// encoder; other values implementing paged.Untyped are encoded element by
// element through interface values. Anything else is ErrUnsupportedType.
func (r *Registry) Encode(ctx context.Context, w io.Writer, seq any) error {
	if seq == nil {
		return fmt.Errorf("jsonbridge: nil sequence: %w", ErrUnsupportedType)
	}
	enc, err := r.encoderFor(reflect.TypeOf(seq), seq)
	if err != nil {
		return err
	}
	return enc(ctx, w, seq)
}

func (r *Registry) encoderFor(t reflect.Type, seq any) (encoderFunc, error) {
	r.mu.RLock()
	enc, ok := r.encoders[t]
	r.mu.RUnlock()
	if ok {
		return enc, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if enc, ok := r.encoders[t]; ok {
		return enc, nil
	}
	for _, reg := range r.regs {
		if reg.match(seq) {
			r.encoders[t] = reg.encode
			return reg.encode, nil
		}
	}
	if _, ok := seq.(paged.Untyped); ok {
		enc := func(ctx context.Context, w io.Writer, seq any) error {
			return encodeUntyped(ctx, w, seq.(paged.Untyped))
		}
		r.encoders[t] = enc
		return enc, nil
	}
	return nil, fmt.Errorf("jsonbridge: %s: %w", t, ErrUnsupportedType)
}
