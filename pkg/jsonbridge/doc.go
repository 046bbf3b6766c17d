// Package jsonbridge moves paged sequences across HTTP as JSON.
//
// The consume side, Reader, parses a response body once and detects one of
// three shapes:
//
//	{"pagination": {...}, "items": [...]}   ModeEnvelope
//	[...]                                   ModeArray
//	{...}                                   ModeSingle
//
// Items are decoded lazily while the reader is enumerated. Null items and
// items that do not decode into the element type are skipped rather than
// failing the read; a body that is not valid JSON fails with
// ErrMalformedDocument.
//
// The produce side, Encode and Handler, always writes the envelope and
// flushes after every item so clients can start consuming early:
//
//	http.Handle("/orders", jsonbridge.Handler(func(r *http.Request) (paged.Sequence[Order], error) {
//		return store.Orders(r.Context()), nil
//	}))
//
// Registry covers callers that only hold a sequence as an interface value.
package jsonbridge
