// Package cache stores upstream page responses in Redis and supports
// conditional revalidation.
//
// Entries expire with the response: Cache-Control max-age is honoured first,
// then Expires, then DefaultTTL. Entries carrying an ETag or Last-Modified
// value are revalidated with If-None-Match / If-Modified-Since, and a 304
// answer is served from the stored body.
//
//	manager := cache.NewManager(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))
//
//	key := cache.KeyFor(req.URL)
//	entry, err := manager.Get(ctx, key)
//	switch {
//	case errors.Is(err, cache.ErrCacheMiss):
//		// fetch upstream
//	case err == nil && cache.CanRevalidate(entry):
//		cache.AddConditionalHeaders(req, entry)
//	}
//
// # Metrics
//
//   - pagedseq_cache_hits_total
//   - pagedseq_cache_misses_total
//   - pagedseq_cache_entry_size_bytes
//   - pagedseq_cache_conditional_requests_total
//   - pagedseq_cache_not_modified_total
//   - pagedseq_cache_errors_total{operation}
package cache
