package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached upstream response.
type Key struct {
	// Host is the upstream host (e.g. "api.example.com"). Empty for
	// host-independent keys.
	Host string

	// Path is the request path (e.g. "/v1/orders").
	Path string

	// Query holds the request query parameters, paging parameters included.
	Query url.Values
}

// KeyFor builds the key for an upstream request URL.
func KeyFor(u *url.URL) Key {
	return Key{Host: u.Host, Path: u.Path, Query: u.Query()}
}

// String generates a deterministic key string.
// Format: pagedseq:host/path:param1=val1:param2=val2a,val2b
//
// Example:
//
//	pagedseq:api.example.com/v1/orders:page=2:pageSize=50
func (k Key) String() string {
	parts := []string{"pagedseq"}

	target := strings.Trim(k.Host+"/"+strings.Trim(k.Path, "/"), "/")
	if target != "" {
		parts = append(parts, target)
	}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, name+"="+strings.Join(k.Query[name], ","))
		}
	}

	return strings.Join(parts, ":")
}
