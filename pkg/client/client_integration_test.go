//go:build integration

package client

import (
	"context"
	"testing"
	"time"

	"github.com/Sternrassler/pagedseq/internal/testutil"
	"github.com/Sternrassler/pagedseq/pkg/paged"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts redis:7-alpine for the duration of the test.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() {
		client.Close()
		container.Terminate(context.Background())
	})
	return client
}

func TestIntegration_CachedPageWalk(t *testing.T) {
	rdb := setupRedisContainer(t)
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPaged("/v1/numbers", testutil.PagedEndpoint{Items: testutil.Ints(12), PageSize: 5, MaxAge: time.Minute})

	c := newTestClient(t, mock.URL(), rdb)
	ctx := context.Background()

	for run := range 2 {
		seq := Pages[int](c, "/v1/numbers", paged.WithPrefetch(2))
		got, err := paged.ToSlice[int](ctx, seq)
		seq.Close()
		if err != nil {
			t.Fatalf("Walk #%d failed: %v", run, err)
		}
		if len(got) != 12 || got[0] != 1 || got[11] != 12 {
			t.Fatalf("Walk #%d = %v", run, got)
		}
	}

	// The second walk is served entirely from Redis.
	if got := mock.RequestCount(); got != 3 {
		t.Errorf("RequestCount = %d, want 3", got)
	}
}

func TestIntegration_RevalidatedPageWalk(t *testing.T) {
	rdb := setupRedisContainer(t)
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPaged("/v1/numbers", testutil.PagedEndpoint{Items: testutil.Ints(6), PageSize: 3, MaxAge: time.Second})

	c := newTestClient(t, mock.URL(), rdb)
	ctx := context.Background()

	if _, err := paged.ToSlice[int](ctx, Pages[int](c, "/v1/numbers")); err != nil {
		t.Fatalf("First walk failed: %v", err)
	}
	time.Sleep(1100 * time.Millisecond)

	got, err := paged.ToSlice[int](ctx, Pages[int](c, "/v1/numbers"))
	if err != nil {
		t.Fatalf("Second walk failed: %v", err)
	}
	if len(got) != 6 {
		t.Errorf("Second walk = %v", got)
	}
	if n := mock.ConditionalCount(); n != 2 {
		t.Errorf("ConditionalCount = %d, want 2", n)
	}
}
