package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestCache[T any](t *testing.T) *Cache[T] {
	t.Helper()
	c := &Cache[T]{ttl: DefaultTTL}
	if err := c.SetDir(t.TempDir()); err != nil {
		t.Fatalf("SetDir() error = %v", err)
	}
	return c
}

func TestGetOrSet(t *testing.T) {
	c := newTestCache[string](t)

	calls := 0
	fetch := func() (string, error) {
		calls++
		return "fetched", nil
	}

	got, err := c.GetOrSet("pkg/foo", fetch, false)
	if err != nil {
		t.Fatalf("GetOrSet() error = %v", err)
	}
	if got != "fetched" {
		t.Errorf("GetOrSet() = %q, want %q", got, "fetched")
	}

	// Second call must hit the cache
	got, err = c.GetOrSet("pkg/foo", fetch, false)
	if err != nil {
		t.Fatalf("GetOrSet() error = %v", err)
	}
	if got != "fetched" {
		t.Errorf("GetOrSet() = %q, want %q", got, "fetched")
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestGetOrSetForceUpdate(t *testing.T) {
	c := newTestCache[int](t)

	calls := 0
	fetch := func() (int, error) {
		calls++
		return calls, nil
	}

	if _, err := c.GetOrSet("counter", fetch, false); err != nil {
		t.Fatalf("GetOrSet() error = %v", err)
	}
	got, err := c.GetOrSet("counter", fetch, true)
	if err != nil {
		t.Fatalf("GetOrSet() error = %v", err)
	}
	if got != 2 {
		t.Errorf("GetOrSet() with forceUpdate = %d, want 2", got)
	}
}

func TestGetOrSetExpiredEntry(t *testing.T) {
	c := newTestCache[string](t)
	c.SetTTL(time.Nanosecond)

	calls := 0
	fetch := func() (string, error) {
		calls++
		return "fresh", nil
	}

	if _, err := c.GetOrSet("pkg", fetch, false); err != nil {
		t.Fatalf("GetOrSet() error = %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := c.GetOrSet("pkg", fetch, false); err != nil {
		t.Fatalf("GetOrSet() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("fetch called %d times, want 2 after TTL expiry", calls)
	}
}

func TestGetOrSetFetchError(t *testing.T) {
	c := newTestCache[string](t)

	wantErr := errors.New("registry unavailable")
	_, err := c.GetOrSet("pkg", func() (string, error) {
		return "", wantErr
	}, false)
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet() error = %v, want %v", err, wantErr)
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{
			name: "Scoped package name",
			key:  "@modelcontextprotocol/server-github",
			want: "_modelcontextprotocol_server-github",
		},
		{
			name: "URL key",
			key:  "https://registry.npmjs.org/foo",
			want: "https___registry.npmjs.org_foo",
		},
		{
			name: "Dot traversal collapsed",
			key:  "a..b",
			want: "a.b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, normalizeKey(tt.key)); diff != "" {
				t.Errorf("normalizeKey() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
