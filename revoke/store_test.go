package revoke

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStoreTest(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewStore(rdb, "sg"), mr
}

func TestRevokedSinceWithoutEntry(t *testing.T) {
	store, _ := newStoreTest(t)

	revoked, err := store.RevokedSince(context.Background(), "u-1", time.Now())
	if err != nil {
		t.Fatalf("revoked since: %v", err)
	}
	if revoked {
		t.Fatal("expected no revocation for unknown user")
	}
}

func TestRevokeCutoffBoundaries(t *testing.T) {
	store, _ := newStoreTest(t)
	ctx := context.Background()
	cutoff := time.Now()

	if err := store.Revoke(ctx, "u-1", cutoff, time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	cases := []struct {
		name     string
		issuedAt time.Time
		want     bool
	}{
		{"issued before cutoff", cutoff.Add(-time.Minute), true},
		{"issued at cutoff", cutoff, true},
		{"issued after cutoff", cutoff.Add(time.Minute), false},
	}
	for _, tc := range cases {
		revoked, err := store.RevokedSince(ctx, "u-1", tc.issuedAt)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if revoked != tc.want {
			t.Fatalf("%s: revoked = %v, want %v", tc.name, revoked, tc.want)
		}
	}
}

func TestRevokeCutoffIsMonotonic(t *testing.T) {
	store, _ := newStoreTest(t)
	ctx := context.Background()

	later := time.Now()
	earlier := later.Add(-time.Hour)

	if err := store.Revoke(ctx, "u-1", later, time.Hour); err != nil {
		t.Fatalf("revoke later: %v", err)
	}
	// A stale concurrent revocation must not shrink the window.
	if err := store.Revoke(ctx, "u-1", earlier, time.Hour); err != nil {
		t.Fatalf("revoke earlier: %v", err)
	}

	revoked, err := store.RevokedSince(ctx, "u-1", later.Add(-time.Minute))
	if err != nil {
		t.Fatalf("revoked since: %v", err)
	}
	if !revoked {
		t.Fatal("earlier revocation overwrote the later cutoff")
	}
}

func TestRevokeIsolatesUsers(t *testing.T) {
	store, _ := newStoreTest(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "u-1", time.Now(), time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	revoked, err := store.RevokedSince(ctx, "u-2", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("revoked since: %v", err)
	}
	if revoked {
		t.Fatal("revocation leaked across users")
	}
}

func TestRevokeEntryExpires(t *testing.T) {
	store, mr := newStoreTest(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "u-1", time.Now(), time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	revoked, err := store.RevokedSince(ctx, "u-1", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("revoked since: %v", err)
	}
	if revoked {
		t.Fatal("expected entry to expire with its TTL")
	}
}

func TestRevokeValidatesInput(t *testing.T) {
	store, _ := newStoreTest(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "", time.Now(), time.Hour); err == nil {
		t.Fatal("expected error for empty userID")
	}
	if err := store.Revoke(ctx, "u-1", time.Now(), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestRevokedSinceTreatsCorruptEntryAsRevoked(t *testing.T) {
	store, mr := newStoreTest(t)
	mr.Set("sg:revoke:u-1", "not-a-number")

	revoked, err := store.RevokedSince(context.Background(), "u-1", time.Now())
	if err != nil {
		t.Fatalf("revoked since: %v", err)
	}
	if !revoked {
		t.Fatal("corrupt entry must fail closed")
	}
}
