package revoke

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the backend cannot serve a
// revocation write.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Cut-off updates must be monotonic: a concurrent older revocation must
// never shrink the window an admin already widened.
const revokeScript = `
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local proposed = tonumber(ARGV[1])
if proposed > current then
  redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
  return 1
end
return 0
`

var revokeLua = redis.NewScript(revokeScript)

// Store is a Redis-backed revocation denylist. Safe for concurrent use.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// NewStore wraps an existing Redis client. The prefix namespaces keys so
// one Redis instance can serve several deployments.
func NewStore(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "sg"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(userID string) string {
	return fmt.Sprintf("%s:revoke:%s", s.prefix, userID)
}

// Revoke records at as the account's cut-off instant. Tokens issued at or
// before it will fail verification. ttl bounds the entry's lifetime and
// must cover the token TTL.
func (s *Store) Revoke(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	if userID == "" {
		return errors.New("empty userID")
	}
	if ttl <= 0 {
		return errors.New("ttl must be > 0")
	}

	err := revokeLua.Run(ctx, s.rdb, []string{s.key(userID)},
		at.UnixNano(), ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// RevokedSince reports whether a token issued at issuedAt falls inside
// the account's revoked window. A missing entry means not revoked.
func (s *Store) RevokedSince(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}

	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Corrupt entry: treat the account as revoked rather than trust a
		// blob we cannot read.
		return true, nil
	}
	return issuedAt.UnixNano() <= cutoff, nil
}
