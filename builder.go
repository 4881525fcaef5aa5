package sessiongate

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/medtrack/sessiongate/internal/throttle"
	"github.com/medtrack/sessiongate/password"
	"github.com/medtrack/sessiongate/revoke"
	"github.com/medtrack/sessiongate/token"
)

// Builder assembles an Engine. Construction is allocation-only; nothing
// touches the network until Build, and Build refuses to hand out an
// engine with an invalid configuration.
type Builder struct {
	config    Config
	redis     *redis.Client
	users     UserProvider
	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a Builder preloaded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the whole configuration. The config is cloned;
// later mutation of cfg by the caller does not reach the engine.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSecret sets the token signing secret without replacing the rest of
// the configuration.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.Token.Secret = cloneBytes(secret)
	return b
}

// WithRedis attaches the Redis client backing the revocation denylist.
// Required when Revocation.Enabled is set, ignored otherwise.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserProvider attaches the persistence collaborator for the login,
// registration and onboarding flows.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.users = up
	return b
}

// WithAuditSink attaches the audit event receiver. Only consulted when
// Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns an immutable Engine.
// Configuration failures here are fatal by contract: the caller must not
// serve traffic when Build returns an error.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.config.Revocation.Enabled && b.redis == nil {
		return nil, errors.New("revocation enabled but no redis client configured")
	}
	if b.config.Throttle.Enabled && b.redis == nil {
		return nil, errors.New("throttling enabled but no redis client configured")
	}

	tokens, err := token.NewManager(token.Config{
		TTL:    b.config.Token.TTL,
		Secret: b.config.Token.Secret,
		Issuer: b.config.Token.Issuer,
		Leeway: b.config.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(b.config.Password)
	if err != nil {
		return nil, err
	}
	dummyHash, err := hasher.Hash("sessiongate-timing-pad")
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		config:       b.config,
		tokens:       tokens,
		users:        b.users,
		passwordHash: hasher,
		audit:        newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:      NewMetrics(b.config.Metrics),
		logger:       logger,
		dummyHash:    dummyHash,
	}
	if b.config.Revocation.Enabled {
		e.revocations = revoke.NewStore(b.redis, b.config.Revocation.KeyPrefix)
	}
	if b.config.Throttle.Enabled {
		e.throttle = throttle.New(b.redis, b.config.Revocation.KeyPrefix, throttle.Config{
			MaxAttempts: b.config.Throttle.MaxAttempts,
			Cooldown:    b.config.Throttle.Cooldown,
			PerIP:       b.config.Throttle.PerIP,
		})
	}

	b.built = true
	return e, nil
}
