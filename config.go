package sessiongate

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/medtrack/sessiongate/password"
	"github.com/medtrack/sessiongate/token"
)

// Config is the full engine configuration. Instances are validated at
// Build and treated as immutable afterwards.
type Config struct {
	Token      TokenConfig
	Cookie     CookieConfig
	Gate       GateConfig
	Password   password.Params
	Throttle   ThrottleConfig
	Revocation RevocationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

// TokenConfig controls the signed session token.
type TokenConfig struct {
	// TTL is the validity window of every issued token. The cookie
	// Max-Age is derived from it.
	TTL time.Duration
	// Secret is the server-held HS256 signing key, minimum 32 bytes.
	// The engine refuses to build without it; there is no unsigned mode.
	Secret []byte
	// Issuer is stamped into tokens and verified on parse when set.
	Issuer string
	// Leeway tolerates clock skew between hosts, capped at two minutes.
	Leeway time.Duration
}

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	SameSite http.SameSite
	// Secure marks the cookie transport-encrypted-only. Required in
	// production deployments; defaults to true.
	Secure bool
}

// GateConfig controls locale resolution and route classification for the
// edge gate. Paths are logical (locale-stripped) and matched per segment.
type GateConfig struct {
	// Locales is the closed set of supported locale segments.
	Locales []string
	// DefaultLocale is prepended when a request path carries no locale.
	DefaultLocale string

	// AuthOnlyPaths are meaningful only without a session.
	AuthOnlyPaths []string
	// ProtectedPaths require a verified session.
	ProtectedPaths []string
	// ExcludedPrefixes are outside the gate's jurisdiction entirely.
	ExcludedPrefixes []string

	// LoginPath receives unauthenticated visitors of protected routes.
	LoginPath string
	// OnboardingPath receives authenticated, not-yet-onboarded visitors
	// of auth-only routes.
	OnboardingPath string
	// DashboardPath receives authenticated, onboarded visitors of
	// auth-only routes.
	DashboardPath string
}

// ThrottleConfig enables the optional Redis-backed failed-login budget.
// Shares the revocation client and key prefix.
type ThrottleConfig struct {
	Enabled     bool
	MaxAttempts int
	Cooldown    time.Duration
	// PerIP additionally budgets by source address. Off by default; the
	// engine API is IP-agnostic and callers opt in at their own layer.
	PerIP bool
}

// RevocationConfig enables the optional server-side denylist. Disabled by
// default: the base design is fully stateless and a token stays valid
// until natural expiry.
type RevocationConfig struct {
	Enabled   bool
	KeyPrefix string
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the production defaults: 7 day TTL, Lax HTTP-only
// secure cookie at /, es/en locales with es default, and the route map of
// the application shell.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:    7 * 24 * time.Hour,
			Issuer: "medtrack",
			Leeway: 30 * time.Second,
		},
		Cookie: CookieConfig{
			Name:     "mt_session",
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
			Secure:   true,
		},
		Gate: GateConfig{
			Locales:          []string{"es", "en"},
			DefaultLocale:    "es",
			AuthOnlyPaths:    []string{"/login", "/register", "/forgot-password", "/reset-password"},
			ProtectedPaths:   []string{"/onboarding", "/intranet"},
			ExcludedPrefixes: []string{"/api", "/static", "/_assets"},
			LoginPath:        "/login",
			OnboardingPath:   "/onboarding",
			DashboardPath:    "/intranet",
		},
		Password: password.DefaultParams(),
		Throttle: ThrottleConfig{
			Enabled:     false,
			MaxAttempts: 10,
			Cooldown:    15 * time.Minute,
		},
		Revocation: RevocationConfig{
			Enabled:   false,
			KeyPrefix: "sg",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	out.Gate.Locales = cloneStrings(cfg.Gate.Locales)
	out.Gate.AuthOnlyPaths = cloneStrings(cfg.Gate.AuthOnlyPaths)
	out.Gate.ProtectedPaths = cloneStrings(cfg.Gate.ProtectedPaths)
	out.Gate.ExcludedPrefixes = cloneStrings(cfg.Gate.ExcludedPrefixes)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Validate rejects configurations the engine must not serve with. A
// missing or short signing secret is the canonical fatal case: it must
// stop the process at startup, never degrade to issuing unsigned tokens.
func (c *Config) Validate() error {
	if len(c.Token.Secret) < 32 {
		return token.ErrSecretTooShort
	}
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be > 0")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	if c.Cookie.Name == "" {
		return errors.New("Cookie Name is required")
	}
	if c.Cookie.Path == "" {
		return errors.New("Cookie Path is required")
	}
	if c.Cookie.SameSite == http.SameSiteNoneMode {
		return errors.New("Cookie SameSite must be Lax or Strict for a first-party session")
	}

	if len(c.Gate.Locales) == 0 {
		return errors.New("Gate Locales must not be empty")
	}
	for _, l := range c.Gate.Locales {
		if l == "" || strings.ContainsRune(l, '/') {
			return errors.New("Gate Locales must be single non-empty path segments")
		}
	}
	if !containsString(c.Gate.Locales, c.Gate.DefaultLocale) {
		return errors.New("Gate DefaultLocale must be one of Gate Locales")
	}
	for _, group := range [][]string{c.Gate.AuthOnlyPaths, c.Gate.ProtectedPaths, c.Gate.ExcludedPrefixes} {
		for _, p := range group {
			if !strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
				return errors.New("Gate paths must start with '/' and carry no trailing slash")
			}
		}
	}
	for _, p := range []string{c.Gate.LoginPath, c.Gate.OnboardingPath, c.Gate.DashboardPath} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("Gate redirect targets must start with '/'")
		}
	}

	if c.Throttle.Enabled && (c.Throttle.MaxAttempts <= 0 || c.Throttle.Cooldown <= 0) {
		return errors.New("Throttle MaxAttempts and Cooldown must be > 0 when throttling is enabled")
	}

	if c.Revocation.Enabled && c.Revocation.KeyPrefix == "" {
		return errors.New("Revocation KeyPrefix is required when revocation is enabled")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
