package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSecretBytes = 32

var (
	// ErrSecretTooShort is returned by NewManager when the signing secret
	// is absent or below the minimum length. This is a configuration
	// failure and must abort startup.
	ErrSecretTooShort = errors.New("signing secret missing or shorter than 32 bytes")

	// ErrTokenInvalid is the generic verification failure returned by Parse.
	ErrTokenInvalid = errors.New("invalid session token")

	// ErrExpired, ErrBadSignature and ErrMalformed narrow ErrTokenInvalid
	// for internal accounting. All three satisfy
	// errors.Is(err, ErrTokenInvalid); callers outside this module must
	// only ever branch on that.
	ErrExpired      = fmt.Errorf("%w: expired", ErrTokenInvalid)
	ErrBadSignature = fmt.Errorf("%w: signature mismatch", ErrTokenInvalid)
	ErrMalformed    = fmt.Errorf("%w: malformed", ErrTokenInvalid)
)

// Config defines the codec parameters. Instances are set once at startup
// and treated as immutable afterwards.
type Config struct {
	// TTL bounds the validity window of every issued token.
	TTL time.Duration

	// Secret is the server-held HS256 signing key. Minimum 32 bytes.
	Secret []byte

	// Issuer, when non-empty, is stamped into issued tokens and required
	// on parse.
	Issuer string

	// Leeway tolerates small clock skew between issuing and verifying
	// hosts. Capped at two minutes.
	Leeway time.Duration

	// MaxFutureIAT rejects tokens claiming an issue time further in the
	// future than this bound. Zero selects a 10 minute default.
	MaxFutureIAT time.Duration
}

// Claims is the decoded, verified payload of a session token.
type Claims struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Onboarded bool   `json:"onb"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens. Safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, ErrSecretTooShort
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	return &Manager{config: cfg}, nil
}

// TTL reports the configured validity window, which callers use to align
// cookie Max-Age with token expiry.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}

// Issue signs a token for the given principal fields with issuedAt = now
// and expiresAt = now + TTL. Each token carries a fresh jti so re-issued
// tokens for the same user remain distinguishable in audit trails.
func (m *Manager) Issue(uid, email string, onboarded bool) (string, error) {
	if uid == "" {
		return "", errors.New("empty uid")
	}

	now := time.Now()
	claims := Claims{
		UID:       uid,
		Email:     email,
		Onboarded: onboarded,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
			Issuer:    m.config.Issuer,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.config.Secret)
}

// Parse verifies signature, algorithm, expiry and issuer, then returns the
// decoded claims. Any failure is reported as an error wrapping
// ErrTokenInvalid; callers must not distinguish causes.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", ErrExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %w", ErrBadSignature, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrMalformed
	}
	if claims.UID == "" {
		return nil, fmt.Errorf("%w: missing uid", ErrMalformed)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing iat or exp", ErrMalformed)
	}
	if m.config.MaxFutureIAT > 0 && claims.IssuedAt.Time.After(time.Now().Add(m.config.MaxFutureIAT)) {
		return nil, fmt.Errorf("%w: iat too far in the future", ErrMalformed)
	}

	return claims, nil
}
