package sessiongate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/medtrack/sessiongate/internal/throttle"
	"github.com/medtrack/sessiongate/password"
	"github.com/medtrack/sessiongate/revoke"
	"github.com/medtrack/sessiongate/token"
)

// Engine is the session codec choke point: every read, create, refresh
// and delete of the session cookie goes through it. Immutable after
// [Builder.Build]; safe for concurrent use.
type Engine struct {
	config       Config
	tokens       *token.Manager
	revocations  *revoke.Store
	throttle     *throttle.Limiter
	users        UserProvider
	passwordHash *password.Argon2
	audit        *auditDispatcher
	metrics      *Metrics
	logger       *slog.Logger

	// dummyHash equalizes Login timing for unknown accounts.
	dummyHash string
}

// verifyCause distinguishes verification outcomes for metrics, audit and
// debug logging. It never escapes the package: callers of Session observe
// a nil principal for every non-OK cause.
type verifyCause int

const (
	causeOK verifyCause = iota
	causeMissing
	causeExpired
	causeBadSignature
	causeMalformed
	causeRevoked
	causeBackendError
)

func (c verifyCause) String() string {
	switch c {
	case causeOK:
		return "ok"
	case causeMissing:
		return "missing"
	case causeExpired:
		return "expired"
	case causeBadSignature:
		return "bad_signature"
	case causeMalformed:
		return "malformed"
	case causeRevoked:
		return "revoked"
	default:
		return "backend_error"
	}
}

func (c verifyCause) metric() MetricID {
	switch c {
	case causeOK:
		return MetricVerifyOK
	case causeMissing:
		return MetricVerifyMissing
	case causeExpired:
		return MetricVerifyExpired
	case causeBadSignature:
		return MetricVerifyBadSignature
	case causeMalformed:
		return MetricVerifyMalformed
	case causeRevoked:
		return MetricVerifyRevoked
	default:
		return MetricVerifyBackendError
	}
}

// verify is the single trust function. Both the ambient-context path and
// the explicit-request path end here; there is no second verification
// code path anywhere in the module.
func (e *Engine) verify(ctx context.Context, raw string) (*Principal, verifyCause) {
	if raw == "" {
		return nil, causeMissing
	}

	claims, err := e.tokens.Parse(raw)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			return nil, causeExpired
		case errors.Is(err, token.ErrBadSignature):
			return nil, causeBadSignature
		default:
			return nil, causeMalformed
		}
	}

	if e.revocations != nil {
		revoked, err := e.revocations.RevokedSince(ctx, claims.UID, claims.IssuedAt.Time)
		if err != nil {
			// Fail closed: an unreachable denylist rejects the token.
			return nil, causeBackendError
		}
		if revoked {
			return nil, causeRevoked
		}
	}

	return &Principal{
		UserID:              claims.UID,
		Email:               claims.Email,
		OnboardingCompleted: claims.Onboarded,
		IssuedAt:            claims.IssuedAt.Time,
		ExpiresAt:           claims.ExpiresAt.Time,
	}, causeOK
}

// Session resolves the principal carried by the request's session cookie.
// It returns nil for a missing cookie and for every verification failure
// alike; callers must not attempt to distinguish the cases.
func (e *Engine) Session(r *http.Request) *Principal {
	if e == nil || r == nil {
		return nil
	}

	raw, _ := readSessionCookie(r, e.config.Cookie.Name)
	p, cause := e.verify(r.Context(), raw)
	e.metricInc(cause.metric())

	if cause != causeOK && cause != causeMissing {
		e.logger.DebugContext(r.Context(), "session rejected", "cause", cause.String())
		e.emitAudit(r.Context(), AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditSessionRejected,
			Success:   false,
			Error:     cause.String(),
		})
	}
	return p
}

// IssueSession signs a fresh token for the given account and writes the
// session cookie. issuedAt is now, expiresAt now+TTL.
func (e *Engine) IssueSession(w http.ResponseWriter, userID, email string, onboardingCompleted bool) error {
	if e == nil {
		return ErrEngineNotReady
	}

	raw, err := e.tokens.Issue(userID, email, onboardingCompleted)
	if err != nil {
		return err
	}
	e.writeSessionCookie(w, raw)

	e.metricInc(MetricSessionIssued)
	e.emitAudit(context.Background(), AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditSessionIssued,
		UserID:    userID,
		Email:     email,
		Success:   true,
	})
	return nil
}

// UpdateOnboarding re-issues the current session with the onboarding flag
// set to completed and a fresh validity window (sliding expiry). UserID
// and email are preserved. Without a valid current session this is a
// no-op: there is nothing to update.
func (e *Engine) UpdateOnboarding(w http.ResponseWriter, r *http.Request, completed bool) error {
	if e == nil {
		return ErrEngineNotReady
	}

	p := e.Session(r)
	if p == nil {
		return nil
	}

	raw, err := e.tokens.Issue(p.UserID, p.Email, completed)
	if err != nil {
		return err
	}
	e.writeSessionCookie(w, raw)

	e.metricInc(MetricSessionRefreshed)
	e.emitAudit(r.Context(), AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditSessionRefreshed,
		UserID:    p.UserID,
		Email:     p.Email,
		Success:   true,
	})
	return nil
}

// ClearSession deletes the session cookie. Idempotent: clearing an absent
// session is not an error.
func (e *Engine) ClearSession(w http.ResponseWriter) {
	if e == nil {
		return
	}
	e.expireSessionCookie(w)
	e.metricInc(MetricSessionCleared)
	e.emitAudit(context.Background(), AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditSessionCleared,
		Success:   true,
	})
}

// RevokeUser records a denylist cut-off so every token issued up to now
// for the account fails verification on any device. Requires the
// revocation store to be configured.
func (e *Engine) RevokeUser(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.revocations == nil {
		return ErrRevocationDisabled
	}

	// Entry lifetime covers the token TTL plus leeway so no token issued
	// before the cut-off can outlive the entry.
	ttl := e.config.Token.TTL + e.config.Token.Leeway
	if err := e.revocations.Revoke(ctx, userID, time.Now(), ttl); err != nil {
		return errors.Join(ErrRevocationUnavailable, err)
	}

	e.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditRevocation,
		UserID:    userID,
		Success:   true,
	})
	return nil
}

// GateConfig exposes the gate section for the middleware package.
func (e *Engine) GateConfig() GateConfig {
	if e == nil {
		return GateConfig{}
	}
	return e.config.Gate
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, event)
}

// GateMetricInc lets the middleware package record gate outcomes without
// exposing the Metrics internals.
func (e *Engine) GateMetricInc(id MetricID) {
	e.metricInc(id)
}
