package sessiongate

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/sessiongate/internal/throttle"
)

// Login verifies the password for the account behind email and, on
// success, issues a session cookie. Unknown email and wrong password are
// folded into the same ErrInvalidCredentials; a hash comparison runs in
// both cases so the two are not separable by timing. With throttling
// enabled, accounts past their failure budget get ErrTooManyAttempts
// before any hash work happens.
func (e *Engine) Login(ctx context.Context, w http.ResponseWriter, email, pass string) (*Principal, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}
	email = normalizeEmail(email)

	if err := e.throttleCheck(ctx, email); err != nil {
		return nil, err
	}

	user, err := e.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.passwordHash.Verify(pass, e.dummyHash)
			e.loginFailed(ctx, "", email)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Join(ErrProviderUnavailable, err)
	}

	ok, err := e.passwordHash.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		e.loginFailed(ctx, user.UserID, email)
		return nil, ErrInvalidCredentials
	}

	if err := e.IssueSession(w, user.UserID, user.Email, user.OnboardingCompleted); err != nil {
		return nil, err
	}

	e.throttleReset(ctx, email)
	e.metricInc(MetricLoginSuccess)
	e.auditLogin(ctx, user.UserID, email, true)

	now := time.Now()
	return &Principal{
		UserID:              user.UserID,
		Email:               user.Email,
		OnboardingCompleted: user.OnboardingCompleted,
		IssuedAt:            now,
		ExpiresAt:           now.Add(e.config.Token.TTL),
	}, nil
}

// Register creates an account and signs the new user in. The onboarding
// flag starts false; the onboarding flow flips it exactly once via
// CompleteOnboarding.
func (e *Engine) Register(ctx context.Context, w http.ResponseWriter, email, pass string) (*Principal, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("invalid email")
	}

	hash, err := e.passwordHash.Hash(pass)
	if err != nil {
		return nil, err
	}

	user, err := e.users.CreateUser(ctx, CreateUserInput{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			e.metricInc(MetricRegisterDuplicate)
			return nil, ErrUserExists
		}
		return nil, errors.Join(ErrProviderUnavailable, err)
	}

	if err := e.IssueSession(w, user.UserID, user.Email, false); err != nil {
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditRegister,
		UserID:    user.UserID,
		Email:     email,
		Success:   true,
	})

	now := time.Now()
	return &Principal{
		UserID:    user.UserID,
		Email:     user.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(e.config.Token.TTL),
	}, nil
}

// Logout clears the session cookie for this device. With revocation
// enabled, RevokeUser is the stronger cross-device variant.
func (e *Engine) Logout(w http.ResponseWriter) {
	e.ClearSession(w)
}

// CompleteOnboarding persists the onboarding flag through the user
// provider and re-issues the session cookie so the new snapshot is
// visible to the gate immediately. Without a valid session it is a no-op.
func (e *Engine) CompleteOnboarding(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	p := e.Session(r)
	if p == nil {
		return nil
	}

	if _, err := e.users.UpdateOnboarding(ctx, p.UserID, true); err != nil {
		return errors.Join(ErrProviderUnavailable, err)
	}
	return e.UpdateOnboarding(w, r, true)
}

// throttleCheck consults the failure budget. Backend outages skip the
// check rather than locking everyone out: the budget is a brake on
// guessing, not part of the trust decision.
func (e *Engine) throttleCheck(ctx context.Context, email string) error {
	if e.throttle == nil {
		return nil
	}
	err := e.throttle.Check(ctx, email, "")
	switch {
	case err == nil:
		return nil
	case errors.Is(err, throttle.ErrThrottled):
		e.metricInc(MetricLoginThrottled)
		e.auditLogin(ctx, "", email, false)
		return ErrTooManyAttempts
	default:
		e.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
		return nil
	}
}

func (e *Engine) loginFailed(ctx context.Context, userID, email string) {
	if e.throttle != nil {
		if err := e.throttle.RecordFailure(ctx, email, ""); err != nil && !errors.Is(err, throttle.ErrThrottled) {
			e.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
		}
	}
	e.metricInc(MetricLoginFailure)
	e.auditLogin(ctx, userID, email, false)
}

func (e *Engine) throttleReset(ctx context.Context, email string) {
	if e.throttle == nil {
		return
	}
	if err := e.throttle.Reset(ctx, email, ""); err != nil {
		e.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
	}
}

func (e *Engine) auditLogin(ctx context.Context, userID, email string, success bool) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditLogin,
		UserID:    userID,
		Email:     email,
		Success:   success,
	}
	if !success {
		event.Error = ErrInvalidCredentials.Error()
	}
	e.emitAudit(ctx, event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
