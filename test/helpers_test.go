//go:build integration
// +build integration

package test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/sessiongate"
	"github.com/medtrack/sessiongate/middleware"
	"github.com/medtrack/sessiongate/password"
)

type fixture struct {
	engine   *sessiongate.Engine
	provider *memoryProvider
	server   *httptest.Server
	redis    *miniredis.Miniredis
}

// newFixture stands up the full stack: miniredis, an in-memory user
// provider, the engine with revocation enabled, and an httptest server
// with the gate in front of a minimal localized page tree.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := sessiongate.DefaultConfig()
	cfg.Token.Secret = []byte("integration-secret-integration-!!!!!")
	cfg.Cookie.Secure = false
	cfg.Revocation.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Password = password.Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}

	provider := newMemoryProvider()
	engine, err := sessiongate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(provider).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{locale}", textPage("landing"))
	mux.HandleFunc("GET /{locale}/login", textPage("login form"))
	mux.HandleFunc("POST /{locale}/login", func(w http.ResponseWriter, r *http.Request) {
		_, err := engine.Login(r.Context(), w, r.FormValue("email"), r.FormValue("password"))
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /{locale}/register", func(w http.ResponseWriter, r *http.Request) {
		_, err := engine.Register(r.Context(), w, r.FormValue("email"), r.FormValue("password"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /{locale}/logout", func(w http.ResponseWriter, r *http.Request) {
		engine.Logout(w)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /{locale}/onboarding", func(w http.ResponseWriter, r *http.Request) {
		if err := engine.CompleteOnboarding(r.Context(), w, r); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /{locale}/onboarding", textPage("onboarding"))
	mux.Handle("GET /{locale}/intranet",
		middleware.RequireSession(engine)(textPage("intranet")))
	mux.HandleFunc("GET /api/health", textPage("ok"))

	server := httptest.NewServer(middleware.Gate(engine)(mux))
	t.Cleanup(server.Close)

	return &fixture{engine: engine, provider: provider, server: server, redis: mr}
}

func textPage(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	}
}

// newClient returns an HTTP client with a cookie jar that reports
// redirects instead of following them.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type memoryProvider struct {
	mu      sync.Mutex
	byID    map[string]sessiongate.UserRecord
	byEmail map[string]string
}

func newMemoryProvider() *memoryProvider {
	return &memoryProvider{
		byID:    map[string]sessiongate.UserRecord{},
		byEmail: map[string]string{},
	}
}

func (p *memoryProvider) GetUserByEmail(_ context.Context, email string) (sessiongate.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.byEmail[email]
	if !ok {
		return sessiongate.UserRecord{}, sessiongate.ErrUserNotFound
	}
	return p.byID[id], nil
}

func (p *memoryProvider) GetUserByID(_ context.Context, userID string) (sessiongate.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.byID[userID]
	if !ok {
		return sessiongate.UserRecord{}, sessiongate.ErrUserNotFound
	}
	return user, nil
}

func (p *memoryProvider) CreateUser(_ context.Context, input sessiongate.CreateUserInput) (sessiongate.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.byEmail[input.Email]; exists {
		return sessiongate.UserRecord{}, sessiongate.ErrUserExists
	}
	user := sessiongate.UserRecord{
		UserID:       input.UserID,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    time.Now(),
	}
	p.byID[user.UserID] = user
	p.byEmail[user.Email] = user.UserID
	return user, nil
}

func (p *memoryProvider) UpdateOnboarding(_ context.Context, userID string, completed bool) (sessiongate.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.byID[userID]
	if !ok {
		return sessiongate.UserRecord{}, sessiongate.ErrUserNotFound
	}
	user.OnboardingCompleted = completed
	p.byID[userID] = user
	return user, nil
}
