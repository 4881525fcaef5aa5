package sessiongate

import (
	"context"
	"time"
)

// Principal is the decoded, verified content of a session token.
//
// OnboardingCompleted is a snapshot taken at issue time. It reflects the
// stored state only through the explicit UpdateOnboarding path; pages must
// not treat it as live data.
type Principal struct {
	UserID              string
	Email               string
	OnboardingCompleted bool
	IssuedAt            time.Time
	ExpiresAt           time.Time
}

// UserRecord is the account record exchanged with a [UserProvider].
type UserRecord struct {
	UserID              string
	Email               string
	PasswordHash        string
	OnboardingCompleted bool
	CreatedAt           time.Time
}

// CreateUserInput carries the fields for account registration. The
// password arrives pre-hashed; providers never see plaintext.
type CreateUserInput struct {
	UserID       string
	Email        string
	PasswordHash string
}

// UserProvider is the persistence collaborator the engine scopes account
// data through. Implementations map these calls onto their record store;
// the engine imposes no schema beyond UserRecord.
//
// Lookup misses must be reported as [ErrUserNotFound] and duplicate
// registrations as [ErrUserExists] so the engine can fold provider errors
// into its own taxonomy.
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdateOnboarding(ctx context.Context, userID string, completed bool) (UserRecord, error)
}
