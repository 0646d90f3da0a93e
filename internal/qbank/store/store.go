package store

import (
	"context"
	"errors"
	"time"

	"github.com/qbankhq/qbank/internal/qbank/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable, and to make
// it obvious at call sites whether an operation runs inside a transaction.
type Store interface {
	Companies() Companies
	Users() Users
	Invitations() Invitations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Companies interface {
	// CreateCompany inserts a new company (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the name is taken.
	CreateCompany(ctx context.Context, c domain.Company) error

	// GetCompanyByID returns a company by id.
	GetCompanyByID(ctx context.Context, id string) (domain.Company, error)
}

type Users interface {
	// CreateUser inserts a new user. Returns ErrAlreadyExists when the
	// subject or the (company, email) pair is already provisioned.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserBySubject returns a user by identity provider subject id.
	GetUserBySubject(ctx context.Context, subject string) (domain.User, error)
}

type Invitations interface {
	// CreateInvitation writes a new invitation. Returns ErrAlreadyExists on
	// a token collision.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetActiveInvitationByToken returns a not-used, not-expired invitation.
	// Used, expired and absent tokens are all ErrNotFound.
	GetActiveInvitationByToken(ctx context.Context, token string, now time.Time) (domain.Invitation, error)

	// MarkInvitationUsed flips used=1 and records the redeeming user, but
	// only if the invitation is still unused. Returns ErrNotFound when a
	// concurrent redeem got there first.
	MarkInvitationUsed(ctx context.Context, invitationID string, usedByUserID string) error

	// DeleteExpiredInvitations is housekeeping.
	DeleteExpiredInvitations(ctx context.Context, now time.Time) error
}
