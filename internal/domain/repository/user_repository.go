package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
)

// ErrNotFound is returned by the Find* lookups when no user matches.
var ErrNotFound = errors.New("not found")

// CredentialStore defines the user, role and password capabilities the
// identity flows depend on.
//
// Implementations must enforce uniqueness of email and user name themselves
// (unique index or equivalent): the flows check before inserting, which is
// not atomic on its own.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUserName(ctx context.Context, userName string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// CreateUser validates the password, hashes it and persists u, filling in
	// ID and timestamps. Validation failures come back as entity.IdentityErrors.
	CreateUser(ctx context.Context, u *entity.User, password string) error
	CheckPassword(ctx context.Context, u *entity.User, password string) bool

	GetClaims(ctx context.Context, u *entity.User) ([]entity.Claim, error)
	AddClaim(ctx context.Context, u *entity.User, claim entity.Claim) error

	GetRoles(ctx context.Context, u *entity.User) ([]string, error)
	RoleExists(ctx context.Context, role string) (bool, error)
	IsInRole(ctx context.Context, u *entity.User, role string) (bool, error)
	AddToRole(ctx context.Context, u *entity.User, role string) error
	CreateRole(ctx context.Context, role string) error
}
