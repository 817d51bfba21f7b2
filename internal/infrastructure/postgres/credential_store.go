package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
	repo "github.com/oksasatya/go-jwt-identity/internal/domain/repository"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
)

// Constraint names from db/migrations used to classify unique violations.
const (
	uniqueUserEmail    = "users_normalized_email_key"
	uniqueUserName     = "users_normalized_user_name_key"
	uniqueRoleName     = "roles_normalized_name_key"
	pgUniqueViolation  = "23505"
	pgForeignViolation = "23503"
)

// DBTX is the subset of pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type CredentialStore struct {
	db     DBTX
	policy helpers.PasswordPolicy
}

func NewCredentialStore(db DBTX, policy helpers.PasswordPolicy) *CredentialStore {
	return &CredentialStore{db: db, policy: policy}
}

const selectUser = `
	SELECT id::text, user_name, normalized_user_name, email, normalized_email,
	       first_name, last_name, password_hash, created_at, updated_at
	FROM users
`

func (r *CredentialStore) findOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, selectUser+where, arg)
	if err := row.Scan(&u.ID, &u.UserName, &u.NormalizedUserName, &u.Email, &u.NormalizedEmail,
		&u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *CredentialStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "WHERE normalized_email = $1", entity.Normalize(email))
}

func (r *CredentialStore) FindByUserName(ctx context.Context, userName string) (*entity.User, error) {
	return r.findOne(ctx, "WHERE normalized_user_name = $1", entity.Normalize(userName))
}

func (r *CredentialStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if !isUUID(id) {
		return nil, repo.ErrNotFound
	}
	return r.findOne(ctx, "WHERE id = $1", id)
}

func (r *CredentialStore) CreateUser(ctx context.Context, u *entity.User, password string) error {
	u.NormalizedUserName = entity.Normalize(u.UserName)
	u.NormalizedEmail = entity.Normalize(u.Email)

	errs := helpers.ValidateUserFields(u)
	errs = append(errs, r.policy.Validate(password)...)
	if len(errs) > 0 {
		return errs
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO users (user_name, normalized_user_name, email, normalized_email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at, updated_at
	`, u.UserName, u.NormalizedUserName, u.Email, u.NormalizedEmail, u.FirstName, u.LastName, hash)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			switch pgErr.ConstraintName {
			case uniqueUserEmail:
				return entity.IdentityErrors{helpers.DuplicateEmailError(u.Email)}
			case uniqueUserName:
				return entity.IdentityErrors{helpers.DuplicateUserNameError(u.UserName)}
			}
		}
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (r *CredentialStore) CheckPassword(_ context.Context, u *entity.User, password string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return helpers.CompareHashAndPassword(u.PasswordHash, password)
}

func (r *CredentialStore) GetClaims(ctx context.Context, u *entity.User) ([]entity.Claim, error) {
	rows, err := r.db.Query(ctx, `
		SELECT claim_type, claim_value
		FROM user_claims
		WHERE user_id = $1
		ORDER BY id
	`, u.ID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Claim, error) {
		var c entity.Claim
		err := row.Scan(&c.Type, &c.Value)
		return c, err
	})
}

func (r *CredentialStore) AddClaim(ctx context.Context, u *entity.User, claim entity.Claim) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_claims (user_id, claim_type, claim_value)
		VALUES ($1, $2, $3)
	`, u.ID, claim.Type, claim.Value)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignViolation {
		return repo.ErrNotFound
	}
	return err
}

func (r *CredentialStore) GetRoles(ctx context.Context, u *entity.User) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY ur.assigned_at, r.name
	`, u.ID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *CredentialStore) RoleExists(ctx context.Context, role string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roles WHERE normalized_name = $1)`,
		entity.Normalize(role)).Scan(&ok)
	return ok, err
}

func (r *CredentialStore) IsInRole(ctx context.Context, u *entity.User, role string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1 AND r.normalized_name = $2
		)
	`, u.ID, entity.Normalize(role)).Scan(&ok)
	return ok, err
}

// AddToRole relies on the (user_id, role_id) primary key; a conflicting
// insert affects no rows and is reported as UserAlreadyInRole.
func (r *CredentialStore) AddToRole(ctx context.Context, u *entity.User, role string) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE normalized_name = $2
		ON CONFLICT DO NOTHING
	`, u.ID, entity.Normalize(role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignViolation {
			return fmt.Errorf("user %s: %w", u.ID, repo.ErrNotFound)
		}
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	exists, err := r.RoleExists(ctx, role)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("role %q: %w", role, repo.ErrNotFound)
	}
	return entity.IdentityErrors{helpers.UserAlreadyInRoleError(role)}
}

func (r *CredentialStore) CreateRole(ctx context.Context, role string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO roles (name, normalized_name)
		VALUES ($1, $2)
	`, role, entity.Normalize(role))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == uniqueRoleName {
		return entity.IdentityErrors{helpers.DuplicateRoleNameError(role)}
	}
	return err
}

// isUUID keeps malformed ids from reaching Postgres as a cast error.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

var _ repo.CredentialStore = (*CredentialStore)(nil)
