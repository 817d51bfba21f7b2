package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
	repo "github.com/oksasatya/go-jwt-identity/internal/domain/repository"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
)

func newUser(t *testing.T, s *CredentialStore, name, email string) *entity.User {
	t.Helper()
	u := &entity.User{UserName: name, Email: email, FirstName: "A", LastName: "B"}
	require.NoError(t, s.CreateUser(context.Background(), u, "Passw0rd!"))
	return u
}

func TestCreateAndFind(t *testing.T) {
	s := NewCredentialStore(helpers.DefaultPasswordPolicy)
	ctx := context.Background()
	u := newUser(t, s, "alice", "Alice@X.io")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ALICE@X.IO", u.NormalizedEmail)
	assert.NotEqual(t, "Passw0rd!", u.PasswordHash)

	got, err := s.FindByEmail(ctx, "alice@x.io")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Alice@X.io", got.Email)

	got, err = s.FindByUserName(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, s.CheckPassword(ctx, got, "Passw0rd!"))
	assert.False(t, s.CheckPassword(ctx, got, "wrong"))

	_, err = s.FindByEmail(ctx, "nobody@x.io")
	assert.True(t, errors.Is(err, repo.ErrNotFound))
	_, err = s.FindByID(ctx, "missing")
	assert.True(t, errors.Is(err, repo.ErrNotFound))
}

func TestCreateUser_IdentityErrors(t *testing.T) {
	s := NewCredentialStore(helpers.DefaultPasswordPolicy)
	ctx := context.Background()
	newUser(t, s, "alice", "a@x.io")

	err := s.CreateUser(ctx, &entity.User{UserName: "ALICE", Email: "A@x.io", FirstName: "A", LastName: "B"}, "Passw0rd!")
	var ierrs entity.IdentityErrors
	require.True(t, errors.As(err, &ierrs))
	require.Len(t, ierrs, 2)
	assert.Equal(t, entity.CodeDuplicateUserName, ierrs[0].Code)
	assert.Equal(t, entity.CodeDuplicateEmail, ierrs[1].Code)

	err = s.CreateUser(ctx, &entity.User{UserName: "bob", Email: "b@x.io", FirstName: "Bob", LastName: "B"}, "weak")
	require.True(t, errors.As(err, &ierrs))
	assert.Equal(t, entity.CodePasswordTooShort, ierrs[0].Code)

	_, err = s.FindByUserName(ctx, "bob")
	assert.True(t, errors.Is(err, repo.ErrNotFound))
}

func TestRoles(t *testing.T) {
	s := NewCredentialStore(helpers.DefaultPasswordPolicy)
	ctx := context.Background()
	u := newUser(t, s, "alice", "a@x.io")

	ok, err := s.RoleExists(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = s.RoleExists(ctx, "Ghost")
	assert.False(t, ok)

	require.NoError(t, s.AddToRole(ctx, u, entity.RoleUser))
	require.NoError(t, s.AddToRole(ctx, u, "admin"))

	roles, err := s.GetRoles(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Admin"}, roles)

	in, err := s.IsInRole(ctx, u, "ADMIN")
	require.NoError(t, err)
	assert.True(t, in)

	var ierrs entity.IdentityErrors
	assert.True(t, errors.As(s.AddToRole(ctx, u, "Admin"), &ierrs))
	assert.Equal(t, entity.CodeUserAlreadyInRole, ierrs[0].Code)
	assert.True(t, errors.Is(s.AddToRole(ctx, u, "Ghost"), repo.ErrNotFound))

	require.NoError(t, s.CreateRole(ctx, "Auditor"))
	assert.Error(t, s.CreateRole(ctx, "auditor"))
	require.NoError(t, s.AddToRole(ctx, u, "auditor"))
	roles, _ = s.GetRoles(ctx, u)
	assert.Equal(t, []string{"User", "Admin", "Auditor"}, roles)
}

func TestClaims(t *testing.T) {
	s := NewCredentialStore(helpers.DefaultPasswordPolicy)
	ctx := context.Background()
	u := newUser(t, s, "alice", "a@x.io")

	claims, err := s.GetClaims(ctx, u)
	require.NoError(t, err)
	assert.Empty(t, claims)

	require.NoError(t, s.AddClaim(ctx, u, entity.Claim{Type: "dept", Value: "ops"}))
	require.NoError(t, s.AddClaim(ctx, u, entity.Claim{Type: "dept", Value: "sec"}))
	claims, _ = s.GetClaims(ctx, u)
	assert.Equal(t, []entity.Claim{{Type: "dept", Value: "ops"}, {Type: "dept", Value: "sec"}}, claims)

	assert.True(t, errors.Is(s.AddClaim(ctx, &entity.User{ID: "missing"}, entity.Claim{}), repo.ErrNotFound))
}

func TestCreateUser_ConcurrentDuplicates(t *testing.T) {
	s := NewCredentialStore(helpers.PasswordPolicy{RequiredLength: 1})
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.CreateUser(ctx, &entity.User{UserName: "alice", Email: "a@x.io", FirstName: "A", LastName: "B"}, "p")
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for err := range results {
		if err == nil {
			created++
		}
	}
	assert.Equal(t, 1, created)
}

func TestCreateUser_ColumnLimitsAndPasswordLength(t *testing.T) {
	s := NewCredentialStore(helpers.DefaultPasswordPolicy)
	ctx := context.Background()

	err := s.CreateUser(ctx, &entity.User{
		UserName:  "alice",
		Email:     "a@x.io",
		FirstName: strings.Repeat("a", 200),
	}, "Passw0rd!")
	var ierrs entity.IdentityErrors
	require.True(t, errors.As(err, &ierrs))
	require.Len(t, ierrs, 2)
	assert.Equal(t, entity.CodeInvalidFirstName, ierrs[0].Code)
	assert.Equal(t, entity.CodeInvalidLastName, ierrs[1].Code)

	err = s.CreateUser(ctx, &entity.User{UserName: "alice", Email: "a@x.io", FirstName: "A", LastName: "B"},
		"Aa1!"+strings.Repeat("x", 80))
	require.True(t, errors.As(err, &ierrs))
	assert.Equal(t, entity.CodePasswordTooLong, ierrs[0].Code)

	_, err = s.FindByUserName(ctx, "alice")
	assert.True(t, errors.Is(err, repo.ErrNotFound))
}
