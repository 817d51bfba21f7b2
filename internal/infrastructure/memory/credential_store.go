package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
	repo "github.com/oksasatya/go-jwt-identity/internal/domain/repository"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
)

// CredentialStore keeps users, roles and claims in process memory.
// All mutations happen under one lock, so uniqueness checks and inserts are atomic.
type CredentialStore struct {
	mu sync.RWMutex

	policy helpers.PasswordPolicy
	now    func() time.Time

	users   map[string]*entity.User // by id
	byEmail map[string]string       // normalized email -> id
	byName  map[string]string       // normalized user name -> id
	roles   map[string]*entity.Role // normalized role name
	members map[string][]string     // user id -> normalized role names, assignment order
	claims  map[string][]entity.Claim
}

// NewCredentialStore returns a store seeded with the User and Admin roles.
func NewCredentialStore(policy helpers.PasswordPolicy) *CredentialStore {
	s := &CredentialStore{
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
		users:   map[string]*entity.User{},
		byEmail: map[string]string{},
		byName:  map[string]string{},
		roles:   map[string]*entity.Role{},
		members: map[string][]string{},
		claims:  map[string][]entity.Claim{},
	}
	for _, r := range entity.SeedRoles {
		s.putRole(r)
	}
	return s
}

func (s *CredentialStore) putRole(name string) {
	now := s.now()
	s.roles[entity.Normalize(name)] = &entity.Role{
		ID:             uuid.NewString(),
		Name:           name,
		NormalizedName: entity.Normalize(name),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *CredentialStore) find(index map[string]string, key string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := index[entity.Normalize(key)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *CredentialStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return s.find(s.byEmail, email)
}

func (s *CredentialStore) FindByUserName(_ context.Context, userName string) (*entity.User, error) {
	return s.find(s.byName, userName)
}

func (s *CredentialStore) FindByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *CredentialStore) CreateUser(_ context.Context, u *entity.User, password string) error {
	u.NormalizedUserName = entity.Normalize(u.UserName)
	u.NormalizedEmail = entity.Normalize(u.Email)

	errs := helpers.ValidateUserFields(u)
	errs = append(errs, s.policy.Validate(password)...)
	if len(errs) > 0 {
		return errs
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byName[u.NormalizedUserName]; taken {
		errs = append(errs, helpers.DuplicateUserNameError(u.UserName))
	}
	if _, taken := s.byEmail[u.NormalizedEmail]; taken {
		errs = append(errs, helpers.DuplicateEmailError(u.Email))
	}
	if len(errs) > 0 {
		return errs
	}

	now := s.now()
	u.ID = uuid.NewString()
	u.PasswordHash = hash
	u.CreatedAt = now
	u.UpdatedAt = now

	cp := *u
	s.users[u.ID] = &cp
	s.byName[u.NormalizedUserName] = u.ID
	s.byEmail[u.NormalizedEmail] = u.ID
	return nil
}

func (s *CredentialStore) CheckPassword(_ context.Context, u *entity.User, password string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return helpers.CompareHashAndPassword(u.PasswordHash, password)
}

func (s *CredentialStore) GetClaims(_ context.Context, u *entity.User) ([]entity.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.claims[u.ID]), nil
}

func (s *CredentialStore) AddClaim(_ context.Context, u *entity.User, claim entity.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	s.claims[u.ID] = append(s.claims[u.ID], claim)
	return nil
}

func (s *CredentialStore) GetRoles(_ context.Context, u *entity.User) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	held := s.members[u.ID]
	out := make([]string, 0, len(held))
	for _, n := range held {
		out = append(out, s.roles[n].Name)
	}
	return out, nil
}

func (s *CredentialStore) RoleExists(_ context.Context, role string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roles[entity.Normalize(role)]
	return ok, nil
}

func (s *CredentialStore) IsInRole(_ context.Context, u *entity.User, role string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.members[u.ID], entity.Normalize(role)), nil
}

func (s *CredentialStore) AddToRole(_ context.Context, u *entity.User, role string) error {
	norm := entity.Normalize(role)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, repo.ErrNotFound)
	}
	r, ok := s.roles[norm]
	if !ok {
		return fmt.Errorf("role %q: %w", role, repo.ErrNotFound)
	}
	if slices.Contains(s.members[u.ID], norm) {
		return entity.IdentityErrors{helpers.UserAlreadyInRoleError(r.Name)}
	}
	s.members[u.ID] = append(s.members[u.ID], norm)
	return nil
}

func (s *CredentialStore) CreateRole(_ context.Context, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[entity.Normalize(role)]; ok {
		return entity.IdentityErrors{helpers.DuplicateRoleNameError(role)}
	}
	s.putRole(role)
	return nil
}

var _ repo.CredentialStore = (*CredentialStore)(nil)
