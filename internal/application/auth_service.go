package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
	repo "github.com/oksasatya/go-jwt-identity/internal/domain/repository"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
)

// Messages returned to callers verbatim.
const (
	MsgEmailRegistered    = "Email is already registered"
	MsgUserNameRegistered = "UserName is already registered"
	MsgBadCredentials     = "Email or Password is incorrect!"
)

var (
	ErrInvalidUserOrRole = errors.New("Invalid UserId or Role")
	ErrAlreadyInRole     = errors.New("User already assign to this Role.")
	ErrSomethingWrong    = errors.New("Something went Wrong")
)

// AuthModel is the outcome of Register and GetToken. When IsAuthenticated is
// false, Message says why.
type AuthModel struct {
	Message         string    `json:"message,omitempty"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	UserName        string    `json:"username,omitempty"`
	Email           string    `json:"email,omitempty"`
	Roles           []string  `json:"roles,omitempty"`
	Token           string    `json:"token,omitempty"`
	ExpiresOn       time.Time `json:"expiresOn,omitzero"`
}

type RegisterInput struct {
	UserName  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthService runs the registration, authentication and role assignment flows.
type AuthService struct {
	Store  repo.CredentialStore
	Claims *ClaimsAssembler
	JWT    *helpers.JWTManager
	Events EventPublisher
	Logger *logrus.Logger
}

// NewAuthService wires the flows. events may be nil, in which case nothing is published.
func NewAuthService(store repo.CredentialStore, jwt *helpers.JWTManager, events EventPublisher, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		Store:  store,
		Claims: NewClaimsAssembler(store),
		JWT:    jwt,
		Events: events,
		Logger: logger,
	}
}

// Register creates a user, puts it in the User role and signs its first token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthModel, error) {
	if _, err := s.Store.FindByEmail(ctx, in.Email); err == nil {
		stats.Add("register_rejected", 1)
		return &AuthModel{Message: MsgEmailRegistered}, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("find by email: %w", err)
	}
	if _, err := s.Store.FindByUserName(ctx, in.UserName); err == nil {
		stats.Add("register_rejected", 1)
		return &AuthModel{Message: MsgUserNameRegistered}, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("find by user name: %w", err)
	}

	u := &entity.User{
		UserName:  in.UserName,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.Store.CreateUser(ctx, u, in.Password); err != nil {
		var ierrs entity.IdentityErrors
		if errors.As(err, &ierrs) {
			stats.Add("register_rejected", 1)
			return &AuthModel{Message: ierrs.Join(", ")}, nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := s.Store.AddToRole(ctx, u, entity.RoleUser); err != nil {
		return nil, fmt.Errorf("assign default role: %w", err)
	}

	tok, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	stats.Add("register_ok", 1)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "user_name": u.UserName}).Info("user registered")

	s.publish(ctx, IdentityEvent{
		Type:      EventUserRegistered,
		UserID:    u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})

	return &AuthModel{
		IsAuthenticated: true,
		UserName:        u.UserName,
		Email:           u.Email,
		Roles:           []string{entity.RoleUser},
		Token:           tok.Raw,
		ExpiresOn:       tok.ExpiresOn,
	}, nil
}

// GetToken verifies credentials and signs a token carrying the user's current roles.
// An unknown email and a wrong password produce the same message.
func (s *AuthService) GetToken(ctx context.Context, email, password string) (*AuthModel, error) {
	u, err := s.Store.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		stats.Add("token_denied", 1)
		return &AuthModel{Message: MsgBadCredentials}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by email: %w", err)
	}
	if !s.Store.CheckPassword(ctx, u, password) {
		stats.Add("token_denied", 1)
		return &AuthModel{Message: MsgBadCredentials}, nil
	}

	tok, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	roles, err := s.Store.GetRoles(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if roles == nil {
		roles = []string{}
	}
	stats.Add("token_issued", 1)

	return &AuthModel{
		IsAuthenticated: true,
		UserName:        u.UserName,
		Email:           u.Email,
		Roles:           roles,
		Token:           tok.Raw,
		ExpiresOn:       tok.ExpiresOn,
	}, nil
}

// AddRole puts the user in an existing role. It returns nil on success or one
// of ErrInvalidUserOrRole, ErrAlreadyInRole, ErrSomethingWrong.
func (s *AuthService) AddRole(ctx context.Context, userID, role string) error {
	u, err := s.Store.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrInvalidUserOrRole
	}
	if err != nil {
		return fmt.Errorf("find by id: %w", err)
	}
	exists, err := s.Store.RoleExists(ctx, role)
	if err != nil {
		return fmt.Errorf("role exists: %w", err)
	}
	if !exists {
		return ErrInvalidUserOrRole
	}

	in, err := s.Store.IsInRole(ctx, u, role)
	if err != nil {
		return fmt.Errorf("is in role: %w", err)
	}
	if in {
		return ErrAlreadyInRole
	}

	if err := s.Store.AddToRole(ctx, u, role); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "role": role}).Error("add to role failed")
		return ErrSomethingWrong
	}
	stats.Add("role_assigned", 1)

	s.publish(ctx, IdentityEvent{
		Type:     EventRoleAssigned,
		UserID:   u.ID,
		UserName: u.UserName,
		Email:    u.Email,
		Role:     role,
	})
	return nil
}

func (s *AuthService) issue(ctx context.Context, u *entity.User) (*helpers.Token, error) {
	claims, err := s.Claims.Build(ctx, u)
	if err != nil {
		return nil, err
	}
	tok, err := s.JWT.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

// publish is best-effort: a broker failure never fails the flow.
func (s *AuthService) publish(ctx context.Context, ev IdentityEvent) {
	if s.Events == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	if err := s.Events.PublishJSON(ctx, ev); err != nil {
		s.Logger.WithError(err).WithField("event", ev.Type).Warn("publish identity event failed")
	}
}
