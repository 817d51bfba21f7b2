package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
	repo "github.com/oksasatya/go-jwt-identity/internal/domain/repository"
)

// ClaimsAssembler builds the claim set embedded in every issued token.
type ClaimsAssembler struct {
	Store repo.CredentialStore
	NewID func() string
}

func NewClaimsAssembler(store repo.CredentialStore) *ClaimsAssembler {
	return &ClaimsAssembler{Store: store, NewID: uuid.NewString}
}

// Build returns sub, jti, email and uid, then the user's stored claims, then
// one roles claim per role held. Every call yields a fresh jti.
func (a *ClaimsAssembler) Build(ctx context.Context, u *entity.User) ([]entity.Claim, error) {
	stored, err := a.Store.GetClaims(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}
	roles, err := a.Store.GetRoles(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	claims := make([]entity.Claim, 0, 4+len(stored)+len(roles))
	claims = append(claims,
		entity.Claim{Type: entity.ClaimSubject, Value: u.UserName},
		entity.Claim{Type: entity.ClaimTokenID, Value: a.NewID()},
		entity.Claim{Type: entity.ClaimEmail, Value: u.Email},
		entity.Claim{Type: entity.ClaimUserID, Value: u.ID},
	)
	claims = append(claims, stored...)
	for _, r := range roles {
		claims = append(claims, entity.Claim{Type: entity.ClaimRoles, Value: r})
	}
	return claims, nil
}
