package helpers

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
)

// ErrInvalidToken is matched by every TokenValidationError, for callers that
// only need to know a token was rejected.
var ErrInvalidToken = errors.New("invalid token")

// TokenErrorKind names the validation check that rejected a token.
type TokenErrorKind string

const (
	TokenErrorMalformed TokenErrorKind = "malformed"
	TokenErrorSignature TokenErrorKind = "signature"
	TokenErrorIssuer    TokenErrorKind = "issuer"
	TokenErrorAudience  TokenErrorKind = "audience"
	TokenErrorExpired   TokenErrorKind = "expiry"
)

// TokenValidationError reports the first failing check.
type TokenValidationError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenValidationError) Error() string {
	if e.Err == nil {
		return "token " + string(e.Kind) + " check failed"
	}
	return "token " + string(e.Kind) + " check failed: " + e.Err.Error()
}

func (e *TokenValidationError) Unwrap() error { return e.Err }

func (e *TokenValidationError) Is(target error) bool { return target == ErrInvalidToken }

// TokenKind extracts the failing check from a validation error.
func TokenKind(err error) (TokenErrorKind, bool) {
	var tve *TokenValidationError
	if errors.As(err, &tve) {
		return tve.Kind, true
	}
	return "", false
}

// ValidationOptions toggles the checks applied by ValidateToken. The zero
// value disables everything; use DefaultValidationOptions.
type ValidationOptions struct {
	ValidateSigningKey bool
	ValidateIssuer     bool
	ValidateAudience   bool
	ValidateLifetime   bool
	ClockSkew          time.Duration
}

// DefaultValidationOptions enables all four checks with no clock skew.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		ValidateSigningKey: true,
		ValidateIssuer:     true,
		ValidateAudience:   true,
		ValidateLifetime:   true,
	}
}

// Token is a signed, compact JWT together with the values it was built from.
type Token struct {
	Raw       string
	ID        string
	Subject   string
	Claims    []entity.Claim
	Issuer    string
	Audience  string
	ExpiresOn time.Time
}

// SignToken signs claims with HS256. The token expires durationDays after now
// (fractional days allowed); ExpiresOn is truncated to the second like the
// exp member it mirrors.
func SignToken(claims []entity.Claim, issuer, audience string, key []byte, durationDays float64, now time.Time) (*Token, error) {
	if len(key) == 0 {
		return nil, errors.New("signing key is empty")
	}
	lifetime := time.Duration(durationDays * float64(24*time.Hour))
	exp := time.Unix(now.Add(lifetime).Unix(), 0).UTC()

	set := &ClaimSet{
		Claims:    slices.Clone(claims),
		Issuer:    issuer,
		ExpiresAt: exp,
	}
	if audience != "" {
		set.Audience = []string{audience}
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, set).SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	id, _ := entity.FirstClaim(set.Claims, entity.ClaimTokenID)
	sub, _ := entity.FirstClaim(set.Claims, entity.ClaimSubject)
	return &Token{
		Raw:       raw,
		ID:        id,
		Subject:   sub,
		Claims:    set.Claims,
		Issuer:    issuer,
		Audience:  audience,
		ExpiresOn: exp,
	}, nil
}

// ValidateToken decodes tokenStr and runs the enabled checks in order:
// signature, issuer, audience, lifetime. It stops at the first failure.
func ValidateToken(tokenStr string, key []byte, issuer, audience string, opts ValidationOptions, now time.Time) (*ClaimSet, error) {
	set := &ClaimSet{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	if opts.ValidateSigningKey {
		_, err := parser.ParseWithClaims(tokenStr, set, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return key, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenMalformed) {
				return nil, &TokenValidationError{Kind: TokenErrorMalformed, Err: err}
			}
			return nil, &TokenValidationError{Kind: TokenErrorSignature, Err: err}
		}
	} else if _, _, err := parser.ParseUnverified(tokenStr, set); err != nil {
		return nil, &TokenValidationError{Kind: TokenErrorMalformed, Err: err}
	}

	if opts.ValidateIssuer && set.Issuer != issuer {
		return nil, &TokenValidationError{Kind: TokenErrorIssuer, Err: fmt.Errorf("issuer %q not accepted", set.Issuer)}
	}
	if opts.ValidateAudience && !slices.Contains(set.Audience, audience) {
		return nil, &TokenValidationError{Kind: TokenErrorAudience, Err: fmt.Errorf("audience %v not accepted", set.Audience)}
	}
	if opts.ValidateLifetime {
		if set.ExpiresAt.IsZero() {
			return nil, &TokenValidationError{Kind: TokenErrorExpired, Err: errors.New("token has no expiration")}
		}
		if !now.Before(set.ExpiresAt.Add(opts.ClockSkew)) {
			return nil, &TokenValidationError{Kind: TokenErrorExpired, Err: jwt.ErrTokenExpired}
		}
	}
	return set, nil
}

// JWTManager signs and validates tokens with one fixed key, issuer, audience
// and lifetime. It is built once at startup and never mutated.
type JWTManager struct {
	key            []byte
	issuer         string
	audience       string
	durationInDays float64
	opts           ValidationOptions
	now            func() time.Time
}

// NewJWTManager builds a manager. Expiry is computed from UTC wall-clock time.
func NewJWTManager(key, issuer, audience string, durationInDays float64, opts ValidationOptions) *JWTManager {
	return &JWTManager{
		key:            []byte(key),
		issuer:         issuer,
		audience:       audience,
		durationInDays: durationInDays,
		opts:           opts,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of m that reads the current time from now.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *JWTManager) Issuer() string   { return m.issuer }
func (m *JWTManager) Audience() string { return m.audience }

// Sign issues a token for claims using the configured contract.
func (m *JWTManager) Sign(claims []entity.Claim) (*Token, error) {
	return SignToken(claims, m.issuer, m.audience, m.key, m.durationInDays, m.now())
}

// Validate checks tokenStr against the configured key, issuer and audience.
func (m *JWTManager) Validate(tokenStr string) (*ClaimSet, error) {
	return ValidateToken(tokenStr, m.key, m.issuer, m.audience, m.opts, m.now())
}
