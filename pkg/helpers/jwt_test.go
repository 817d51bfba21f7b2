package helpers

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
)

var (
	testKey1 = []byte("k1-0123456789abcdef0123456789abcdef")
	testKey2 = []byte("k2-0123456789abcdef0123456789abcdef")
	testNow  = time.Unix(1800000000, 0).UTC()
)

func aliceClaims() []entity.Claim {
	return []entity.Claim{
		{Type: entity.ClaimSubject, Value: "alice"},
		{Type: entity.ClaimTokenID, Value: "j1"},
		{Type: entity.ClaimEmail, Value: "a@x.io"},
		{Type: entity.ClaimUserID, Value: "u-1"},
		{Type: entity.ClaimRoles, Value: "User"},
		{Type: entity.ClaimRoles, Value: "Admin"},
	}
}

func mustSign(t *testing.T, key []byte, issuer, audience string, days float64) *Token {
	t.Helper()
	tok, err := SignToken(aliceClaims(), issuer, audience, key, days, testNow)
	require.NoError(t, err)
	return tok
}

func requireKind(t *testing.T, err error, want TokenErrorKind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidToken))
	kind, ok := TokenKind(err)
	require.True(t, ok)
	assert.Equal(t, want, kind)
}

func TestSignToken_ShapeAndExpiry(t *testing.T) {
	tok := mustSign(t, testKey1, "SecureApi", "SecureApiUser", 30)

	assert.Len(t, strings.Split(tok.Raw, "."), 3)
	assert.Equal(t, "j1", tok.ID)
	assert.Equal(t, "alice", tok.Subject)
	assert.Equal(t, testNow.Add(30*24*time.Hour), tok.ExpiresOn)
	assert.Equal(t, time.UTC, tok.ExpiresOn.Location())
}

func TestSignToken_FractionalDaysTruncatesToSecond(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 500_000_000, time.UTC)
	tok, err := SignToken(aliceClaims(), "iss", "aud", testKey1, 1.5, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), tok.ExpiresOn)
}

func TestSignToken_EmptyKey(t *testing.T) {
	_, err := SignToken(aliceClaims(), "iss", "aud", nil, 1, testNow)
	assert.Error(t, err)
}

func TestSignToken_PayloadLayout(t *testing.T) {
	claims := []entity.Claim{
		{Type: entity.ClaimSubject, Value: "alice"},
		{Type: entity.ClaimTokenID, Value: "j1"},
		{Type: entity.ClaimRoles, Value: "User"},
		{Type: entity.ClaimRoles, Value: "Admin"},
	}
	tok, err := SignToken(claims, "SecureApi", "SecureApiUser", testKey1, 1, testNow)
	require.NoError(t, err)

	payload, err := base64.RawURLEncoding.DecodeString(strings.Split(tok.Raw, ".")[1])
	require.NoError(t, err)
	assert.Equal(t,
		`{"sub":"alice","jti":"j1","roles":["User","Admin"],"exp":1800086400,"iss":"SecureApi","aud":"SecureApiUser"}`,
		string(payload))
}

func TestValidateToken_RoundTripKeepsOrderAndDuplicates(t *testing.T) {
	tok := mustSign(t, testKey1, "SecureApi", "SecureApiUser", 1)

	set, err := ValidateToken(tok.Raw, testKey1, "SecureApi", "SecureApiUser", DefaultValidationOptions(), testNow)
	require.NoError(t, err)
	assert.Equal(t, aliceClaims(), set.Claims)
	assert.Equal(t, "SecureApi", set.Issuer)
	assert.Equal(t, []string{"SecureApiUser"}, set.Audience)
	assert.Equal(t, tok.ExpiresOn, set.ExpiresAt)
}

func TestValidateToken_WrongKey(t *testing.T) {
	tok := mustSign(t, testKey1, "iss", "aud", 1)

	_, err := ValidateToken(tok.Raw, testKey2, "iss", "aud", DefaultValidationOptions(), testNow)
	requireKind(t, err, TokenErrorSignature)

	opts := DefaultValidationOptions()
	opts.ValidateSigningKey = false
	_, err = ValidateToken(tok.Raw, testKey2, "iss", "aud", opts, testNow)
	assert.NoError(t, err)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	tok := mustSign(t, testKey1, "I1", "aud", 1)

	_, err := ValidateToken(tok.Raw, testKey1, "I2", "aud", DefaultValidationOptions(), testNow)
	requireKind(t, err, TokenErrorIssuer)

	opts := DefaultValidationOptions()
	opts.ValidateIssuer = false
	_, err = ValidateToken(tok.Raw, testKey1, "I2", "aud", opts, testNow)
	assert.NoError(t, err)
}

func TestValidateToken_WrongAudience(t *testing.T) {
	tok := mustSign(t, testKey1, "iss", "A1", 1)

	_, err := ValidateToken(tok.Raw, testKey1, "iss", "A2", DefaultValidationOptions(), testNow)
	requireKind(t, err, TokenErrorAudience)

	opts := DefaultValidationOptions()
	opts.ValidateAudience = false
	_, err = ValidateToken(tok.Raw, testKey1, "iss", "A2", opts, testNow)
	assert.NoError(t, err)
}

func TestValidateToken_SignatureCheckedBeforeIssuer(t *testing.T) {
	tok := mustSign(t, testKey1, "I1", "A1", 1)

	_, err := ValidateToken(tok.Raw, testKey2, "I2", "A2", DefaultValidationOptions(), testNow)
	requireKind(t, err, TokenErrorSignature)
}

func TestValidateToken_NonPositiveDurationAlwaysExpired(t *testing.T) {
	for _, days := range []float64{0, -1, -0.5} {
		tok := mustSign(t, testKey1, "iss", "aud", days)
		_, err := ValidateToken(tok.Raw, testKey1, "iss", "aud", DefaultValidationOptions(), testNow)
		requireKind(t, err, TokenErrorExpired)
	}
}

func TestValidateToken_ClockSkew(t *testing.T) {
	tok := mustSign(t, testKey1, "iss", "aud", 1)
	late := tok.ExpiresOn.Add(30 * time.Second)

	_, err := ValidateToken(tok.Raw, testKey1, "iss", "aud", DefaultValidationOptions(), late)
	requireKind(t, err, TokenErrorExpired)

	opts := DefaultValidationOptions()
	opts.ClockSkew = time.Minute
	_, err = ValidateToken(tok.Raw, testKey1, "iss", "aud", opts, late)
	assert.NoError(t, err)

	opts = DefaultValidationOptions()
	opts.ValidateLifetime = false
	_, err = ValidateToken(tok.Raw, testKey1, "iss", "aud", opts, late)
	assert.NoError(t, err)
}

func TestValidateToken_Malformed(t *testing.T) {
	_, err := ValidateToken("garbage", testKey1, "iss", "aud", DefaultValidationOptions(), testNow)
	requireKind(t, err, TokenErrorMalformed)

	opts := DefaultValidationOptions()
	opts.ValidateSigningKey = false
	_, err = ValidateToken("garbage", testKey1, "iss", "aud", opts, testNow)
	requireKind(t, err, TokenErrorMalformed)
}

func TestValidateToken_RejectsUnsignedAlgorithm(t *testing.T) {
	set := &ClaimSet{
		Claims:    aliceClaims(),
		Issuer:    "iss",
		Audience:  []string{"aud"},
		ExpiresAt: testNow.Add(time.Hour),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, set).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(raw, testKey1, "iss", "aud", DefaultValidationOptions(), testNow)
	requireKind(t, err, TokenErrorSignature)
}

func TestValidateToken_MissingExpiry(t *testing.T) {
	set := &ClaimSet{Claims: aliceClaims(), Issuer: "iss", Audience: []string{"aud"}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, set).SignedString(testKey1)
	require.NoError(t, err)

	_, err = ValidateToken(raw, testKey1, "iss", "aud", DefaultValidationOptions(), testNow)
	requireKind(t, err, TokenErrorExpired)
}

func TestJWTManager_SignValidate(t *testing.T) {
	m := NewJWTManager(string(testKey1), "SecureApi", "SecureApiUser", 30, DefaultValidationOptions()).
		WithClock(func() time.Time { return testNow })

	tok, err := m.Sign(aliceClaims())
	require.NoError(t, err)
	assert.Equal(t, "SecureApi", tok.Issuer)
	assert.Equal(t, "SecureApiUser", tok.Audience)
	assert.Equal(t, testNow.Add(30*24*time.Hour), tok.ExpiresOn)

	set, err := m.Validate(tok.Raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Admin"}, entity.ClaimValues(set.Claims, entity.ClaimRoles))

	later := m.WithClock(func() time.Time { return testNow.Add(31 * 24 * time.Hour) })
	_, err = later.Validate(tok.Raw)
	requireKind(t, err, TokenErrorExpired)
}
