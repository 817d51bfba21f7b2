package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", hash)
	assert.True(t, CompareHashAndPassword(hash, "Passw0rd!"))
	assert.False(t, CompareHashAndPassword(hash, "passw0rd!"))
	assert.False(t, CompareHashAndPassword("not-a-hash", "Passw0rd!"))
}

func TestPasswordPolicy_Accepts(t *testing.T) {
	assert.Empty(t, DefaultPasswordPolicy.Validate("Passw0rd!"))
}

func TestPasswordPolicy_ReportsEveryViolationInOrder(t *testing.T) {
	errs := DefaultPasswordPolicy.Validate("abc")
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{
		entity.CodePasswordTooShort,
		entity.CodePasswordRequiresNonAlphanumeric,
		entity.CodePasswordRequiresDigit,
		entity.CodePasswordRequiresUpper,
	}, codes)
	assert.Equal(t, "Passwords must be at least 6 characters.", errs[0].Description)
}

func TestPasswordPolicy_Relaxed(t *testing.T) {
	p := PasswordPolicy{RequiredLength: 4}
	assert.Empty(t, p.Validate("abcd"))
	assert.Len(t, p.Validate("abc"), 1)
}

func TestPasswordPolicy_TooLongForBcrypt(t *testing.T) {
	long := "Aa1!" + strings.Repeat("x", 80)
	errs := DefaultPasswordPolicy.Validate(long)
	require.Len(t, errs, 1)
	assert.Equal(t, entity.CodePasswordTooLong, errs[0].Code)

	atLimit := "Aa1!" + strings.Repeat("x", MaxPasswordBytes-4)
	assert.Empty(t, DefaultPasswordPolicy.Validate(atLimit))
	_, err := HashPassword(atLimit)
	assert.NoError(t, err)
}

func TestPasswordPolicy_ASCIIClasses(t *testing.T) {
	// non-ASCII letters and digits count as symbols only
	codes := func(pw string) []string {
		var out []string
		for _, e := range DefaultPasswordPolicy.Validate(pw) {
			out = append(out, e.Code)
		}
		return out
	}
	assert.Equal(t, []string{entity.CodePasswordRequiresDigit}, codes("Abcdé٣"))
	assert.Equal(t, []string{entity.CodePasswordRequiresLower}, codes("ABC1éé"))
	assert.Equal(t, []string{entity.CodePasswordRequiresUpper}, codes("abc1ÉÉ"))
}
