package helpers

import (
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordPolicy describes the rules a new password must satisfy.
type PasswordPolicy struct {
	RequiredLength         int
	RequireNonAlphanumeric bool
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
}

// DefaultPasswordPolicy requires 6+ characters with a symbol, a digit,
// a lower-case and an upper-case letter.
var DefaultPasswordPolicy = PasswordPolicy{
	RequiredLength:         6,
	RequireNonAlphanumeric: true,
	RequireDigit:           true,
	RequireLowercase:       true,
	RequireUppercase:       true,
}

// Validate returns one IdentityError per violated rule, or nil.
func (p PasswordPolicy) Validate(password string) entity.IdentityErrors {
	var errs entity.IdentityErrors
	if len([]rune(password)) < p.RequiredLength {
		errs = append(errs, entity.IdentityError{
			Code:        entity.CodePasswordTooShort,
			Description: "Passwords must be at least " + strconv.Itoa(p.RequiredLength) + " characters.",
		})
	}

	if len(password) > MaxPasswordBytes {
		errs = append(errs, entity.IdentityError{
			Code:        entity.CodePasswordTooLong,
			Description: "Passwords must be at most " + strconv.Itoa(MaxPasswordBytes) + " bytes.",
		})
	}

	var hasSymbol, hasDigit, hasLower, hasUpper bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		default:
			hasSymbol = true
		}
	}

	if p.RequireNonAlphanumeric && !hasSymbol {
		errs = append(errs, entity.IdentityError{
			Code:        entity.CodePasswordRequiresNonAlphanumeric,
			Description: "Passwords must have at least one non alphanumeric character.",
		})
	}
	if p.RequireDigit && !hasDigit {
		errs = append(errs, entity.IdentityError{
			Code:        entity.CodePasswordRequiresDigit,
			Description: "Passwords must have at least one digit ('0'-'9').",
		})
	}
	if p.RequireLowercase && !hasLower {
		errs = append(errs, entity.IdentityError{
			Code:        entity.CodePasswordRequiresLower,
			Description: "Passwords must have at least one lowercase ('a'-'z').",
		})
	}
	if p.RequireUppercase && !hasUpper {
		errs = append(errs, entity.IdentityError{
			Code:        entity.CodePasswordRequiresUpper,
			Description: "Passwords must have at least one uppercase ('A'-'Z').",
		})
	}
	return errs
}
