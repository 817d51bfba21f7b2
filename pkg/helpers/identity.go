package helpers

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
)

// AllowedUserNameCharacters is the alphabet a user name may be built from.
const AllowedUserNameCharacters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._@+"

// Column limits of the users table, in characters.
const (
	MaxUserNameLength = 256
	MaxEmailLength    = 256
	MaxNameLength     = 50
)

var emailValidator = validator.New()

// ValidateUserFields checks a new user against the users table: user name
// alphabet, email format, required names and column lengths. Uniqueness is
// left to the store.
func ValidateUserFields(u *entity.User) entity.IdentityErrors {
	var errs entity.IdentityErrors
	if u.UserName == "" || strings.Trim(u.UserName, AllowedUserNameCharacters) != "" {
		errs = append(errs, InvalidUserNameError(u.UserName))
	} else if len(u.UserName) > MaxUserNameLength {
		errs = append(errs, entity.IdentityError{
			Code:        entity.CodeUserNameTooLong,
			Description: "Username must be at most " + strconv.Itoa(MaxUserNameLength) + " characters.",
		})
	}

	switch {
	case u.Email == "" || emailValidator.Var(u.Email, "email") != nil:
		errs = append(errs, entity.IdentityError{
			Code:        entity.CodeInvalidEmail,
			Description: "Email '" + u.Email + "' is invalid.",
		})
	case utf8.RuneCountInString(u.Email) > MaxEmailLength:
		errs = append(errs, entity.IdentityError{
			Code:        entity.CodeEmailTooLong,
			Description: "Email must be at most " + strconv.Itoa(MaxEmailLength) + " characters.",
		})
	}

	if !validName(u.FirstName) {
		errs = append(errs, invalidNameError(entity.CodeInvalidFirstName, "First name"))
	}
	if !validName(u.LastName) {
		errs = append(errs, invalidNameError(entity.CodeInvalidLastName, "Last name"))
	}
	return errs
}

func validName(name string) bool {
	return strings.TrimSpace(name) != "" && utf8.RuneCountInString(name) <= MaxNameLength
}

func invalidNameError(code, field string) entity.IdentityError {
	return entity.IdentityError{
		Code:        code,
		Description: field + " is required and must be at most " + strconv.Itoa(MaxNameLength) + " characters.",
	}
}

func InvalidUserNameError(userName string) entity.IdentityError {
	return entity.IdentityError{
		Code:        entity.CodeInvalidUserName,
		Description: "Username '" + userName + "' is invalid, can only contain letters or digits.",
	}
}

func DuplicateUserNameError(userName string) entity.IdentityError {
	return entity.IdentityError{
		Code:        entity.CodeDuplicateUserName,
		Description: "Username '" + userName + "' is already taken.",
	}
}

func DuplicateEmailError(email string) entity.IdentityError {
	return entity.IdentityError{
		Code:        entity.CodeDuplicateEmail,
		Description: "Email '" + email + "' is already taken.",
	}
}

func DuplicateRoleNameError(role string) entity.IdentityError {
	return entity.IdentityError{
		Code:        entity.CodeDuplicateRoleName,
		Description: "Role name '" + role + "' is already taken.",
	}
}

func UserAlreadyInRoleError(role string) entity.IdentityError {
	return entity.IdentityError{
		Code:        entity.CodeUserAlreadyInRole,
		Description: "User already in role '" + role + "'.",
	}
}
