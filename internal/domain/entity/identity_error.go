package entity

import "strings"

// IdentityError describes one reason a user record was rejected by the store.
type IdentityError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// IdentityErrors is returned by CreateUser when the record fails validation.
// Order is the order the checks ran in.
type IdentityErrors []IdentityError

func (e IdentityErrors) Error() string {
	return e.Join(", ")
}

// Join concatenates the descriptions with sep.
func (e IdentityErrors) Join(sep string) string {
	parts := make([]string, 0, len(e))
	for _, ie := range e {
		parts = append(parts, ie.Description)
	}
	return strings.Join(parts, sep)
}

// Identity error codes.
const (
	CodeDuplicateEmail                  = "DuplicateEmail"
	CodeDuplicateUserName               = "DuplicateUserName"
	CodeInvalidEmail                    = "InvalidEmail"
	CodeInvalidUserName                 = "InvalidUserName"
	CodeUserNameTooLong                 = "UserNameTooLong"
	CodeEmailTooLong                    = "EmailTooLong"
	CodeInvalidFirstName                = "InvalidFirstName"
	CodeInvalidLastName                 = "InvalidLastName"
	CodePasswordTooLong                 = "PasswordTooLong"
	CodePasswordTooShort                = "PasswordTooShort"
	CodePasswordRequiresNonAlphanumeric = "PasswordRequiresNonAlphanumeric"
	CodePasswordRequiresDigit           = "PasswordRequiresDigit"
	CodePasswordRequiresLower           = "PasswordRequiresLower"
	CodePasswordRequiresUpper           = "PasswordRequiresUpper"
	CodeDuplicateRoleName               = "DuplicateRoleName"
	CodeUserAlreadyInRole               = "UserAlreadyInRole"
)
