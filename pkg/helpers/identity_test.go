package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
)

func validUser() entity.User {
	return entity.User{UserName: "alice", Email: "a@x.io", FirstName: "Alice", LastName: "Liddell"}
}

func TestValidateUserFields(t *testing.T) {
	with := func(f func(*entity.User)) entity.User {
		u := validUser()
		f(&u)
		return u
	}
	tests := []struct {
		name  string
		user  entity.User
		codes []string
	}{
		{"valid", validUser(), nil},
		{"email as user name", with(func(u *entity.User) { u.UserName = "a.b+c@x.io" }), nil},
		{"space in user name", with(func(u *entity.User) { u.UserName = "al ice" }), []string{entity.CodeInvalidUserName}},
		{"empty user name", with(func(u *entity.User) { u.UserName = "" }), []string{entity.CodeInvalidUserName}},
		{"long user name", with(func(u *entity.User) { u.UserName = strings.Repeat("a", 257) }), []string{entity.CodeUserNameTooLong}},
		{"bad email", with(func(u *entity.User) { u.Email = "nope" }), []string{entity.CodeInvalidEmail}},
		{"name at limit", with(func(u *entity.User) { u.FirstName = strings.Repeat("é", 50) }), nil},
		{"long first name", with(func(u *entity.User) { u.FirstName = strings.Repeat("a", 51) }), []string{entity.CodeInvalidFirstName}},
		{"blank last name", with(func(u *entity.User) { u.LastName = "  " }), []string{entity.CodeInvalidLastName}},
		{"all", entity.User{}, []string{
			entity.CodeInvalidUserName, entity.CodeInvalidEmail, entity.CodeInvalidFirstName, entity.CodeInvalidLastName,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateUserFields(&tt.user)
			var codes []string
			for _, e := range errs {
				codes = append(codes, e.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}
