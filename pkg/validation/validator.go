package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the validator behind gin's binding: JSON tag names in
// errors, plus the aliases used by the request models.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register applies the tag name func and aliases to v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("name50", "max=50")
	// bcrypt ignores input past 72 bytes; the store rejects multi-byte overflow
	v.RegisterAlias("pwd", "max=72")
}

// ToDetails converts binding errors into field -> message.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return "must be at least " + param + " characters long"
	case "max", "name50", "pwd":
		if param == "" {
			param = "50"
		}
		return "must be at most " + param + " characters long"
	case "containsany":
		return "must contain at least one of '" + param + "'"
	default:
		if param != "" {
			return "failed '" + fe.Tag() + "=" + param + "'"
		}
		return "failed '" + fe.Tag() + "'"
	}
}
