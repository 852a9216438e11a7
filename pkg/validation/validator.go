package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the global validator used by Gin's binding.
// Errors are keyed by JSON tag names, and a pwd alias sets the password
// length floor in one place.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterAlias("pwd", "min=8")
	}
}

// ToDetails converts binding errors into a map[field]message for error bodies.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = message(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min", "pwd":
		p := fe.Param()
		if fe.Tag() == "pwd" {
			p = "8"
		}
		return "must be at least " + p + " characters long"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	default:
		return "is invalid"
	}
}
