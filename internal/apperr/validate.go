package apperr

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json names so the offending field matches the request body
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs validator tags on v and converts the first failure into a
// validation *Error naming the field.
func ValidateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Error{Kind: KindValidation, Message: "invalid input", Err: err}
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_without":
		return Validation(field, "is required")
	case "oneof":
		return Validation(field, "must be one of [%s], got %q", fe.Param(), fe.Value())
	case "min":
		return Validation(field, "must be at least %s", fe.Param())
	case "max":
		return Validation(field, "must be at most %s", fe.Param())
	case "email":
		return Validation(field, "must be a valid email")
	default:
		return Validation(field, "failed %s validation", fe.Tag())
	}
}
