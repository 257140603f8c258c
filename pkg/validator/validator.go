package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// FieldError describes a single failed rule on a request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Message renders the failure in words a client can show directly.
func (e FieldError) Message() string {
	switch e.Rule {
	case "required":
		return e.Field + " is required"
	case "email":
		return e.Field + " must be a valid email address"
	case "uuid":
		return e.Field + " must be a valid id"
	case "min":
		return e.Field + " must be at least " + e.Param + " characters"
	case "max":
		return e.Field + " must be at most " + e.Param + " characters"
	case "oneof":
		return e.Field + " must be one of: " + strings.Join(strings.Fields(e.Param), ", ")
	case "gte":
		return e.Field + " must be " + e.Param + " or greater"
	default:
		if e.Param != "" {
			return e.Field + " failed rule " + e.Rule + "=" + e.Param
		}
		return e.Field + " failed rule " + e.Rule
	}
}

// ValidationErrors collects every failed field on a request payload.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Message()
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct runs the struct's validate tags, reporting failures under
// their json field names.
func ValidateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		failures := make(ValidationErrors, 0, len(ve))
		for _, fe := range ve {
			failures = append(failures, FieldError{
				Field: fe.Field(),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
		return failures
	}
	return err
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// Report failures under the wire name clients sent, not the Go
		// field name.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}
