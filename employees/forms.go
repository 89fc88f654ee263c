package employees

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-employee-console/internal/errors"
)

// Roles accepted by the register endpoint
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterForm struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=3,max=50"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=USER ADMIN"`
}

// ValidationError carries one message per offending field, keyed by the
// field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return errors.ErrValidation
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks a form or employee against its struct tags. The returned
// error is a *ValidationError.
func Validate(form any) error {
	err := engine().Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrapf(errors.ErrValidation, "validate: %v", err)
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := verr.Fields[fe.Field()]; seen {
			continue
		}
		verr.Fields[fe.Field()] = message(fe)
	}
	return verr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please enter %s", label(fe.Field()))
	case "email":
		return "Please enter a valid email"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("Must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "Invalid value"
	}
}

var labels = map[string]string{
	"email":           "your email",
	"password":        "your password",
	"confirmPassword": "your password again",
	"username":        "a username",
	"firstName":       "a first name",
	"lastName":        "a last name",
	"role":            "a role",
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}
