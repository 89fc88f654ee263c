package employees_test

import (
	"testing"

	"github.com/jrsteele09/go-employee-console/employees"
	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("valid forms", func(t *testing.T) {
		require.NoError(t, employees.Validate(employees.LoginForm{Email: "a@b.co", Password: "x"}))
		require.NoError(t, employees.Validate(employees.RegisterForm{
			Username:        "bob",
			Email:           "bob@example.com",
			Password:        "abc",
			ConfirmPassword: "abc",
			Role:            employees.RoleAdmin,
		}))
		require.NoError(t, employees.Validate(employees.Employee{FirstName: "a", LastName: "b", Email: "a@b.co"}))
	})

	t.Run("one message per field", func(t *testing.T) {
		err := employees.Validate(employees.RegisterForm{Username: "al", Email: "al@example.com"})
		require.ErrorIs(t, err, errors.ErrValidation)

		var verr *employees.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, map[string]string{
			"username":        "Must be at least 3 characters",
			"password":        "Please enter your password",
			"confirmPassword": "Please enter your password again",
			"role":            "Please enter a role",
		}, verr.Fields)
		require.Equal(t,
			"validation failed: confirmPassword: Please enter your password again; password: Please enter your password; role: Please enter a role; username: Must be at least 3 characters",
			verr.Error())
	})

	t.Run("long values", func(t *testing.T) {
		long := make([]byte, 51)
		for i := range long {
			long[i] = 'x'
		}
		err := employees.Validate(employees.Employee{FirstName: string(long), LastName: "b", Email: "a@b.co"})
		var verr *employees.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "Must be at most 50 characters", verr.Fields["firstName"])
	})
}

func TestEmployee_FullName(t *testing.T) {
	require.Equal(t, "Ada Lovelace", employees.Employee{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	require.Equal(t, "Ada", employees.Employee{FirstName: "Ada"}.FullName())
	require.Equal(t, "Lovelace", employees.Employee{LastName: "Lovelace"}.FullName())
}
