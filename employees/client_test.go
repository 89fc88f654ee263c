package employees_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-employee-console/employees"
	"github.com/jrsteele09/go-employee-console/employees/apifake"
	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/jrsteele09/go-employee-console/kv"
	"github.com/jrsteele09/go-employee-console/session"
	"github.com/jrsteele09/go-employee-console/token"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Secret123"
)

type testFixture struct {
	api     *apifake.API
	client  *employees.Client
	store   *session.Store
	adminID int64
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	api := apifake.New(apifake.WithHashCost(bcrypt.MinCost))
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	adminID, err := api.AddUser("admin", adminEmail, adminPassword, employees.RoleAdmin)
	require.NoError(t, err)

	store := session.NewStore(kv.NewMemory())
	return &testFixture{
		api:     api,
		client:  employees.NewClient(srv.URL+apifake.BasePath, store, employees.WithPageSize(2)),
		store:   store,
		adminID: adminID,
	}
}

func (f *testFixture) loginAdmin(t *testing.T) employees.LoginResult {
	t.Helper()
	ctx := context.Background()
	result, err := f.client.Login(ctx, employees.LoginForm{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, session.Credentials{Token: result.Token, UserID: result.UserID}))
	return result
}

func (f *testFixture) seed(n int) {
	for i := 0; i < n; i++ {
		f.api.AddEmployee(employees.Employee{
			FirstName:  "Employee",
			LastName:   string(rune('A' + i)),
			Email:      "employee" + string(rune('a'+i)) + "@example.com",
			Department: "Engineering",
		})
	}
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := setupTestFixture(t)
		result, err := f.client.Login(ctx, employees.LoginForm{Email: adminEmail, Password: adminPassword})
		require.NoError(t, err)
		require.NotEmpty(t, result.Token)

		claims, err := token.Decode(result.Token)
		require.NoError(t, err)
		require.Equal(t, result.UserID, claims.UserID)
		require.True(t, claims.ExpiresAt.After(time.Now()))
	})

	t.Run("wrong password", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.client.Login(ctx, employees.LoginForm{Email: adminEmail, Password: "nope"})
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)

		var apiErr *employees.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.Status)
		require.Equal(t, "Invalid email or password", apiErr.Message)
	})

	t.Run("invalid form never reaches the server", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.client.Login(ctx, employees.LoginForm{Email: "not-an-email"})
		require.ErrorIs(t, err, errors.ErrValidation)

		var verr *employees.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "Please enter a valid email", verr.Fields["email"])
		require.Equal(t, "Please enter your password", verr.Fields["password"])
	})
}

func TestClient_ErrorBodies(t *testing.T) {
	ctx := context.Background()
	var (
		lock       sync.Mutex
		requestIDs []string
	)
	bodies := map[string]string{
		"/text/login":  "Account locked",
		"/empty/login": "",
		"/json/login":  `{"message":"Bad credentials"}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		requestIDs = append(requestIDs, r.Header.Get(employees.HeaderRequestID))
		lock.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(bodies[r.URL.Path]))
	}))
	t.Cleanup(srv.Close)

	for prefix, want := range map[string]string{
		"/text":  "Account locked",
		"/empty": "Login failed",
		"/json":  "Bad credentials",
	} {
		client := employees.NewClient(srv.URL+prefix, session.NewStore(kv.NewMemory()))
		_, err := client.Login(ctx, employees.LoginForm{Email: adminEmail, Password: "x"})
		require.ErrorIs(t, err, errors.ErrInternal)

		var apiErr *employees.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, want, apiErr.Message, prefix)
	}

	lock.Lock()
	defer lock.Unlock()
	require.Len(t, requestIDs, 3)
	for _, id := range requestIDs {
		require.NotEmpty(t, id)
	}
	require.NotEqual(t, requestIDs[0], requestIDs[1])
}

func TestClient_Register(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	form := employees.RegisterForm{
		Username:        "jane",
		Email:           "jane@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
		Role:            employees.RoleUser,
	}
	require.NoError(t, f.client.Register(ctx, form))

	_, err := f.client.Login(ctx, employees.LoginForm{Email: form.Email, Password: form.Password})
	require.NoError(t, err)

	t.Run("duplicate email", func(t *testing.T) {
		err := f.client.Register(ctx, form)
		var apiErr *employees.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusConflict, apiErr.Status)
		require.Equal(t, "Email already registered", apiErr.Message)
	})

	t.Run("passwords differ", func(t *testing.T) {
		bad := form
		bad.Email = "other@example.com"
		bad.ConfirmPassword = "hunter23"
		var verr *employees.ValidationError
		require.ErrorAs(t, f.client.Register(ctx, bad), &verr)
		require.Equal(t, "Passwords do not match", verr.Fields["confirmPassword"])
	})

	t.Run("unknown role", func(t *testing.T) {
		bad := form
		bad.Role = "ROOT"
		var verr *employees.ValidationError
		require.ErrorAs(t, f.client.Register(ctx, bad), &verr)
		require.Equal(t, "Must be one of USER, ADMIN", verr.Fields["role"])
	})
}

func TestClient_RequiresStoredToken(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.client.List(context.Background(), 0, 0)
	require.ErrorIs(t, err, errors.ErrTokenAbsent)
}

func TestClient_List(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.loginAdmin(t)
	f.seed(5)

	first, err := f.client.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, first.Content, 2)
	require.Equal(t, 3, first.TotalPages)
	require.False(t, first.HasPrevious())
	require.True(t, first.HasNext())

	last, err := f.client.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, last.Content, 1)
	require.True(t, last.HasPrevious())
	require.False(t, last.HasNext())

	beyond, err := f.client.List(ctx, 7, 0)
	require.NoError(t, err)
	require.Empty(t, beyond.Content)
	require.NotNil(t, beyond.Content)

	all, err := f.client.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all.Content, 5)
	require.Equal(t, 1, all.TotalPages)
}

func TestClient_CRUD(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	login := f.loginAdmin(t)

	require.NoError(t, f.client.Add(ctx, employees.Employee{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Department:  "Research",
		Designation: "Analyst",
	}))

	page, err := f.client.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	created := page.Content[0]
	require.Equal(t, "Ada Lovelace", created.FullName())
	require.NotNil(t, created.CreatedBy)
	require.Equal(t, f.adminID, created.CreatedBy.ID)

	found, err := f.client.Find(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, found)

	found.Designation = "Lead Analyst"
	require.NoError(t, f.client.Update(ctx, login.UserID, found))
	updated, err := f.client.Find(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Lead Analyst", updated.Designation)
	require.Equal(t, f.adminID, updated.ModifiedBy.ID)

	require.NoError(t, f.client.Delete(ctx, created.ID))
	_, err = f.client.Find(ctx, created.ID)
	require.ErrorIs(t, err, errors.ErrNotFound)
	require.ErrorIs(t, f.client.Delete(ctx, created.ID), errors.ErrNotFound)

	t.Run("invalid employee", func(t *testing.T) {
		var verr *employees.ValidationError
		require.ErrorAs(t, f.client.Add(ctx, employees.Employee{Email: "x"}), &verr)
		require.Contains(t, verr.Fields, "firstName")
		require.Contains(t, verr.Fields, "lastName")
		require.Equal(t, "Please enter a valid email", verr.Fields["email"])
	})

	t.Run("update needs an id", func(t *testing.T) {
		err := f.client.Update(ctx, login.UserID, employees.Employee{FirstName: "a", LastName: "b", Email: "a@b.co"})
		require.ErrorIs(t, err, errors.ErrValidation)
	})
}

func TestClient_NonAdminForbidden(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	userID, err := f.api.AddUser("viewer", "viewer@example.com", "pass123", employees.RoleUser)
	require.NoError(t, err)
	raw, err := f.api.IssueToken(userID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, session.Credentials{Token: raw, UserID: "2"}))

	_, err = f.client.List(ctx, 0, 0)
	require.NoError(t, err)

	err = f.client.Add(ctx, employees.Employee{FirstName: "a", LastName: "b", Email: "a@b.co"})
	require.ErrorIs(t, err, errors.ErrForbidden)
}

func TestClient_ServerRejectsToken(t *testing.T) {
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		f := setupTestFixture(t)
		raw, err := f.api.IssueToken(f.adminID, -time.Minute)
		require.NoError(t, err)
		require.NoError(t, f.store.Set(ctx, session.Credentials{Token: raw, UserID: "1"}))

		_, err = f.client.List(ctx, 0, 0)
		require.ErrorIs(t, err, errors.ErrUnauthorized)
	})

	t.Run("logged out", func(t *testing.T) {
		f := setupTestFixture(t)
		login := f.loginAdmin(t)

		require.NoError(t, f.client.NotifyLogout(ctx, login.Token))
		require.True(t, f.api.Revoked(login.Token))

		_, err := f.client.List(ctx, 0, 0)
		require.ErrorIs(t, err, errors.ErrUnauthorized)
	})

	t.Run("logout without a token", func(t *testing.T) {
		f := setupTestFixture(t)
		require.ErrorIs(t, f.client.Logout(ctx, ""), errors.ErrTokenAbsent)
	})
}

func TestClient_LoginUserIDForms(t *testing.T) {
	ctx := context.Background()
	for name, tc := range map[string]struct {
		body string
		want string
	}{
		"number":       {body: `{"token":"a.b.c","userId":42,"message":"Login successful"}`, want: "42"},
		"large number": {body: `{"token":"a.b.c","userId":9007199254740993}`, want: "9007199254740993"},
		"string":       {body: `{"token":"a.b.c","userId":"u-7"}`, want: "u-7"},
		"null":         {body: `{"token":"a.b.c","userId":null}`, want: ""},
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			client := employees.NewClient(srv.URL, session.NewStore(kv.NewMemory()))
			result, err := client.Login(ctx, employees.LoginForm{Email: adminEmail, Password: "x"})
			require.NoError(t, err)
			require.Equal(t, "a.b.c", result.Token)
			require.Equal(t, tc.want, result.UserID)
		})
	}

	t.Run("object is rejected", func(t *testing.T) {
		var result employees.LoginResult
		require.Error(t, json.Unmarshal([]byte(`{"token":"t","userId":{"id":1}}`), &result))
	})
}
