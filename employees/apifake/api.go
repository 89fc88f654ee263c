// Package apifake is an in-memory stand-in for the employee API. It backs the
// client tests and the console's demo mode.
package apifake

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-employee-console/employees"
	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/jrsteele09/go-employee-console/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = 15 * time.Minute
	defaultPageSize = 5
	issuer          = "employee-api"
)

type API struct {
	mux      *http.ServeMux
	routes   []string
	minter   *token.Minter
	ttl      time.Duration
	hashCost int
	repo     *repo

	revokedLock sync.Mutex
	revoked     map[string]struct{}
}

type Option func(*API)

// WithTokenTTL sets the lifetime of tokens issued by login
func WithTokenTTL(ttl time.Duration) Option {
	return func(a *API) {
		a.ttl = ttl
	}
}

func WithSecret(secret string) Option {
	return func(a *API) {
		a.minter = token.NewMinter(secret, issuer)
	}
}

// WithHashCost sets the bcrypt cost for stored passwords
func WithHashCost(cost int) Option {
	return func(a *API) {
		a.hashCost = cost
	}
}

func New(opts ...Option) *API {
	a := &API{
		mux:      http.NewServeMux(),
		minter:   token.NewMinter("apifake-secret", issuer),
		ttl:      defaultTokenTTL,
		hashCost: bcrypt.DefaultCost,
		repo:     newRepo(),
		revoked:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.initRoutes()
	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) registerRoute(pattern string, handler http.HandlerFunc) {
	a.routes = append(a.routes, pattern)
	a.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered method and path patterns
func (a *API) Routes() []string {
	return slices.Clone(a.routes)
}

// AddUser registers an account directly and returns its id
func (a *API) AddUser(username, email, password, role string) (int64, error) {
	hash, err := hashPassword(password, a.hashCost)
	if err != nil {
		return 0, errors.Wrapf(err, "hash password")
	}
	u := &user{Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := a.repo.addUser(u); err != nil {
		return 0, err
	}
	return u.ID, nil
}

// AddEmployee stores e and returns it with its assigned id
func (a *API) AddEmployee(e employees.Employee) employees.Employee {
	e.ID = 0
	return a.repo.upsertEmployee(e)
}

// IssueToken mints a token for an existing user as login would, but with
// the given lifetime.
func (a *API) IssueToken(userID int64, ttl time.Duration) (string, error) {
	u, err := a.repo.userByID(strconv.FormatInt(userID, 10))
	if err != nil {
		return "", err
	}
	return a.minter.Mint(u.Email, strconv.FormatInt(u.ID, 10), []string{u.Role}, ttl)
}

// Revoked reports whether raw was presented to the logout endpoint
func (a *API) Revoked(raw string) bool {
	return a.isRevoked(raw)
}

func (a *API) isRevoked(raw string) bool {
	a.revokedLock.Lock()
	defer a.revokedLock.Unlock()
	_, ok := a.revoked[raw]
	return ok
}

func (a *API) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		u, err := a.repo.userByEmail(req.Email)
		if err != nil || !checkPasswordHash(req.Password, u.PasswordHash) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		raw, err := a.minter.Mint(u.Email, strconv.FormatInt(u.ID, 10), []string{u.Role}, a.ttl)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not issue token")
			return
		}
		// The employee API sends the id as a JSON number
		writeJSON(w, http.StatusOK, struct {
			Token   string `json:"token"`
			UserID  int64  `json:"userId"`
			Message string `json:"message"`
		}{raw, u.ID, "Login successful"})
	}
}

func (a *API) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.PathValue("role")
		if role != employees.RoleUser && role != employees.RoleAdmin {
			writeError(w, http.StatusBadRequest, "Unknown role "+role)
			return
		}
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		if req.Username == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Username, email and password are required")
			return
		}
		if _, err := a.AddUser(req.Username, req.Email, req.Password, role); err != nil {
			if errors.Is(err, errors.ErrValidation) {
				// The real API answers duplicates in plain text
				http.Error(w, "Email already registered", http.StatusConflict)
				return
			}
			writeError(w, http.StatusInternalServerError, "Could not register user")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
	}
}

func (a *API) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		a.revokedLock.Lock()
		a.revoked[raw] = struct{}{}
		a.revokedLock.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

func (a *API) ListEmployeesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryInt(r, "page", 0)
		if err != nil || page < 0 {
			writeError(w, http.StatusBadRequest, "Invalid page")
			return
		}
		size, err := queryInt(r, "size", defaultPageSize)
		if err != nil || size <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid size")
			return
		}
		content, totalPages := a.repo.listEmployees(page, size)
		writeJSON(w, http.StatusOK, employees.Page{Content: content, TotalPages: totalPages, Number: page})
	}
}

func (a *API) FindEmployeeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusNotFound, "Employee not found")
			return
		}
		e, err := a.repo.employee(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "Employee not found")
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func (a *API) AddEmployeeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.requireAdmin(w, r) {
			return
		}
		e, ok := decodeEmployee(w, r)
		if !ok {
			return
		}
		if e.CreatedBy == nil {
			e.CreatedBy = &employees.AdminRef{ID: callerID(r)}
		}
		e.ModifiedBy = e.CreatedBy
		writeJSON(w, http.StatusCreated, a.AddEmployee(e))
	}
}

func (a *API) UpdateEmployeeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.requireAdmin(w, r) {
			return
		}
		admin, err := a.repo.userByID(r.PathValue("adminId"))
		if err != nil {
			writeError(w, http.StatusNotFound, "Admin not found")
			return
		}
		e, ok := decodeEmployee(w, r)
		if !ok {
			return
		}
		existing, err := a.repo.employee(e.ID)
		if err != nil {
			writeError(w, http.StatusNotFound, "Employee not found")
			return
		}
		e.CreatedBy = existing.CreatedBy
		e.ModifiedBy = &employees.AdminRef{ID: admin.ID}
		writeJSON(w, http.StatusOK, a.repo.upsertEmployee(e))
	}
}

func (a *API) DeleteEmployeeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.requireAdmin(w, r) {
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || a.repo.deleteEmployee(id) != nil {
			writeError(w, http.StatusNotFound, "Employee not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Employee deleted"})
	}
}

func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims := claimsFrom(r.Context())
	if claims == nil || !slices.Contains(claims.Roles, employees.RoleAdmin) {
		writeError(w, http.StatusForbidden, "Administrator role required")
		return false
	}
	return true
}

func callerID(r *http.Request) int64 {
	claims := claimsFrom(r.Context())
	if claims == nil {
		return 0
	}
	id, _ := strconv.ParseInt(claims.UserID, 10, 64)
	return id
}

func decodeEmployee(w http.ResponseWriter, r *http.Request) (employees.Employee, bool) {
	var e employees.Employee
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return employees.Employee{}, false
	}
	if err := employees.Validate(e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return employees.Employee{}, false
	}
	return e, true
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
