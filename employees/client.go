package employees

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/jrsteele09/go-employee-console/monitor"
	"github.com/jrsteele09/go-employee-console/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	HeaderRequestID = "X-Request-ID"

	defaultPageSize = 5
	defaultTimeout  = 10 * time.Second
	maxErrorBody    = 4096
)

var _ monitor.Notifier = (*Client)(nil)

// APIError is a non-2xx answer from the employee API
type APIError struct {
	Status  int
	Message string
	err     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("employee api: %d: %s", e.Status, msg)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// Client talks to the employee API. Authenticated calls take their bearer
// token from the session store at request time.
type Client struct {
	baseURL  string
	store    *session.Store
	authed   *http.Client
	anon     *http.Client
	pageSize int
}

type ClientOption func(*Client)

// WithPageSize sets the page size used by List when size is not positive
func WithPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithHTTPClient replaces the underlying transport. Bearer tokens are still
// added on top of it.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.anon = hc
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.anon.Timeout = d
	}
}

func NewClient(baseURL string, store *session.Store, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		store:    store,
		anon:     &http.Client{Timeout: defaultTimeout},
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.anon.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.authed = &http.Client{
		Timeout: c.anon.Timeout,
		Transport: &oauth2.Transport{
			Source: session.TokenSource(store),
			Base:   base,
		},
	}
	return c
}

func (c *Client) PageSize() int {
	return c.pageSize
}

// Login exchanges credentials for a token. A rejected login comes back as an
// *APIError wrapping errors.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, form LoginForm) (LoginResult, error) {
	if err := Validate(form); err != nil {
		return LoginResult{}, err
	}

	var result LoginResult
	err := c.do(ctx, c.anon, http.MethodPost, "/login", nil, form, &result)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			apiErr.err = errors.ErrInvalidCredentials
		}
		if apiErr != nil && apiErr.Message == "" {
			apiErr.Message = "Login failed"
		}
		return LoginResult{}, err
	}
	if result.Token == "" {
		return LoginResult{}, errors.Wrapf(errors.ErrTokenAbsent, "login")
	}
	return result, nil
}

// Register creates an account with the form's role
func (c *Client) Register(ctx context.Context, form RegisterForm) error {
	if err := Validate(form); err != nil {
		return err
	}
	body := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{form.Username, form.Email, form.Password}

	return c.do(ctx, c.anon, http.MethodPost, "/register/"+url.PathEscape(form.Role), nil, body, nil)
}

// Logout tells the server that rawToken is no longer in use. The token is
// passed explicitly because the local session may already be cleared.
func (c *Client) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return errors.ErrTokenAbsent
	}
	header := http.Header{"Authorization": []string{"Bearer " + rawToken}}
	return c.do(ctx, c.anon, http.MethodPost, "/logout", header, nil, nil)
}

func (c *Client) NotifyLogout(ctx context.Context, rawToken string) error {
	return c.Logout(ctx, rawToken)
}

// List fetches one page of employees. A non-positive size uses the
// configured page size.
func (c *Client) List(ctx context.Context, page, size int) (Page, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = c.pageSize
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var result Page
	if err := c.do(ctx, c.authed, http.MethodGet, "/getEmployees?"+query.Encode(), nil, nil, &result); err != nil {
		return Page{}, err
	}
	result.Number = page
	if result.Content == nil {
		result.Content = []Employee{}
	}
	return result, nil
}

func (c *Client) Find(ctx context.Context, id int64) (Employee, error) {
	var e Employee
	if err := c.do(ctx, c.authed, http.MethodGet, "/findEmployee/"+strconv.FormatInt(id, 10), nil, nil, &e); err != nil {
		return Employee{}, err
	}
	return e, nil
}

// Add creates an employee. Missing createdBy and modifiedBy references are
// filled with the logged in administrator.
func (c *Client) Add(ctx context.Context, e Employee) error {
	if err := Validate(e); err != nil {
		return err
	}
	if e.CreatedBy == nil || e.ModifiedBy == nil {
		admin, err := c.currentAdmin(ctx)
		if err != nil {
			return err
		}
		if e.CreatedBy == nil {
			e.CreatedBy = admin
		}
		if e.ModifiedBy == nil {
			e.ModifiedBy = admin
		}
	}
	e.ID = 0
	return c.do(ctx, c.authed, http.MethodPost, "/addEmployee", nil, e, nil)
}

// Update saves changes to an existing employee on behalf of adminID
func (c *Client) Update(ctx context.Context, adminID string, e Employee) error {
	if e.ID == 0 {
		return errors.Wrapf(errors.ErrValidation, "update: employee id is required")
	}
	if adminID == "" {
		return errors.Wrapf(errors.ErrValidation, "update: admin id is required")
	}
	if err := Validate(e); err != nil {
		return err
	}
	return c.do(ctx, c.authed, http.MethodPut, "/updateEmployee/"+url.PathEscape(adminID), nil, e, nil)
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/delete/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) currentAdmin(ctx context.Context) (*AdminRef, error) {
	creds, err := c.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(creds.UserID, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "stored user id %q", creds.UserID)
	}
	return &AdminRef{ID: id}, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, header http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("api request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	log.Debug().Str("request_id", requestID).Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("elapsed", time.Since(started)).Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// readAPIError builds the error for a failed response. The body is either
// JSON carrying a message or plain text.
func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode, err: statusError(resp.StatusCode)}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	text := strings.TrimSpace(string(raw))
	switch {
	case json.Unmarshal(raw, &payload) == nil && (payload.Message != "" || payload.Error != ""):
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	case text != "" && !strings.HasPrefix(text, "{"):
		apiErr.Message = text
	}
	return apiErr
}

func statusError(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return errors.ErrValidation
	case status == http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case status == http.StatusForbidden:
		return errors.ErrForbidden
	case status == http.StatusNotFound:
		return errors.ErrNotFound
	case status >= 500:
		return errors.ErrInternal
	default:
		return nil
	}
}
