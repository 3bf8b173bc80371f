package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/metareview/internal/models"
	"github.com/iudanet/metareview/pkg/api"
)

// DefaultTimeout is the HTTP timeout used when none is configured
const DefaultTimeout = 30 * time.Second

// HeaderRequestID is set on every outgoing request
const HeaderRequestID = "X-Request-ID"

// Endpoints holds the paths of the authentication endpoints
type Endpoints struct {
	Token       string `yaml:"token"`
	Register    string `yaml:"register"`
	CurrentUser string `yaml:"current_user"`
}

// DefaultEndpoints returns the paths served by the backend
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Token:       "/auth/token",
		Register:    "/auth/register",
		CurrentUser: "/auth/users/me",
	}
}

// Request describes a single API call
type Request struct {
	Body   io.Reader
	Query  url.Values
	Header http.Header
	Method string
	Path   string
	// ContentType задается, только если есть тело
	ContentType string
	// Token - bearer токен; пустой токен означает анонимный запрос
	Token         string
	ContentLength int64
}

// NewJSONRequest creates a request with a JSON encoded body
func NewJSONRequest(method, path string, body any) (Request, error) {
	req := Request{Method: method, Path: path}
	if body == nil {
		return req, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return Request{}, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req.Body = bytes.NewReader(data)
	req.ContentType = "application/json"
	req.ContentLength = int64(len(data))
	return req, nil
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	endpoints  Endpoints
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithEndpoints overrides the authentication endpoint paths.
// Empty fields keep their defaults.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		if e.Token != "" {
			c.endpoints.Token = e.Token
		}
		if e.Register != "" {
			c.endpoints.Register = e.Register
		}
		if e.CurrentUser != "" {
			c.endpoints.CurrentUser = e.CurrentUser
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: DefaultEndpoints(),
		logger:    slog.Default(),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Authorization сам net/http переносит только на тот же хост
				// (например, /projects -> /projects/), чужому хосту токен не уходит
				return nil
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the server base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Endpoints returns the configured authentication endpoint paths
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Do executes the request and decodes a successful body into out (may be nil).
// Every failure is returned as *Error.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	result, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	return result.Decode(out)
}

func (c *Client) send(ctx context.Context, r Request) (*Result, error) {
	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
	if err != nil {
		return nil, newTransportError(err, "failed to create request")
	}
	if r.ContentLength > 0 {
		req.ContentLength = r.ContentLength
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	req.Header.Set("Accept", "application/json")
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", r.Method,
			"path", r.Path,
			"request_id", requestID,
			"error", err,
		)
		return nil, newTransportError(err, "request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(err, "failed to read response body")
	}

	c.logger.Debug("api request",
		"method", r.Method,
		"path", r.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	return Interpret(resp.StatusCode, body)
}

// IssueToken exchanges credentials for a bearer token.
// Credentials are sent form encoded with the email in the "username" field.
func (c *Client) IssueToken(ctx context.Context, email, password string) (*api.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	encoded := form.Encode()

	req := Request{
		Method:        http.MethodPost,
		Path:          c.endpoints.Token,
		Body:          strings.NewReader(encoded),
		ContentType:   "application/x-www-form-urlencoded",
		ContentLength: int64(len(encoded)),
	}

	var resp api.TokenResponse
	if err := c.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &Error{Kind: KindTransport, Message: "token response has no access_token"}
	}
	return &resp, nil
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, reg api.RegisterRequest) (*models.User, error) {
	req, err := NewJSONRequest(http.MethodPost, c.endpoints.Register, reg)
	if err != nil {
		return nil, NewValidationError("%v", err)
	}

	var user models.User
	if err := c.Do(ctx, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser returns the profile of the token's owner
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	req := Request{
		Method: http.MethodGet,
		Path:   c.endpoints.CurrentUser,
		Token:  token,
	}

	var user models.User
	if err := c.Do(ctx, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
