// Package gateway sends every authenticated API call of the client.
// It attaches the session's bearer token and tears the session down on
// any 401, so no caller has to handle an expired session itself.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/iudanet/metareview/internal/client/api"
)

// Session is the part of the session the gateway needs
type Session interface {
	// Token returns the bearer token, "" if there is none
	Token() string
	// Teardown drops the session and its persisted token
	Teardown(ctx context.Context) error
}

// Doer executes a single request. Implemented by *api.Client.
type Doer interface {
	Do(ctx context.Context, req api.Request, out any) error
}

// Gateway decorates requests with credentials and centralizes 401 handling
type Gateway struct {
	client  Doer
	session Session
	logger  *slog.Logger
}

// New создает новый gateway
func New(client Doer, session Session, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		client:  client,
		session: session,
		logger:  logger,
	}
}

// Do sends req with the current token (anonymously if there is none) and
// decodes a successful body into out. An Unauthorized response tears the
// session down before the error is returned.
func (g *Gateway) Do(ctx context.Context, req api.Request, out any) error {
	req.Token = g.session.Token()

	err := g.client.Do(ctx, req, out)
	if err == nil {
		return nil
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		err = &api.Error{Kind: api.KindTransport, Message: err.Error(), Err: err}
	}

	if api.IsUnauthorized(err) {
		g.logger.Warn("request unauthorized, ending session",
			"method", req.Method,
			"path", req.Path,
		)
		// Сброс сессии не должен зависеть от отмены контекста запроса
		if tErr := g.session.Teardown(context.WithoutCancel(ctx)); tErr != nil {
			g.logger.Error("failed to tear down session", "error", tErr)
		}
	}

	return err
}

// Get sends a GET request
func (g *Gateway) Get(ctx context.Context, path string, query url.Values, out any) error {
	return g.Do(ctx, api.Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends body as JSON
func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	return g.sendJSON(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON
func (g *Gateway) Put(ctx context.Context, path string, body, out any) error {
	return g.sendJSON(ctx, http.MethodPut, path, body, out)
}

// Delete sends a DELETE request
func (g *Gateway) Delete(ctx context.Context, path string, out any) error {
	return g.Do(ctx, api.Request{Method: http.MethodDelete, Path: path}, out)
}

func (g *Gateway) sendJSON(ctx context.Context, method, path string, body, out any) error {
	req, err := api.NewJSONRequest(method, path, body)
	if err != nil {
		return api.NewValidationError("%v", err)
	}
	return g.Do(ctx, req, out)
}

// Upload sends a multipart file upload. Progress is reported through
// u.Progress and never touches the session.
func (g *Gateway) Upload(ctx context.Context, u api.Upload, out any) error {
	req, err := api.NewUploadRequest(u)
	if err != nil {
		return api.NewValidationError("%v", err)
	}
	return g.Do(ctx, req, out)
}
