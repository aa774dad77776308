package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	gamelink "github.com/cory-johannsen/gamelink"
	"github.com/cory-johannsen/gamelink/api"
	"github.com/cory-johannsen/gamelink/config"
)

// HTTPAdapter sends requests over net/http.
type HTTPAdapter struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPAdapter builds an adapter for the given server configuration.
//
// Precondition: cfg must have passed config.Validate.
// Postcondition: Returns a ready adapter; no connection is opened yet.
func NewHTTPAdapter(cfg config.ServerConfig, logger *zap.Logger) *HTTPAdapter {
	return &HTTPAdapter{
		baseURL: cfg.BaseURL(),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.Named("http"),
	}
}

// Send performs one round trip. A response with a non-2xx status is returned
// as a Response, not an error; mapping status codes to errors is the
// caller's concern.
func (a *HTTPAdapter) Send(ctx context.Context, req *api.Request) (*api.Response, error) {
	target, err := url.Parse(a.baseURL + req.Path)
	if err != nil {
		return nil, gamelink.NewError(gamelink.KindInternal, fmt.Sprintf("building url for %s: %v", req.Path, err), err)
	}
	target.RawQuery = req.Query.Encode()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, gamelink.NewError(gamelink.KindInternal, fmt.Sprintf("building request for %s: %v", req.Path, err), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	switch req.Auth.Scheme {
	case api.AuthBasic:
		httpReq.SetBasicAuth(req.Auth.Username, req.Auth.Password)
	case api.AuthBearer:
		httpReq.Header.Set("Authorization", "Bearer "+req.Auth.Token)
	}

	a.logger.Debug("sending request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
	)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, gamelink.NewError(gamelink.KindTransport, fmt.Sprintf("%s %s: %v", req.Method, req.Path, err), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, gamelink.NewError(gamelink.KindTransport, fmt.Sprintf("reading %s %s response: %v", req.Method, req.Path, err), err)
	}

	a.logger.Debug("received response",
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(payload)),
	)

	return &api.Response{Status: resp.StatusCode, Body: payload}, nil
}
