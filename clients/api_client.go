package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/common/logger"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"go.uber.org/zap"
)

// Request is one call through the client pipeline. It is passed by value so
// the retry marker belongs to this call only.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	// Timeout overrides the client default for this call.
	Timeout time.Duration
	// Public requests carry no bearer and skip refresh-on-401.
	Public bool

	retried bool
	bearer  string
}

// APIClient talks to the storefront API.
type APIClient struct {
	baseURL string
	client  *http.Client
	tokens  *TokenManager
	timeout time.Duration
	log     *zap.Logger
}

// NewAPIClient uses timeout as the per-call default. Deadlines are applied
// per request through the context, not on the http.Client.
func NewAPIClient(baseURL string, timeout time.Duration, tokens *TokenManager, log *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{},
		tokens:  tokens,
		timeout: timeout,
		log:     log,
	}
}

// Tokens returns the token manager the client authenticates with.
func (a *APIClient) Tokens() *TokenManager { return a.tokens }

// Get calls path with query and decodes the envelope data into out.
func (a *APIClient) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return a.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends body as JSON and decodes the envelope data into out.
func (a *APIClient) Post(ctx context.Context, path string, body, out interface{}) error {
	req, err := jsonRequest(http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return a.Do(ctx, req, out)
}

// Put sends body as JSON and decodes the envelope data into out.
func (a *APIClient) Put(ctx context.Context, path string, body, out interface{}) error {
	req, err := jsonRequest(http.MethodPut, path, body)
	if err != nil {
		return err
	}
	return a.Do(ctx, req, out)
}

func jsonRequest(method, path string, body interface{}) (Request, error) {
	req := Request{Method: method, Path: path}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return req, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.Body = b
		req.ContentType = "application/json"
	}
	return req, nil
}

// Do dispatches req and decodes the envelope data into out (nil to discard).
// A 401 on a request not yet retried goes through the token manager once;
// when the refresh cannot happen the original 401 is returned.
func (a *APIClient) Do(ctx context.Context, req Request, out interface{}) error {
	data, sentToken, err := a.dispatch(ctx, req)
	if err == nil {
		return decodeData(data, out)
	}

	var httpErr *HTTPError
	if req.Public || req.retried || !errors.As(err, &httpErr) || !httpErr.Unauthorized() {
		return err
	}

	token, refreshErr := a.tokens.HandleUnauthorized(ctx, sentToken, a)
	if refreshErr != nil {
		if !errors.Is(refreshErr, ErrNoRefreshToken) {
			logger.For(ctx, a.log).Warn("token refresh failed",
				zap.String("path", req.Path), zap.Error(refreshErr))
		}
		return err
	}

	retry := req
	retry.retried = true
	retry.bearer = token
	data, _, err = a.dispatch(ctx, retry)
	if err != nil {
		return err
	}
	return decodeData(data, out)
}

// Refresh implements Refresher against POST /auth/refresh.
func (a *APIClient) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var pair models.TokenPair
	req, err := jsonRequest(http.MethodPost, "/auth/refresh", models.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return pair, err
	}
	req.Public = true

	if err := a.Do(ctx, req, &pair); err != nil {
		return pair, err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return pair, fmt.Errorf("refresh response is missing tokens")
	}
	return pair, nil
}

// dispatch sends one HTTP exchange and returns the envelope data together
// with the bearer token that was sent.
func (a *APIClient) dispatch(ctx context.Context, req Request) (json.RawMessage, string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = a.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := a.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, "", err
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", requestID)

	var sentToken string
	switch {
	case req.Public:
	case req.bearer != "":
		sentToken = req.bearer
		httpReq.Header.Set("Authorization", "Bearer "+req.bearer)
	default:
		sentToken = a.tokens.Attach(ctx, httpReq)
	}

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, sentToken, a.transportError(ctx, req.Method, u, timeout, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, sentToken, a.transportError(ctx, req.Method, u, timeout, err)
	}

	a.log.Debug("storefront call",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Bool("retried", req.retried),
		zap.Duration("latency", time.Since(start)),
	)

	var env models.Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 400 {
		return nil, sentToken, &HTTPError{StatusCode: resp.StatusCode, Message: env.Message, Body: raw}
	}
	if decodeErr != nil {
		return nil, sentToken, fmt.Errorf("decode envelope from %s %s: %w", req.Method, req.Path, decodeErr)
	}
	if !env.Success {
		return nil, sentToken, &HTTPError{StatusCode: resp.StatusCode, Message: env.Message, Body: raw}
	}
	return env.Data, sentToken, nil
}

func (a *APIClient) transportError(ctx context.Context, method, u string, timeout time.Duration, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{Method: method, URL: u, Timeout: timeout}
	}
	return &NetworkError{Method: method, URL: u, Err: err}
}

func decodeData(data json.RawMessage, out interface{}) error {
	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
