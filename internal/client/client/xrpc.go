package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/skykeeper/internal/client/models"
	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/dmitrijs2005/skykeeper/internal/cryptox"
	"github.com/dmitrijs2005/skykeeper/internal/logging"
	"github.com/dmitrijs2005/skykeeper/internal/metrics"
)

const (
	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 30 * time.Second

	maxBodySize = 1 << 20

	opCreateSession  = "create_session"
	opRefreshSession = "refresh_session"
)

// XRPCClient implements SessionClient over HTTPS. It holds no credentials;
// tokens are passed in on every call.
type XRPCClient struct {
	serverURL  string
	httpClient *http.Client
	policy     Policy
	log        logging.Logger
	metrics    *metrics.Metrics
}

type Option func(*XRPCClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *XRPCClient) { c.httpClient = hc }
}

func WithRetryPolicy(p Policy) Option {
	return func(c *XRPCClient) { c.policy = p }
}

func WithLogger(l logging.Logger) Option {
	return func(c *XRPCClient) { c.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *XRPCClient) { c.metrics = m }
}

// NewXRPCClient validates serverURL with NormalizeServerURL and returns a
// client for it.
func NewXRPCClient(serverURL string, opts ...Option) (*XRPCClient, error) {
	u, err := NormalizeServerURL(serverURL)
	if err != nil {
		return nil, err
	}

	c := &XRPCClient{
		serverURL:  u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		policy:     DefaultPolicy(),
		log:        logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("server", u)
	return c, nil
}

func (c *XRPCClient) ServerURL() string {
	return c.serverURL
}

// CreateSession logs in with a handle or email and password. password is
// left untouched; the request body holding its copy is wiped afterwards.
func (c *XRPCClient) CreateSession(ctx context.Context, identifier string, password []byte) (models.SessionTokens, error) {
	body, err := createSessionBody(identifier, password)
	if err != nil {
		return models.SessionTokens{}, common.NewError(common.ErrUnknown, "encode request", err)
	}
	defer cryptox.Wipe(body)

	tokens, err := c.call(ctx, common.CreateSessionNSID, "", body, createSessionError)
	c.metrics.ObserveSessionRequest(opCreateSession, err)
	if err != nil {
		c.log.Warn(ctx, "create session failed", "error", err)
		return models.SessionTokens{}, err
	}

	c.log.Info(ctx, "session created", "handle", tokens.Handle, "did", tokens.DID)
	return tokens, nil
}

// RefreshSession exchanges refreshJwt for a new token pair. A rejected
// refresh token is reported as common.ErrTokenExpired.
func (c *XRPCClient) RefreshSession(ctx context.Context, refreshJwt string) (models.SessionTokens, error) {
	tokens, err := c.call(ctx, common.RefreshSessionNSID, refreshJwt, nil, refreshSessionError)
	c.metrics.ObserveSessionRequest(opRefreshSession, err)
	if err != nil {
		c.log.Warn(ctx, "refresh session failed", "error", err)
		return models.SessionTokens{}, err
	}

	c.log.Debug(ctx, "session refreshed", "handle", tokens.Handle)
	return tokens, nil
}

func (c *XRPCClient) CreateSessionWithRetry(ctx context.Context, identifier string, password []byte) (models.SessionTokens, error) {
	return WithRetry(ctx, c.policy, c.onWait(ctx, opCreateSession), func(ctx context.Context) (models.SessionTokens, error) {
		return c.CreateSession(ctx, identifier, password)
	})
}

func (c *XRPCClient) RefreshSessionWithRetry(ctx context.Context, refreshJwt string) (models.SessionTokens, error) {
	return WithRetry(ctx, c.policy, c.onWait(ctx, opRefreshSession), func(ctx context.Context) (models.SessionTokens, error) {
		return c.RefreshSession(ctx, refreshJwt)
	})
}

func (c *XRPCClient) onWait(ctx context.Context, op string) func(int, time.Duration) {
	return func(attempt int, delay time.Duration) {
		c.metrics.ObserveRetry(op)
		c.log.Info(ctx, "retrying after network error", "op", op, "attempt", attempt, "delay", delay)
	}
}

// createSessionBody renders {"identifier":...,"password":...} into a buffer
// sized up front, so no partial copy of the password is left behind by a
// reallocation and no immutable string copy is made.
func createSessionBody(identifier string, password []byte) ([]byte, error) {
	id, err := json.Marshal(identifier)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(id)+6*len(password)+32)
	buf = append(buf, `{"identifier":`...)
	buf = append(buf, id...)
	buf = append(buf, `,"password":`...)
	buf = appendJSONString(buf, password)
	return append(buf, '}'), nil
}

// appendJSONString appends s to dst as a quoted JSON string. Each input byte
// expands to at most six output bytes.
func appendJSONString(dst, s []byte) []byte {
	const hex = "0123456789abcdef"
	dst = append(dst, '"')
	for _, b := range s {
		switch {
		case b == '"' || b == '\\':
			dst = append(dst, '\\', b)
		case b < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hex[b>>4], hex[b&0xf])
		default:
			dst = append(dst, b)
		}
	}
	return append(dst, '"')
}

// call POSTs body to the given XRPC method and decodes a session response.
// Non-2xx statuses are turned into errors by classify.
func (c *XRPCClient) call(ctx context.Context, nsid, bearer string, body []byte, classify func(int, []byte) error) (models.SessionTokens, error) {
	var out models.SessionTokens

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/xrpc/"+nsid, reader)
	if err != nil {
		return out, common.NewError(common.ErrInvalidServerURL, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, transportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return out, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, classify(resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, &out); err != nil {
		return out, common.NewError(common.ErrServer, "Failed to parse response", err)
	}
	if out.AccessJwt == "" || out.RefreshJwt == "" {
		return models.SessionTokens{}, common.NewError(common.ErrServer,
			fmt.Sprintf("Failed to parse response: %s returned no tokens", nsid), nil)
	}
	return out, nil
}

var _ SessionClient = (*XRPCClient)(nil)
