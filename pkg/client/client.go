package client

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/teamtree/pkg/buildinfo"
	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/httputil"
	"github.com/matzehuels/teamtree/pkg/observability"
	"github.com/matzehuels/teamtree/pkg/session"
	"github.com/matzehuels/teamtree/pkg/tree"
)

const httpTimeout = 15 * time.Second

var (
	// ErrNotLoggedIn is returned when no bearer token is available. No
	// request is attempted.
	ErrNotLoggedIn = errors.New(errors.ErrCodeNotLoggedIn, "not logged in")

	// ErrBackend matches responses whose envelope reports success=false.
	ErrBackend = stderrors.New("backend rejected request")
)

// Paths are the backend endpoint paths, relative to the base URL.
type Paths struct {
	UserTree      string `toml:"user_tree"`
	FranchiseTree string `toml:"franchise_tree"`
	Login         string `toml:"login"`
}

// DefaultPaths are the endpoints of a stock backend install.
var DefaultPaths = Paths{
	UserTree:      "/user/tree.php",
	FranchiseTree: "/franchise/tree.php",
	Login:         "/auth/login.php",
}

// Tree returns the tree endpoint for kind.
func (p Paths) Tree(kind tree.Kind) string {
	if kind == tree.KindFranchise {
		return p.FranchiseTree
	}
	return p.UserTree
}

// Validate checks every path.
func (p Paths) Validate() error {
	for _, path := range []string{p.UserTree, p.FranchiseTree, p.Login} {
		if err := errors.ValidateEndpointPath(path); err != nil {
			return err
		}
	}
	return nil
}

// Client is a backend API client.
type Client struct {
	http    *http.Client
	baseURL string
	paths   Paths
	cred    *session.Credential
	backoff httputil.Backoff
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCredential sets the credential whose token authenticates requests.
func WithCredential(cred *session.Credential) Option {
	return func(c *Client) { c.cred = cred }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithPaths overrides [DefaultPaths].
func WithPaths(p Paths) Option {
	return func(c *Client) { c.paths = p }
}

// WithBackoff overrides the retry schedule.
func WithBackoff(b httputil.Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if err := errors.ValidateBaseURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		http:    &http.Client{Timeout: httpTimeout},
		baseURL: baseURL,
		paths:   DefaultPaths,
		backoff: httputil.DefaultBackoff,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.paths.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Authenticated reports whether the client holds a usable token.
func (c *Client) Authenticated() bool {
	return c.cred.Check() == nil
}

func (c *Client) token() (string, error) {
	if err := c.cred.Check(); err != nil {
		if errors.Is(err, errors.ErrCodeNotLoggedIn) {
			return "", ErrNotLoggedIn
		}
		return "", err
	}
	return c.cred.Token, nil
}

// do sends one request with retries and hands the successful response to
// handle. handle owns decoding; the body is closed afterwards.
func (c *Client) do(ctx context.Context, method, path, token string, body []byte, handle func(*http.Response) error) error {
	host := c.baseURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	return httputil.Retry(ctx, c.backoff, func() error {
		var rd *bytes.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := newRequest(ctx, method, c.baseURL+path, rd)
		if err != nil {
			return err
		}
		reqID := httputil.NewRequestID()
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "teamtree/"+buildinfo.Version)
		req.Header.Set(httputil.HeaderRequestID, reqID)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		observability.HTTP().OnRequest(ctx, method, host, path)
		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			observability.HTTP().OnError(ctx, method, host, path, err)
			c.logger.Debug("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
			if ctx.Err() != nil {
				return errors.Wrap(errors.ErrCodeTimeout, err, "%s %s", method, path)
			}
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path)}
		}
		defer resp.Body.Close()

		observability.HTTP().OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))
		c.logger.Debug("response", "method", method, "path", path, "status", resp.StatusCode,
			"request_id", reqID, "elapsed", time.Since(start))

		if err := httputil.CheckStatus(resp.StatusCode); err != nil {
			return err
		}
		return handle(resp)
	})
}

func newRequest(ctx context.Context, method, url string, body *bytes.Reader) (*http.Request, error) {
	if body == nil {
		return http.NewRequestWithContext(ctx, method, url, nil)
	}
	return http.NewRequestWithContext(ctx, method, url, body)
}

func backendError(status int, message string) error {
	if message == "" {
		message = "no message"
	}
	return fmt.Errorf("%w: %w", ErrBackend, &errors.BackendError{Status: status, Message: message})
}
