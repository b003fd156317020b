// Package session stores the credential a user obtains at login.
//
// The bearer token is never kept in process-wide state: callers load a
// [Credential] from a [Store] and hand it to the backend client explicitly.
//
// Backends:
//   - [FileStore]: JSON files under ~/.config/teamtree/sessions, for the CLI
//   - [RedisStore]: shared storage for multiple server instances
//
// The package also issues login captchas ([CaptchaStore]). A captcha is a
// short numeric code, valid for a few minutes and accepted at most once.
//
// # Usage
//
//	store, err := session.NewCLIStoreAt("")
//	cred, err := store.Credential(ctx)
//	if errors.Is(err, session.ErrNotFound) {
//	    // not logged in
//	}
//	c, err := client.New(cred.BaseURL, client.WithCredential(cred))
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	stderrors "errors"
	"time"

	"github.com/matzehuels/teamtree/pkg/errors"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when no credential is stored.
	ErrNotFound = stderrors.New("not found")

	// ErrExpired is returned when a credential has exceeded its TTL.
	ErrExpired = stderrors.New("expired")
)

// Credential is an authenticated backend session.
type Credential struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	BaseURL   string    `json:"base_url"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the credential has expired. A zero ExpiresAt
// never expires.
func (c *Credential) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// Check returns a structured error if the credential cannot be used for a
// request: ErrCodeNotLoggedIn for a nil credential or empty token,
// ErrCodeSessionExpired when expired.
func (c *Credential) Check() error {
	if c == nil {
		return errors.New(errors.ErrCodeNotLoggedIn, "not logged in")
	}
	if err := errors.ValidateToken(c.Token); err != nil {
		return err
	}
	if c.IsExpired() {
		return errors.New(errors.ErrCodeSessionExpired, "session expired at %s", c.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// Store is the interface for credential storage backends.
type Store interface {
	// Get retrieves a credential by ID.
	// Returns nil, nil if it doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Credential, error)

	// Set stores a credential.
	Set(ctx context.Context, cred *Credential) error

	// Delete removes a credential.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired credentials (may be a no-op).
	Cleanup(ctx context.Context) error
}

// Default durations.
const (
	// DefaultTTL is the default credential lifetime.
	DefaultTTL = 24 * time.Hour

	// DefaultCaptchaTTL is how long a login captcha stays valid.
	DefaultCaptchaTTL = 5 * time.Minute
)

// GenerateID creates a cryptographically secure random ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a credential for token issued by the backend at baseURL.
// A ttl of 0 creates a credential that never expires.
func New(token, baseURL, username string, ttl time.Duration) (*Credential, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	cred := &Credential{
		ID:        id,
		Token:     token,
		BaseURL:   baseURL,
		Username:  username,
		CreatedAt: now,
	}
	if ttl > 0 {
		cred.ExpiresAt = now.Add(ttl)
	}
	return cred, nil
}

// FromToken wraps a raw token, for example from TEAMTREE_TOKEN.
func FromToken(token, baseURL string) *Credential {
	return &Credential{ID: "env", Token: token, BaseURL: baseURL, CreatedAt: time.Now()}
}
