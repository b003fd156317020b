package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"sync"
	"time"
)

// CaptchaLength is the number of digits in a login captcha.
const CaptchaLength = 6

// Captcha is a one-time login challenge.
type Captcha struct {
	ID        string
	Code      string
	ExpiresAt time.Time
}

// CaptchaStore issues and verifies login captchas.
type CaptchaStore interface {
	// Issue creates a captcha valid for ttl.
	Issue(ctx context.Context, ttl time.Duration) (*Captcha, error)

	// Verify checks answer against the captcha and consumes it. A captcha
	// can be verified at most once, whatever the outcome.
	Verify(ctx context.Context, id, answer string) (bool, error)
}

// NewCaptcha generates a captcha with a random numeric code.
func NewCaptcha(ttl time.Duration) (*Captcha, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	code := make([]byte, CaptchaLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return nil, err
		}
		code[i] = byte('0' + n.Int64())
	}
	return &Captcha{ID: id, Code: string(code), ExpiresAt: time.Now().Add(ttl)}, nil
}

func codesMatch(want, got string) bool {
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// MemoryCaptchaStore keeps captchas in process memory.
type MemoryCaptchaStore struct {
	mu       sync.Mutex
	captchas map[string]*Captcha
}

// NewMemoryCaptchaStore returns an empty in-memory store.
func NewMemoryCaptchaStore() *MemoryCaptchaStore {
	return &MemoryCaptchaStore{captchas: make(map[string]*Captcha)}
}

func (m *MemoryCaptchaStore) Issue(ctx context.Context, ttl time.Duration) (*Captcha, error) {
	c, err := NewCaptcha(ttl)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captchas[c.ID] = c
	return c, nil
}

func (m *MemoryCaptchaStore) Verify(ctx context.Context, id, answer string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.captchas[id]
	if !ok {
		return false, nil
	}
	delete(m.captchas, id)
	if time.Now().After(c.ExpiresAt) {
		return false, nil
	}
	return codesMatch(c.Code, answer), nil
}

var _ CaptchaStore = (*MemoryCaptchaStore)(nil)
