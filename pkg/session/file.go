package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore is a file-based credential store for CLI applications.
// Credentials are stored as 0600 JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns $XDG_CONFIG_HOME/teamtree/sessions, falling back to
// ~/.config/teamtree/sessions.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "teamtree", "sessions"), nil
}

// NewFileStore creates a new file-based store.
// If baseDir is empty, [DefaultDir] is used.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) credentialPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.credentialPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if cred.IsExpired() {
		os.Remove(path)
		return nil, nil
	}
	return &cred, nil
}

func (s *FileStore) Set(ctx context.Context, cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.credentialPath(cred.ID), data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.credentialPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read session dir: %w", err)
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cred Credential
		if err := json.Unmarshal(data, &cred); err != nil {
			continue
		}
		if !cred.ExpiresAt.IsZero() && now.After(cred.ExpiresAt) {
			os.Remove(path)
		}
	}
	return nil
}

// Path returns the base directory for session files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)

// =============================================================================
// CLI convenience wrapper
// =============================================================================

const defaultCLICredentialID = "default"

// CLIStore holds the single credential the CLI works with. It is backed by
// a FileStore by default, or by any other [Store] via [NewCLIStoreOn].
type CLIStore struct {
	store Store
	id    string
	where string
}

// NewCLIStoreAt creates a file-backed CLI store rooted at dir. If dir is
// empty, [DefaultDir] is used.
func NewCLIStoreAt(dir string) (*CLIStore, error) {
	store, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &CLIStore{
		store: store,
		id:    defaultCLICredentialID,
		where: store.credentialPath(defaultCLICredentialID),
	}, nil
}

// NewCLIStoreOn keeps the CLI credential in store. where describes the
// location for display, e.g. "redis://localhost:6379".
func NewCLIStoreOn(store Store, where string) *CLIStore {
	return &CLIStore{store: store, id: defaultCLICredentialID, where: where}
}

// Credential returns the stored credential or ErrNotFound.
func (c *CLIStore) Credential(ctx context.Context) (*Credential, error) {
	cred, err := c.store.Get(ctx, c.id)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrNotFound
	}
	return cred, nil
}

// Save stores cred as the CLI credential.
func (c *CLIStore) Save(ctx context.Context, cred *Credential) error {
	cred.ID = c.id
	return c.store.Set(ctx, cred)
}

// Clear removes the CLI credential.
func (c *CLIStore) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, c.id)
}

// Path describes where the credential is kept.
func (c *CLIStore) Path() string {
	return c.where
}
