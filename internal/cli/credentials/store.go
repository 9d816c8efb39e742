// Package credentials stores the dmds server contexts used by the admin
// commands: a server URL and the bearer token to present to it.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// DefaultConfigDir is the directory under $XDG_CONFIG_HOME holding the store.
	DefaultConfigDir = "dmds"
	// ConfigFileName is the name of the store file.
	ConfigFileName = "contexts.json"
	// FilePermissions for the store file (read/write for owner only).
	FilePermissions = 0600
	// DirPermissions for the store directory.
	DirPermissions = 0700
	// DefaultContextName is used when login is not given a name.
	DefaultContextName = "default"
)

var (
	// ErrNoCurrentContext indicates no context is currently set.
	ErrNoCurrentContext = errors.New("no current context set")
	// ErrContextNotFound indicates the requested context doesn't exist.
	ErrContextNotFound = errors.New("context not found")
)

// Context is a saved connection to a dmds server.
type Context struct {
	ServerURL string    `json:"server_url"`
	Token     string    `json:"token,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the token expires within the next minute.
// Tokens saved without an expiry never expire here; the server decides.
func (c *Context) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(60 * time.Second).After(c.ExpiresAt)
}

type file struct {
	CurrentContext string              `json:"current_context"`
	Contexts       map[string]*Context `json:"contexts"`
}

// Store manages saved contexts on disk.
type Store struct {
	path string
	data *file
}

// NewStore opens the store at the default location.
func NewStore() (*Store, error) {
	path, err := defaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Open opens the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: &file{Contexts: make(map[string]*Context)}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, s.data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if s.data.Contexts == nil {
		s.data.Contexts = make(map[string]*Context)
	}
	return s, nil
}

func defaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, DefaultConfigDir, ConfigFileName), nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), DirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, FilePermissions)
}

// Current returns the current context.
func (s *Store) Current() (*Context, error) {
	if s.data.CurrentContext == "" {
		return nil, ErrNoCurrentContext
	}
	ctx, ok := s.data.Contexts[s.data.CurrentContext]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// CurrentName returns the name of the current context, or "".
func (s *Store) CurrentName() string {
	return s.data.CurrentContext
}

// List returns the context names in sorted order.
func (s *Store) List() []string {
	names := make([]string, 0, len(s.data.Contexts))
	for name := range s.data.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named context.
func (s *Store) Get(name string) (*Context, error) {
	ctx, ok := s.data.Contexts[name]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// Login saves ctx under name and makes it current.
func (s *Store) Login(name string, ctx *Context) error {
	if name == "" {
		name = DefaultContextName
	}
	s.data.Contexts[name] = ctx
	s.data.CurrentContext = name
	return s.save()
}

// Use switches the current context.
func (s *Store) Use(name string) error {
	if _, ok := s.data.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	s.data.CurrentContext = name
	return s.save()
}

// Logout clears the token of the current context and keeps its server URL.
func (s *Store) Logout() error {
	ctx, err := s.Current()
	if err != nil {
		return err
	}
	ctx.Token = ""
	ctx.Role = ""
	ctx.ExpiresAt = time.Time{}
	return s.save()
}

// Delete removes the named context.
func (s *Store) Delete(name string) error {
	if _, ok := s.data.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	delete(s.data.Contexts, name)
	if s.data.CurrentContext == name {
		s.data.CurrentContext = ""
	}
	return s.save()
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}
