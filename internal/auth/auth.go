// Package auth stores and resolves the API token sent to the to-do backend.
package auth

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/basecamp/todo-cli/internal/config"
	"github.com/basecamp/todo-cli/internal/output"
)

// Status describes where the active token comes from.
type Status struct {
	Origin        string `json:"origin"`
	Authenticated bool   `json:"authenticated"`
	Source        string `json:"source,omitempty"` // "env", "keyring" or "file"
	SavedAt       string `json:"saved_at,omitempty"`
}

// Manager resolves tokens for the configured backend.
type Manager struct {
	cfg   *config.Config
	store *Store
}

// NewManager creates a Manager backed by the default credential store.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg, store: NewStore(config.GlobalConfigDir())}
}

// NewManagerWithStore creates a Manager using the given store.
func NewManagerWithStore(cfg *config.Config, store *Store) *Manager {
	return &Manager{cfg: cfg, store: store}
}

// Origin returns scheme://host of the configured base URL. Tokens are keyed
// by origin so switching backends never leaks a token to another host.
func (m *Manager) Origin() string {
	u, err := url.Parse(m.cfg.BaseURL)
	if err != nil || u.Host == "" {
		return m.cfg.BaseURL
	}
	return u.Scheme + "://" + u.Host
}

// AccessToken returns the token for the configured origin. An empty token
// with a nil error means the request goes out unauthenticated.
func (m *Manager) AccessToken(_ context.Context) (string, error) {
	if t := os.Getenv("TODO_TOKEN"); t != "" {
		return t, nil
	}
	creds, err := m.store.Load(m.Origin())
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			return "", nil
		}
		return "", err
	}
	return creds.Token, nil
}

// Login stores token for the configured origin.
func (m *Manager) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return output.ErrUsage("Token must not be empty")
	}
	return m.store.Save(m.Origin(), &Credentials{Token: token, SavedAt: time.Now().Unix()})
}

// Logout removes the stored token for the configured origin.
func (m *Manager) Logout() error {
	return m.store.Delete(m.Origin())
}

// Status reports whether a token is available and where it comes from.
func (m *Manager) Status() (Status, error) {
	st := Status{Origin: m.Origin()}
	if os.Getenv("TODO_TOKEN") != "" {
		st.Authenticated = true
		st.Source = "env"
		return st, nil
	}
	creds, err := m.store.Load(st.Origin)
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			return st, nil
		}
		return st, err
	}
	st.Authenticated = creds.Token != ""
	st.Source = "file"
	if m.store.UsingKeyring() {
		st.Source = "keyring"
	}
	if creds.SavedAt > 0 {
		st.SavedAt = time.Unix(creds.SavedAt, 0).UTC().Format(time.RFC3339)
	}
	return st, nil
}
