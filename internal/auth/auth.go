// Package auth persists the CLI session between invocations.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CredentialsFile is the file name under the config directory.
const CredentialsFile = "credentials.json"

// Session is a signed-in session bound to one API address.
type Session struct {
	Token   string `json:"token"`
	UserID  int64  `json:"user_id"`
	User    string `json:"user"`
	APIAddr string `json:"api_addr"`
	// UnlockToken is the server's app lock pass, kept even while signed out.
	UnlockToken string `json:"unlock_token,omitempty"`
}

// Credentials stores the complete saved session.
type Credentials struct {
	Session   Session `json:"session"`
	CreatedAt int64   `json:"created_at"`
}

// Manager loads and saves credentials.
type Manager struct {
	configDir   string
	credentials *Credentials
	mu          sync.RWMutex
}

// DefaultDir returns ~/.planner.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".planner"), nil
}

// NewManager creates a manager rooted at configDir, or DefaultDir when empty.
func NewManager(configDir string) (*Manager, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{configDir: configDir}

	// Missing or unreadable credentials just mean signed out.
	_ = m.loadCredentials()

	return m, nil
}

// IsAuthenticated reports whether a session is saved for apiAddr.
func (m *Manager) IsAuthenticated(apiAddr string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.credentials == nil || m.credentials.Session.Token == "" {
		return false
	}
	return m.credentials.Session.APIAddr == apiAddr
}

// GetSession returns the saved session, if any.
func (m *Manager) GetSession() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.credentials == nil {
		return nil
	}
	s := m.credentials.Session
	return &s
}

// TokenFor returns the saved token when it belongs to apiAddr.
func (m *Manager) TokenFor(apiAddr string) string {
	if !m.IsAuthenticated(apiAddr) {
		return ""
	}
	return m.GetSession().Token
}

// UnlockFor returns the saved app lock pass when it belongs to apiAddr.
func (m *Manager) UnlockFor(apiAddr string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.credentials == nil || m.credentials.Session.APIAddr != apiAddr {
		return ""
	}
	return m.credentials.Session.UnlockToken
}

// Save replaces the saved session.
func (m *Manager) Save(s Session) error {
	m.mu.Lock()
	m.credentials = &Credentials{
		Session:   s,
		CreatedAt: time.Now().Unix(),
	}
	m.mu.Unlock()

	if err := m.saveCredentials(); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Logout clears the saved session.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.credentials = nil
	m.mu.Unlock()

	if err := os.Remove(m.credentialsPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	return nil
}

// credentialsPath returns the path to the credentials file.
func (m *Manager) credentialsPath() string {
	return filepath.Join(m.configDir, CredentialsFile)
}

// loadCredentials loads credentials from disk.
func (m *Manager) loadCredentials() error {
	data, err := os.ReadFile(m.credentialsPath())
	if err != nil {
		return err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return err
	}

	m.mu.Lock()
	m.credentials = &creds
	m.mu.Unlock()

	return nil
}

// saveCredentials saves credentials to disk.
func (m *Manager) saveCredentials() error {
	m.mu.RLock()
	creds := m.credentials
	m.mu.RUnlock()

	if creds == nil {
		return nil
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(m.credentialsPath(), data, 0600)
}
