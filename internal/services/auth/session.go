// Package auth manages the login session against the MKfrx auth service.
// The session (user + bearer token) is cached in a local file so a restart
// does not force a fresh login, mirroring how the web client kept it in
// browser storage.
package auth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mkfrx/desk/internal/domain"
)

// ErrAdminSession is returned when an admin account tries to open the
// markets view; admins belong to the dashboard, not the trading screens.
var ErrAdminSession = errors.New("admin accounts cannot use the markets view")

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Signup(ctx context.Context, name, email, password string) (*domain.Session, error)
	SetToken(token string)
}

// Manager owns the current session and its on-disk cache.
type Manager struct {
	client Authenticator
	path   string
	logger *zap.Logger

	session *domain.Session
}

// NewManager creates a manager caching the session at path.
func NewManager(client Authenticator, path string, logger *zap.Logger) *Manager {
	return &Manager{
		client: client,
		path:   path,
		logger: logger.With(zap.String("component", "auth")),
	}
}

// Session returns the current session, or nil when logged out.
func (m *Manager) Session() *domain.Session {
	return m.session
}

// Restore loads a cached session from disk. A missing or unreadable cache is
// not an error: the caller just has to log in.
func (m *Manager) Restore() bool {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		return false
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil || session.Token == "" {
		m.logger.Warn("discarding unreadable session cache", zap.String("path", m.path))
		return false
	}

	m.session = &session
	m.client.SetToken(session.Token)
	m.logger.Info("session restored", zap.String("user", session.User.Email))
	return true
}

// Login authenticates and caches the resulting session.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	session, err := m.client.Login(ctx, email, password)
	if err != nil {
		return errors.Wrap(err, "login")
	}
	return m.adopt(session)
}

// Signup registers a new account and caches its session.
func (m *Manager) Signup(ctx context.Context, name, email, password string) error {
	session, err := m.client.Signup(ctx, name, email, password)
	if err != nil {
		return errors.Wrap(err, "signup")
	}
	return m.adopt(session)
}

func (m *Manager) adopt(session *domain.Session) error {
	if session.User.IsAdmin() {
		return ErrAdminSession
	}

	m.session = session
	if err := m.persist(session); err != nil {
		// The session still works for this run; only the cache failed.
		m.logger.Warn("failed to cache session", zap.Error(err))
	}
	return nil
}

// Logout drops the session and removes the cache file.
func (m *Manager) Logout() {
	m.session = nil
	m.client.SetToken("")
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("failed to remove session cache", zap.Error(err))
	}
}

func (m *Manager) persist(session *domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	return os.WriteFile(m.path, raw, 0o600)
}
