// Package flash carries one-shot status messages across a redirect using a
// signed cookie session. Mutating handlers add a message and redirect; the
// next page render pops and displays it.
package flash

import (
	"encoding/gob"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Message levels, used as CSS modifiers in templates.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// DefaultName is the cookie name used when none is configured.
const DefaultName = "inclouds-session"

// Message is a single flash entry.
type Message struct {
	Level string
	Text  string
}

func init() {
	gob.Register(Message{})
}

// ConfigError is returned when the session configuration is unusable.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Manager reads and writes flash messages.
type Manager struct {
	store  *sessions.CookieStore
	name   string
	logger *zap.Logger
}

// New creates a Manager. A weak key is rejected when secure is set and
// only logged otherwise.
func New(sessionKey, name string, secure bool, logger *zap.Logger) (*Manager, error) {
	if sessionKey == "" {
		return nil, &ConfigError{Message: "session key is empty; provide ≥32 random chars"}
	}
	weak := len(sessionKey) < 32 || isDefaultKey(sessionKey)
	if weak && secure {
		return nil, &ConfigError{Message: "session key is too weak for production; provide ≥32 random chars"}
	}
	if weak {
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{store: store, name: name, logger: logger}, nil
}

// Name returns the cookie name.
func (m *Manager) Name() string {
	return m.name
}

// Add queues a message for the next page render. It must be called before
// anything is written to w.
func (m *Manager) Add(w http.ResponseWriter, r *http.Request, level, text string) {
	if m == nil {
		return
	}
	sess := m.session(r)
	sess.AddFlash(Message{Level: level, Text: text})
	if err := sess.Save(r, w); err != nil {
		m.logger.Warn("flash save failed", zap.Error(err))
	}
}

// Success queues a success message.
func (m *Manager) Success(w http.ResponseWriter, r *http.Request, text string) {
	m.Add(w, r, LevelSuccess, text)
}

// Error queues an error message.
func (m *Manager) Error(w http.ResponseWriter, r *http.Request, text string) {
	m.Add(w, r, LevelError, text)
}

// Pop returns and clears pending messages.
func (m *Manager) Pop(w http.ResponseWriter, r *http.Request) []Message {
	if m == nil {
		return nil
	}
	sess := m.session(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		m.logger.Warn("flash save failed", zap.Error(err))
	}
	out := make([]Message, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(Message); ok {
			out = append(out, msg)
		}
	}
	return out
}

// session returns the request's session. An undecodable cookie (rotated key,
// tampering) yields a fresh session rather than an error.
func (m *Manager) session(r *http.Request) *sessions.Session {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.logger.Debug("discarding undecodable flash cookie", zap.Error(err))
		} else {
			m.logger.Warn("flash session error", zap.Error(err))
		}
	}
	return sess
}

func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range []string{"dev-only", "change-me", "placeholder", "default", "example", "insecure", "test-key"} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
