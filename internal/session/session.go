// package session persists the authentication record and exposes it through an explicitly passed [Context].
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
)

// StorageKey is the local storage key holding the session record.
const StorageKey = "resonate_auth"

// Storage is the persistence contract the session store needs (see repositories.LocalStorage).
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// record is the persisted JSON shape: {"user": {...,"isvip": 0|1}, "token": "..."}.
type record struct {
	User struct {
		UID      json.RawMessage `json:"uid"`
		Username string          `json:"username,omitempty"`
		Email    string          `json:"email,omitempty"`
		IsVIP    int             `json:"isvip"`
	} `json:"user"`
	Token string `json:"token"`
}

// Store reads and writes the session record.
type Store struct {
	storage Storage
	logger  *log.Logger
}

// NewStore creates a [Store] over the given storage.
func NewStore(storage Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{storage: storage, logger: shared.WithLogger(logger, "component", "session")}
}

// Load returns the persisted session, or nil when none exists.
//
// An unparsable or incomplete record is removed and treated as logged out.
func (s *Store) Load() (*models.Session, error) {
	raw, err := s.storage.Get(StorageKey)
	if errors.Is(err, shared.ErrStorageKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess, err := Decode([]byte(raw))
	if err != nil {
		s.logger.Warn("discarding persisted session", "error", err)
		if rmErr := s.storage.Remove(StorageKey); rmErr != nil {
			return nil, fmt.Errorf("failed to clear invalid session: %w", rmErr)
		}
		return nil, nil
	}

	return sess, nil
}

// Save persists sess. An invalid session clears the record instead, mirroring a failed login.
func (s *Store) Save(sess *models.Session) error {
	if !sess.Valid() {
		return s.Clear()
	}

	data, err := Encode(*sess)
	if err != nil {
		return err
	}

	if err := s.storage.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the persisted record.
func (s *Store) Clear() error {
	if err := s.storage.Remove(StorageKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Encode renders a session in its persisted form.
func Encode(sess models.Session) ([]byte, error) {
	var r record
	r.User.UID = json.RawMessage(strconv.Quote(sess.User.UID))
	r.User.Username = sess.User.Username
	r.User.Email = sess.User.Email
	if sess.User.IsVIP {
		r.User.IsVIP = 1
	}
	r.Token = sess.Token

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

// Decode parses a persisted record. The uid may be a JSON string or number.
func Decode(data []byte) (*models.Session, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidSession, err)
	}

	sess := &models.Session{
		User: models.AuthUser{
			UID:      normalizeUID(r.User.UID),
			Username: r.User.Username,
			Email:    r.User.Email,
			IsVIP:    r.User.IsVIP == 1,
		},
		Token: r.Token,
	}

	if !sess.Valid() {
		return nil, fmt.Errorf("%w: missing uid or token", shared.ErrInvalidSession)
	}
	return sess, nil
}

func normalizeUID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Context holds the current session for the whole process.
//
// It is created once at startup from persisted storage and handed to every component that needs identity.
// Only auth flows replace or clear it; everything else reads.
type Context struct {
	mu      sync.RWMutex
	current *models.Session
	store   *Store
	onSwap  []func(prev, next *models.Session)
}

// NewContext loads the persisted session (if any) into a new [Context].
func NewContext(store *Store) (*Context, error) {
	sess, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Context{current: sess, store: store}, nil
}

// Session returns a copy of the current session, or nil when logged out.
func (c *Context) Session() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	cp := *c.current
	return &cp
}

// UserID returns the current uid, or "" when logged out.
func (c *Context) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ""
	}
	return c.current.User.UID
}

// Authenticated reports whether a valid session is present.
func (c *Context) Authenticated() bool {
	return c.UserID() != ""
}

// OnChange registers fn to run after every Replace or Clear.
func (c *Context) OnChange(fn func(prev, next *models.Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSwap = append(c.onSwap, fn)
}

// Replace swaps in sess wholesale and persists it. An invalid session logs out.
func (c *Context) Replace(sess models.Session) error {
	if !sess.Valid() {
		return c.Clear()
	}
	if err := c.store.Save(&sess); err != nil {
		return err
	}
	c.swap(&sess)
	return nil
}

// Clear logs out: the persisted record is removed and the in-memory session dropped.
func (c *Context) Clear() error {
	if err := c.store.Clear(); err != nil {
		return err
	}
	c.swap(nil)
	return nil
}

func (c *Context) swap(next *models.Session) {
	c.mu.Lock()
	prev := c.current
	c.current = next
	hooks := append([]func(prev, next *models.Session){}, c.onSwap...)
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(prev, next)
	}
}
