package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
)

// memoryStorage is an in-memory [Storage] used to observe persisted records.
type memoryStorage struct {
	values map[string]string
	setErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{values: map[string]string{}}
}

func (m *memoryStorage) Get(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrStorageKeyNotFound, key)
	}
	return v, nil
}

func (m *memoryStorage) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memoryStorage) Remove(key string) error {
	delete(m.values, key)
	return nil
}

func TestDecode(t *testing.T) {
	tc := []struct {
		name    string
		raw     string
		wantUID string
		wantVIP bool
		wantErr bool
	}{
		{name: "string uid", raw: `{"user":{"uid":"42","email":"a@b.c","isvip":0},"token":"t"}`, wantUID: "42"},
		{name: "numeric uid", raw: `{"user":{"uid":42,"isvip":1},"token":"t"}`, wantUID: "42", wantVIP: true},
		{name: "missing token", raw: `{"user":{"uid":"42"}}`, wantErr: true},
		{name: "missing uid", raw: `{"user":{},"token":"t"}`, wantErr: true},
		{name: "garbage", raw: `not json`, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := Decode([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidSession) {
					t.Fatalf("expected ErrInvalidSession, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sess.User.UID != tt.wantUID {
				t.Errorf("uid = %q, want %q", sess.User.UID, tt.wantUID)
			}
			if sess.User.IsVIP != tt.wantVIP {
				t.Errorf("isvip = %v, want %v", sess.User.IsVIP, tt.wantVIP)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := models.Session{User: models.AuthUser{UID: "7", Username: "ana", Email: "ana@x.io", IsVIP: true}, Token: "tok"}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if *out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", *out, in)
	}
}

func TestStore(t *testing.T) {
	t.Run("Load Empty", func(t *testing.T) {
		sess, err := NewStore(newMemoryStorage(), nil).Load()
		if err != nil || sess != nil {
			t.Errorf("expected nil session and no error, got %v, %v", sess, err)
		}
	})

	t.Run("Load Invalid Removes Record", func(t *testing.T) {
		storage := newMemoryStorage()
		storage.values[StorageKey] = `{"user":{"uid":"1"}}`

		sess, err := NewStore(storage, nil).Load()
		if err != nil || sess != nil {
			t.Fatalf("expected logged-out result, got %v, %v", sess, err)
		}
		if _, ok := storage.values[StorageKey]; ok {
			t.Error("expected invalid record to be removed")
		}
	})

	t.Run("Save Invalid Clears", func(t *testing.T) {
		storage := newMemoryStorage()
		storage.values[StorageKey] = "stale"

		if err := NewStore(storage, nil).Save(&models.Session{User: models.AuthUser{UID: "1"}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := storage.values[StorageKey]; ok {
			t.Error("expected record to be cleared")
		}
	})
}

func TestContext(t *testing.T) {
	valid := models.Session{User: models.AuthUser{UID: "5", Email: "e@x.io"}, Token: "tok"}

	t.Run("Starts From Storage", func(t *testing.T) {
		storage := newMemoryStorage()
		data, _ := Encode(valid)
		storage.values[StorageKey] = string(data)

		c, err := NewContext(NewStore(storage, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.UserID() != "5" || !c.Authenticated() {
			t.Errorf("expected uid 5 loaded, got %q", c.UserID())
		}
	})

	t.Run("Replace And Clear", func(t *testing.T) {
		storage := newMemoryStorage()
		c, _ := NewContext(NewStore(storage, nil))

		var changes int
		c.OnChange(func(prev, next *models.Session) { changes++ })

		if err := c.Replace(valid); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		if _, ok := storage.values[StorageKey]; !ok {
			t.Error("expected session persisted")
		}

		got := c.Session()
		got.Token = "mutated"
		if c.Session().Token != "tok" {
			t.Error("Session should return a copy")
		}

		if err := c.Clear(); err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		if c.Session() != nil || c.UserID() != "" {
			t.Error("expected logged out after clear")
		}
		if _, ok := storage.values[StorageKey]; ok {
			t.Error("expected persisted record removed")
		}
		if changes != 2 {
			t.Errorf("expected 2 change notifications, got %d", changes)
		}
	})

	t.Run("Replace With Invalid Logs Out", func(t *testing.T) {
		c, _ := NewContext(NewStore(newMemoryStorage(), nil))
		_ = c.Replace(valid)
		if err := c.Replace(models.Session{User: models.AuthUser{UID: "5"}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Authenticated() {
			t.Error("expected logged out")
		}
	})

	t.Run("Persist Failure Keeps Previous", func(t *testing.T) {
		storage := newMemoryStorage()
		c, _ := NewContext(NewStore(storage, nil))
		storage.setErr = errors.New("disk full")

		if err := c.Replace(valid); err == nil {
			t.Fatal("expected error")
		}
		if c.Authenticated() {
			t.Error("session should not change when persistence fails")
		}
	})
}
