// Package session persists client-side state between invocations: the
// bearer token, the UI theme preference, and a snapshot of the authenticated
// user. It is the CLI counterpart of the browser's localStorage plus the
// persisted user store.
package session

import (
	"encoding/json"

	"github.com/vidconv/vidconv/pkg/models"
)

// Storage keys, kept identical to the web client's.
const (
	KeyToken = "token"
	KeyTheme = "theme"
	KeyUser  = "user-storage"
)

// Store is a small persisted key/value store. Implementations must be safe
// for use from multiple goroutines.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Token returns the persisted bearer token, empty when not logged in.
func Token(s Store) string {
	v, _ := s.Get(KeyToken)
	return v
}

// SetToken persists the bearer token.
func SetToken(s Store, token string) error {
	return s.Set(KeyToken, token)
}

// ClearToken removes the bearer token.
func ClearToken(s Store) error {
	return s.Delete(KeyToken)
}

// Theme returns the persisted theme preference, defaulting to light.
func Theme(s Store) string {
	v, ok := s.Get(KeyTheme)
	if !ok || (v != "dark" && v != "light") {
		return "light"
	}
	return v
}

// SetTheme persists the theme preference.
func SetTheme(s Store, theme string) error {
	return s.Set(KeyTheme, theme)
}

// User returns the persisted snapshot of the authenticated user, nil when
// absent or unreadable.
func User(s Store) *models.User {
	v, ok := s.Get(KeyUser)
	if !ok {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(v), &u); err != nil {
		return nil
	}
	return &u
}

// SetUser persists a snapshot of the authenticated user.
func SetUser(s Store, u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.Set(KeyUser, string(data))
}

// ClearUser removes the persisted user snapshot.
func ClearUser(s Store) error {
	return s.Delete(KeyUser)
}

// Clear removes everything tied to a login: token and user snapshot. The
// theme preference survives logout.
func Clear(s Store) error {
	if err := ClearToken(s); err != nil {
		return err
	}
	return ClearUser(s)
}
