//go:build js && wasm

package dom

import (
	"fmt"
	"syscall/js"
)

// SessionStore persists editor state in the page's sessionStorage, so a
// reload within the same tab resumes the session.
type SessionStore struct {
	storage js.Value
}

// NewSessionStore returns a SessionStore over window.sessionStorage.
func NewSessionStore() (*SessionStore, error) {
	storage := js.Global().Get("sessionStorage")
	if storage.IsUndefined() {
		return nil, fmt.Errorf("sessionStorage is not available")
	}
	return &SessionStore{storage: storage}, nil
}

func (s *SessionStore) Get(key string) (string, bool, error) {
	value := s.storage.Call("getItem", key)
	if value.IsNull() {
		return "", false, nil
	}
	return value.String(), true, nil
}

func (s *SessionStore) Set(key, value string) error {
	s.storage.Call("setItem", key, value)
	return nil
}

func (s *SessionStore) Clear() error {
	s.storage.Call("clear")
	return nil
}
