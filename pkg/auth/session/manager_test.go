package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
	ttls   map[string]time.Duration
	setErr error
	getErr error
	delErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	if f.delErr != nil {
		return f.delErr
	}
	for _, k := range keys {
		delete(f.values, k)
		delete(f.ttls, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string {
	return "session:" + accessID
}

func newTestManager(store *fakeStore) *Manager {
	return &Manager{
		store: store,
		keyer: fakeKeyer{},
		ttl:   time.Hour,
	}
}

func TestGenerateStoresToken(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)

	token, err := m.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if token == "" {
		t.Fatal("Generate returned empty token")
	}
	if got := store.values["session:access-1"]; got != token {
		t.Fatalf("stored token = %q, want %q", got, token)
	}
	if store.ttls["session:access-1"] != time.Hour {
		t.Fatalf("stored ttl = %v, want %v", store.ttls["session:access-1"], time.Hour)
	}
}

func TestGenerateRequiresAccessID(t *testing.T) {
	m := newTestManager(newFakeStore())
	if _, err := m.Generate(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}

func TestRotateIssuesNewPairAndInvalidatesOld(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)

	token, err := m.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	newAccessID, newToken, err := m.Rotate(context.Background(), "access-1", token)
	if err != nil {
		t.Fatalf("Rotate returned error: %v", err)
	}
	if newAccessID == "" || newAccessID == "access-1" {
		t.Fatalf("unexpected new access id %q", newAccessID)
	}
	if newToken == "" || newToken == token {
		t.Fatal("expected a fresh refresh token")
	}
	if _, ok := store.values["session:access-1"]; ok {
		t.Fatal("old session should have been deleted")
	}
	if got := store.values["session:"+newAccessID]; got != newToken {
		t.Fatalf("new session token = %q, want %q", got, newToken)
	}
}

func TestRotateRejectsMismatchedToken(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)

	if _, err := m.Generate(context.Background(), "access-1"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if _, _, err := m.Rotate(context.Background(), "access-1", "bogus"); err != ErrInvalidRefreshToken {
		t.Fatalf("Rotate error = %v, want ErrInvalidRefreshToken", err)
	}
	if _, ok := store.values["session:access-1"]; !ok {
		t.Fatal("session should survive a failed rotation")
	}
}

func TestRotateUnknownSession(t *testing.T) {
	m := newTestManager(newFakeStore())
	if _, _, err := m.Rotate(context.Background(), "missing", "token"); err != ErrInvalidRefreshToken {
		t.Fatalf("Rotate error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestRevokeDeletesSession(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)

	if _, err := m.Generate(context.Background(), "access-1"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if err := m.Revoke(context.Background(), "access-1"); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if _, ok := store.values["session:access-1"]; ok {
		t.Fatal("session should be gone after Revoke")
	}
}

func TestHasSession(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)

	ok, err := m.HasSession(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("HasSession returned error: %v", err)
	}
	if ok {
		t.Fatal("expected no session before Generate")
	}

	if _, err := m.Generate(context.Background(), "access-1"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	ok, err = m.HasSession(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("HasSession returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected an active session after Generate")
	}
}
