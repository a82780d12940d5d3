package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrms/internal/domain/auth"
)

type fakeSessionStore struct {
	valid   map[string]bool
	revoked map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{valid: map[string]bool{}, revoked: map[string]bool{}}
}

func (f *fakeSessionStore) CreateSession(_ context.Context, userID, tokenHash string, _ time.Time) error {
	f.valid[userID+":"+tokenHash] = true
	return nil
}

func (f *fakeSessionStore) SessionValid(_ context.Context, userID, tokenHash string) (bool, error) {
	key := userID + ":" + tokenHash
	return f.valid[key] && !f.revoked[key], nil
}

func (f *fakeSessionStore) RevokeSession(_ context.Context, userID, tokenHash string) error {
	f.revoked[userID+":"+tokenHash] = true
	return nil
}

func identityProbe(t *testing.T, gotUser *auth.UserContext, gotOK *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUser, *gotOK = GetUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthResolvesLiveSession(t *testing.T) {
	secret := "test-secret"
	sessions := newFakeSessionStore()
	sessionID, err := auth.NewSessionID()
	if err != nil {
		t.Fatalf("session id error: %v", err)
	}
	if err := sessions.CreateSession(context.Background(), "u1", auth.HashToken(sessionID), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create session: %v", err)
	}

	token, err := auth.GenerateToken(secret, auth.Claims{
		UserID: "u1", Email: "u1@example.com", CompanyID: "c1", Role: auth.RoleEmployee, SessionID: sessionID,
	}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	var gotUser auth.UserContext
	var gotOK bool
	handler := Auth(secret, sessions)(identityProbe(t, &gotUser, &gotOK))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !gotOK {
		t.Fatal("expected user context to be attached")
	}
	if gotUser.UserID != "u1" || gotUser.CompanyID != "c1" || gotUser.Role != auth.RoleEmployee {
		t.Fatalf("unexpected user context: %+v", gotUser)
	}
}

func TestAuthIgnoresRevokedSession(t *testing.T) {
	secret := "test-secret"
	sessions := newFakeSessionStore()
	sessionID, _ := auth.NewSessionID()
	hash := auth.HashToken(sessionID)
	_ = sessions.CreateSession(context.Background(), "u1", hash, time.Now().Add(time.Hour))
	_ = sessions.RevokeSession(context.Background(), "u1", hash)

	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", SessionID: sessionID}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	var gotUser auth.UserContext
	var gotOK bool
	handler := Auth(secret, sessions)(identityProbe(t, &gotUser, &gotOK))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if gotOK {
		t.Fatalf("revoked session must not authenticate: %+v", gotUser)
	}
}

func TestAuthIgnoresGarbageTokens(t *testing.T) {
	var gotUser auth.UserContext
	var gotOK bool
	handler := Auth("test-secret", newFakeSessionStore())(identityProbe(t, &gotUser, &gotOK))

	for _, header := range []string{"", "Bearer not-a-jwt", "Basic abc", "Bearer"} {
		gotOK = false
		r := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), r)
		if gotOK {
			t.Fatalf("header %q must not authenticate", header)
		}
	}
}
