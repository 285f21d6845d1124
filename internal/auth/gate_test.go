package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestHTTPGate_Session_Valid(t *testing.T) {
	token := signedToken(t, "u1", time.Now().Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "u1", "email": "dr@clinic.example"})
	}))
	defer srv.Close()

	g := NewHTTPGate(srv.URL, "anon", 1000)
	s, err := g.Session(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "dr@clinic.example", s.Email)
	assert.Equal(t, token, s.AccessToken)
	assert.False(t, s.ExpiresAt.IsZero())
}

func TestHTTPGate_Session_RejectedLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	g := NewHTTPGate(srv.URL, "anon", 1000)

	_, err := g.Session(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = g.Session(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = g.Session(context.Background(), signedToken(t, "u1", time.Now().Add(-time.Minute)))
	assert.ErrorIs(t, err, ErrNoSession)

	assert.False(t, called, "invalid tokens never reach the auth service")
}

func TestHTTPGate_Session_UnauthorizedUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewHTTPGate(srv.URL, "anon", 1000)
	_, err := g.Session(context.Background(), signedToken(t, "u1", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestHTTPGate_HasRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/rpc/has_role", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin", body["_role"])
		_, _ = w.Write([]byte(`true`))
	}))
	defer srv.Close()

	g := NewHTTPGate(srv.URL, "anon", 1000)
	ok, err := g.HasRole(context.Background(), Session{UserID: "u1", AccessToken: "t"}, "admin")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHTTPGate_HasRole_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewHTTPGate(srv.URL, "anon", 1000)
	ok, err := g.HasRole(context.Background(), Session{UserID: "u1", AccessToken: "t"}, "admin")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrGate))
}

func TestHTTPGate_SignOut(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := NewHTTPGate(srv.URL, "anon", 1000)
	require.NoError(t, g.SignOut(context.Background(), Session{AccessToken: "t"}))
	assert.Equal(t, "/auth/v1/logout", path)
}
