package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/urocare/clinic/internal/logger"
	"go.uber.org/zap"
)

var (
	ErrNoSession = errors.New("no active session")
	ErrGate      = errors.New("auth gate request failed")
)

// Session is the signed-in admin as reported by the auth service.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// Gate is the auth collaborator consumed by the admin workflow.
type Gate interface {
	Session(ctx context.Context, token string) (Session, error)
	HasRole(ctx context.Context, s Session, role string) (bool, error)
	SignOut(ctx context.Context, s Session) error
}

// HTTPGate talks to a GoTrue-compatible auth service and the has_role RPC.
type HTTPGate struct {
	baseURL string
	apiKey  string
	client  *http.Client
	parser  *jwt.Parser
	now     func() time.Time
}

var _ Gate = (*HTTPGate)(nil)

func NewHTTPGate(baseURL, apiKey string, timeoutMs int) *HTTPGate {
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	return &HTTPGate{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		parser:  jwt.NewParser(),
		now:     time.Now,
	}
}

// Session validates token. Malformed or expired tokens are rejected locally
// from their claims; the signature is checked by the auth service, which
// also confirms the user still exists.
func (g *HTTPGate) Session(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrNoSession
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := g.parser.ParseUnverified(token, &claims); err != nil {
		return Session{}, ErrNoSession
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(g.now()) {
		return Session{}, ErrNoSession
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	status, err := g.send(ctx, http.MethodGet, "/auth/v1/user", token, nil, &user)
	if err != nil {
		return Session{}, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden || user.ID == "" {
		return Session{}, ErrNoSession
	}
	if status/100 != 2 {
		return Session{}, fmt.Errorf("%w: get user status=%d", ErrGate, status)
	}

	s := Session{UserID: user.ID, Email: user.Email, AccessToken: token}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// HasRole calls the has_role(_user_id, _role) remote procedure.
func (g *HTTPGate) HasRole(ctx context.Context, s Session, role string) (bool, error) {
	body := map[string]string{"_user_id": s.UserID, "_role": role}

	var ok bool
	status, err := g.send(ctx, http.MethodPost, "/rest/v1/rpc/has_role", s.AccessToken, body, &ok)
	if err != nil {
		return false, err
	}
	if status/100 != 2 {
		return false, fmt.Errorf("%w: has_role status=%d", ErrGate, status)
	}
	return ok, nil
}

// SignOut revokes the session. A session the service no longer knows counts as signed out.
func (g *HTTPGate) SignOut(ctx context.Context, s Session) error {
	status, err := g.send(ctx, http.MethodPost, "/auth/v1/logout", s.AccessToken, nil, nil)
	if err != nil {
		return err
	}
	if status/100 != 2 && status != http.StatusUnauthorized && status != http.StatusNotFound {
		return fmt.Errorf("%w: logout status=%d", ErrGate, status)
	}
	return nil
}

func (g *HTTPGate) send(ctx context.Context, method, path, token string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return 0, err
	}

	req.Header.Set("apikey", g.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := g.client.Do(req)
	if err != nil {
		logger.Log.Warn("auth gate call failed", zap.String("path", path), zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrGate, err)
	}

	defer res.Body.Close()

	if res.StatusCode/100 == 2 && out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return res.StatusCode, fmt.Errorf("%w: decode %s: %v", ErrGate, path, err)
		}
		return res.StatusCode, nil
	}

	_, _ = io.Copy(io.Discard, res.Body)
	return res.StatusCode, nil
}
