package auth

import (
	"context"
	"errors"

	"github.com/urocare/clinic/internal/logger"
	"go.uber.org/zap"
)

// Authorize runs the admin gate for token: session lookup, then a single
// role check. Any role check outcome other than true signs the session out.
func Authorize(ctx context.Context, g Gate, token, role string) AuthorizationResult {
	s, err := g.Session(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			logger.Log.Warn("session lookup failed", zap.Error(err))
		}
		return Denied{Reason: NoSession}
	}

	ok, err := g.HasRole(ctx, s, role)
	if err != nil {
		signOut(ctx, g, s)
		return CheckFailed{Err: err}
	}
	if !ok {
		signOut(ctx, g, s)
		return Denied{Reason: NotAdmin}
	}
	return Authorized{Session: s}
}

func signOut(ctx context.Context, g Gate, s Session) {
	if err := g.SignOut(ctx, s); err != nil {
		logger.Log.Warn("sign out failed", zap.String("user_id", s.UserID), zap.Error(err))
	}
}
