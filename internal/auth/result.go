package auth

// AuthorizationResult is the outcome of the admin gate: exactly one of
// Authorized, Denied or CheckFailed.
type AuthorizationResult interface {
	isAuthorizationResult()
}

type Authorized struct {
	Session Session
}

type DenyReason string

const (
	NoSession DenyReason = "no_session"
	NotAdmin  DenyReason = "not_admin"
)

type Denied struct {
	Reason DenyReason
}

// CheckFailed means the role check itself errored; the session has been signed out.
type CheckFailed struct {
	Err error
}

func (Authorized) isAuthorizationResult()  {}
func (Denied) isAuthorizationResult()      {}
func (CheckFailed) isAuthorizationResult() {}
