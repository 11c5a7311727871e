package user

import "context"

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
}

// Session is returned by a successful sign up or sign in.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// IdentityProvider is the external account service.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	VerifyToken(ctx context.Context, token string) (Principal, error)
}
