package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/riskibarqy/nhl-pickem/internal/domain/user"
	"github.com/riskibarqy/nhl-pickem/internal/platform/id"
	"github.com/riskibarqy/nhl-pickem/internal/usecase"
)

// Rejection messages mirror the hosted identity provider so clients see the same codes.
const (
	msgEmailExists     = "EMAIL_EXISTS"
	msgEmailNotFound   = "EMAIL_NOT_FOUND"
	msgInvalidPassword = "INVALID_PASSWORD"
	msgWeakPassword    = "WEAK_PASSWORD : Password should be at least 6 characters"
	minPasswordLength  = 6
)

type account struct {
	userID       string
	email        string
	passwordHash []byte
}

// IdentityProvider keeps accounts and sessions in process memory. It is meant for local
// development and tests.
type IdentityProvider struct {
	mu       sync.RWMutex
	byEmail  map[string]account
	sessions map[string]user.Principal
	userIDs  id.Generator
	tokens   id.Generator
	cost     int
}

var _ user.IdentityProvider = (*IdentityProvider)(nil)

func NewIdentityProvider() *IdentityProvider {
	return &IdentityProvider{
		byEmail:  make(map[string]account),
		sessions: make(map[string]user.Principal),
		userIDs:  id.NewUUIDGenerator(""),
		tokens:   id.NewUUIDGenerator("tok"),
		cost:     bcrypt.DefaultCost,
	}
}

func (p *IdentityProvider) SignUp(_ context.Context, email, password string) (user.Session, error) {
	email = normalizeEmail(email)
	if len(password) < minPasswordLength {
		return user.Session{}, &usecase.AuthError{Message: msgWeakPassword}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return user.Session{}, fmt.Errorf("hash password: %w", err)
	}
	userID, err := p.userIDs.NewID()
	if err != nil {
		return user.Session{}, err
	}

	p.mu.Lock()
	if _, exists := p.byEmail[email]; exists {
		p.mu.Unlock()
		return user.Session{}, &usecase.AuthError{Message: msgEmailExists}
	}
	acct := account{userID: userID, email: email, passwordHash: hash}
	p.byEmail[email] = acct
	p.mu.Unlock()

	return p.issue(acct)
}

func (p *IdentityProvider) SignIn(_ context.Context, email, password string) (user.Session, error) {
	email = normalizeEmail(email)

	p.mu.RLock()
	acct, exists := p.byEmail[email]
	p.mu.RUnlock()
	if !exists {
		return user.Session{}, &usecase.AuthError{Message: msgEmailNotFound}
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return user.Session{}, &usecase.AuthError{Message: msgInvalidPassword}
	}

	return p.issue(acct)
}

func (p *IdentityProvider) VerifyToken(_ context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)

	p.mu.RLock()
	principal, ok := p.sessions[token]
	p.mu.RUnlock()
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown session token", usecase.ErrUnauthorized)
	}
	return principal, nil
}

func (p *IdentityProvider) issue(acct account) (user.Session, error) {
	token, err := p.tokens.NewID()
	if err != nil {
		return user.Session{}, err
	}

	p.mu.Lock()
	p.sessions[token] = user.Principal{UserID: acct.userID, Email: acct.email}
	p.mu.Unlock()

	return user.Session{UserID: acct.userID, Email: acct.email, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
