package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/profile"
	"github.com/riskibarqy/nhl-pickem/internal/domain/user"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
)

type AccountService struct {
	identity    user.IdentityProvider
	profileRepo profile.Repository
	logger      *logging.Logger
	now         func() time.Time
}

type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
}

type SignInInput struct {
	Email    string
	Password string
}

func NewAccountService(identity user.IdentityProvider, profileRepo profile.Repository, logger *logging.Logger) *AccountService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AccountService{
		identity:    identity,
		profileRepo: profileRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// SignUp creates the account and its profile. The display name defaults to the email.
func (s *AccountService) SignUp(ctx context.Context, input SignUpInput) (session user.Session, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AccountService.SignUp")
	defer func() { endSpan(span, err) }()

	email, password, err := credentials(input.Email, input.Password)
	if err != nil {
		return user.Session{}, err
	}

	session, err = s.identity.SignUp(ctx, email, password)
	if err != nil {
		return user.Session{}, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = email
	}
	if err := s.ensureProfile(ctx, session.UserID, displayName); err != nil {
		return user.Session{}, err
	}

	s.logger.InfoContext(ctx, "account signed up", "user_id", session.UserID)
	return session, nil
}

// SignIn authenticates and backfills a profile for accounts created elsewhere.
func (s *AccountService) SignIn(ctx context.Context, input SignInInput) (session user.Session, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AccountService.SignIn")
	defer func() { endSpan(span, err) }()

	email, password, err := credentials(input.Email, input.Password)
	if err != nil {
		return user.Session{}, err
	}

	session, err = s.identity.SignIn(ctx, email, password)
	if err != nil {
		return user.Session{}, err
	}
	if err := s.ensureProfile(ctx, session.UserID, email); err != nil {
		return user.Session{}, err
	}

	return session, nil
}

// Authenticate resolves a bearer token to its principal.
func (s *AccountService) Authenticate(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", ErrUnauthorized)
	}
	return s.identity.VerifyToken(ctx, token)
}

// DisplayName falls back to userID when no profile exists.
func (s *AccountService) DisplayName(ctx context.Context, userID string) (string, error) {
	p, exists, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get profile user=%s: %w", userID, err)
	}
	if !exists {
		return userID, nil
	}
	return p.NameOrID(userID), nil
}

func (s *AccountService) ensureProfile(ctx context.Context, userID, displayName string) error {
	p := profile.Profile{
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   s.now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.profileRepo.CreateIfAbsent(ctx, p)
	if err != nil {
		return fmt.Errorf("ensure profile user=%s: %w", userID, err)
	}
	if created {
		s.logger.InfoContext(ctx, "profile created", "user_id", userID)
	}
	return nil
}

func credentials(email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", "", fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if password == "" {
		return "", "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return email, password, nil
}
