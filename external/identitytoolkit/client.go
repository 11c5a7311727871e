package identitytoolkit

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nhl-pickem/internal/domain/user"
	"github.com/riskibarqy/nhl-pickem/internal/platform/cache"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nhl-pickem/internal/platform/resilience"
	"github.com/riskibarqy/nhl-pickem/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"
	pathSignUp     = "/accounts:signUp"
	pathSignIn     = "/accounts:signInWithPassword"
	pathLookup     = "/accounts:lookup"
	maxBodyBytes   = 1 << 20
)

var errIdentityTransient = crerr.New("identity provider transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	PrincipalTTL   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the Identity Toolkit REST API with email/password accounts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	principals *cache.Store
}

var _ user.IdentityProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("identity")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	var principals *cache.Store
	if cfg.PrincipalTTL > 0 {
		principals = cache.NewStore(cfg.PrincipalTTL)
	}

	breaker := resilience.NewCircuitBreaker("identity", cfg.CircuitBreaker)
	breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logger:     logger,
		breaker:    breaker,
		principals: principals,
	}
}

func (c *Client) SignUp(ctx context.Context, email, password string) (user.Session, error) {
	return c.passwordCall(ctx, pathSignUp, email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (user.Session, error) {
	return c.passwordCall(ctx, pathSignIn, email, password)
}

// VerifyToken resolves an id token through accounts:lookup. Results are cached by
// token hash when a principal ttl is configured.
func (c *Client) VerifyToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}
	if c.principals == nil {
		return c.lookup(ctx, token)
	}
	return cache.Load(ctx, c.principals, hashToken(token), func(ctx context.Context) (user.Principal, error) {
		return c.lookup(ctx, token)
	})
}

func (c *Client) lookup(ctx context.Context, token string) (user.Principal, error) {
	var decoded lookupResponse
	if err := c.post(ctx, pathLookup, lookupRequest{IDToken: token}, &decoded); err != nil {
		var authErr *usecase.AuthError
		if crerr.As(err, &authErr) {
			return user.Principal{}, fmt.Errorf("%w: %s", usecase.ErrUnauthorized, authErr.Message)
		}
		return user.Principal{}, err
	}
	if len(decoded.Users) == 0 || strings.TrimSpace(decoded.Users[0].LocalID) == "" {
		return user.Principal{}, fmt.Errorf("%w: token does not belong to an account", usecase.ErrUnauthorized)
	}
	account := decoded.Users[0]
	if account.Disabled {
		return user.Principal{}, fmt.Errorf("%w: account is disabled", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: account.LocalID, Email: account.Email}, nil
}

func (c *Client) passwordCall(ctx context.Context, path, email, password string) (user.Session, error) {
	var decoded passwordResponse
	err := c.post(ctx, path, passwordRequest{Email: email, Password: password, ReturnSecureToken: true}, &decoded)
	if err != nil {
		return user.Session{}, err
	}
	if strings.TrimSpace(decoded.LocalID) == "" || strings.TrimSpace(decoded.IDToken) == "" {
		return user.Session{}, crerr.Newf("identity response for %s is missing localId or idToken", path)
	}

	sessionEmail := decoded.Email
	if sessionEmail == "" {
		sessionEmail = email
	}
	return user.Session{UserID: decoded.LocalID, Email: sessionEmail, Token: decoded.IDToken}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, target any) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: identity api key is not configured", usecase.ErrDependencyUnavailable)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return crerr.Wrap(err, "encode identity request")
	}

	var raw []byte
	err := c.breaker.Execute(func() error {
		var reqErr error
		raw, reqErr = c.execute(ctx, path, buf.Bytes())
		return reqErr
	}, isIdentityCircuitFailure)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "circuit breaker rejected request", "path", path)
		return fmt.Errorf("%w: identity provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode identity response")
	}
	return nil
}

func (c *Client) execute(ctx context.Context, path string, body []byte) ([]byte, error) {
	endpoint := c.baseURL + path + "?" + url.Values{"key": {c.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, crerr.Wrap(err, "build identity request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WarnContext(ctx, "identity request failed", "path", path, "error", redactKey(err.Error(), c.apiKey))
		return nil, crerr.Mark(crerr.Newf("send identity request %s", path), errIdentityTransient)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "read identity response"), errIdentityTransient)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		c.logger.WarnContext(ctx, "identity provider non-2xx", "path", path, "status_code", resp.StatusCode)
		return nil, crerr.Mark(crerr.Newf("identity provider status=%d", resp.StatusCode), errIdentityTransient)
	default:
		return nil, &usecase.AuthError{Message: providerMessage(raw, resp.StatusCode)}
	}
}

// providerMessage extracts error.message, e.g. EMAIL_EXISTS or INVALID_PASSWORD.
func providerMessage(raw []byte, status int) string {
	var envelope errorEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err == nil {
		if msg := strings.TrimSpace(envelope.Error.Message); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("identity provider rejected the request (status %d)", status)
}

func isIdentityCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errIdentityTransient)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func redactKey(value, key string) string {
	if key == "" {
		return value
	}
	return strings.ReplaceAll(value, key, "REDACTED")
}
