package statsfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nhl-pickem/internal/platform/resilience"
	"github.com/riskibarqy/nhl-pickem/internal/usecase"
)

const (
	defaultBaseURL = "https://statsapi.web.nhl.com/api/v1"
	schedulePath   = "/schedule"
	maxBodyBytes   = 4 << 20
)

var errFeedTransient = crerr.New("schedule feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the public NHL schedule endpoint. It implements game.Source.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      resilience.RetryConfig
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
}

var _ game.Source = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("statsfeed")

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

	breaker := resilience.NewCircuitBreaker("statsfeed", cfg.CircuitBreaker)
	breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		retry:      cfg.Retry.Normalize(),
		logger:     logger,
		breaker:    breaker,
	}
}

// ListByDateRange fetches every game between start and end, both inclusive.
func (c *Client) ListByDateRange(ctx context.Context, start, end time.Time) ([]game.Game, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("date range end %s is before start %s", pickweek.FormatDate(end), pickweek.FormatDate(start))
	}
	query := url.Values{}
	query.Set("startDate", pickweek.FormatDate(start))
	query.Set("endDate", pickweek.FormatDate(end))

	var envelope scheduleEnvelope
	if err := c.getJSON(ctx, query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch schedule %s..%s: %w", query.Get("startDate"), query.Get("endDate"), err)
	}
	return c.mapSchedule(ctx, envelope), nil
}

// ListByDate fetches the games of a single day.
func (c *Client) ListByDate(ctx context.Context, date time.Time) ([]game.Game, error) {
	query := url.Values{}
	query.Set("date", pickweek.FormatDate(date))

	var envelope scheduleEnvelope
	if err := c.getJSON(ctx, query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch schedule date=%s: %w", query.Get("date"), err)
	}
	return c.mapSchedule(ctx, envelope), nil
}

func (c *Client) getJSON(ctx context.Context, query url.Values, target any) error {
	fullURL := c.baseURL + schedulePath
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, shared := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isFeedCircuitFailure)
		if crerr.Is(execErr, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "circuit breaker rejected request", "state", string(c.breaker.State()))
			return nil, fmt.Errorf("%w: schedule feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return raw, execErr
	})
	if err != nil {
		return err
	}
	if shared {
		c.logger.DebugContext(ctx, "schedule request shared", "url", fullURL)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode schedule payload")
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if delay := c.retry.Delay(attempt); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Mark(crerr.Wrap(err, "send request"), errFeedTransient)
			continue
		}

		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
		switch {
		case readErr != nil:
			lastErr = crerr.Mark(crerr.Wrap(readErr, "read response body"), errFeedTransient)
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return raw, nil
		case isRetryableStatus(resp.StatusCode):
			lastErr = crerr.Mark(crerr.Newf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), errFeedTransient)
		default:
			return nil, crerr.Newf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("feed request failed")
	}
	c.logger.WarnContext(ctx, "schedule request failed", "url", fullURL, "attempts", c.retry.MaxAttempts, "error", lastErr)
	return nil, lastErr
}

func (c *Client) mapSchedule(ctx context.Context, envelope scheduleEnvelope) []game.Game {
	out := make([]game.Game, 0, envelope.TotalGames)
	for _, day := range envelope.Dates {
		date, err := pickweek.ParseDate(day.Date)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping schedule date", "date", day.Date, "error", err)
			continue
		}
		for _, item := range day.Games {
			g, ok := mapGame(date, item)
			if !ok {
				c.logger.WarnContext(ctx, "skipping malformed game", "date", day.Date, "game_pk", item.GamePk)
				continue
			}
			out = append(out, g)
		}
	}
	game.SortByDate(out)
	return out
}

func mapGame(date time.Time, item scheduleGame) (game.Game, bool) {
	if item.GamePk <= 0 {
		return game.Game{}, false
	}
	g := game.Game{
		ID:        strconv.FormatInt(item.GamePk, 10),
		Date:      date,
		HomeTeam:  strings.TrimSpace(item.Teams.Home.Team.Name),
		AwayTeam:  strings.TrimSpace(item.Teams.Away.Team.Name),
		Status:    mapStatus(item.Status.DetailedState),
		HomeScore: item.Teams.Home.Score,
		AwayScore: item.Teams.Away.Score,
	}
	if g.Validate() != nil {
		return game.Game{}, false
	}
	return g, true
}

// mapStatus only treats the literal "Final" state as final.
func mapStatus(detailed string) string {
	state := strings.TrimSpace(detailed)
	switch {
	case state == "Final":
		return game.StatusFinal
	case strings.EqualFold(state, "Postponed"):
		return game.StatusPostponed
	case strings.HasPrefix(state, "In Progress"), strings.HasPrefix(state, "Game Over"), strings.HasPrefix(state, "Final"):
		return game.StatusLive
	default:
		return game.StatusScheduled
	}
}

func isFeedCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errFeedTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
