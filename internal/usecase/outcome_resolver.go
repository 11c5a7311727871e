package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
)

const defaultResolverConcurrency = 4

// FeedOutcomeResolver derives outcomes from the remote schedule feed. Each distinct game
// date is fetched once.
type FeedOutcomeResolver struct {
	source      game.Source
	concurrency int
}

func NewFeedOutcomeResolver(source game.Source, concurrency int) *FeedOutcomeResolver {
	if concurrency < 1 {
		concurrency = defaultResolverConcurrency
	}
	return &FeedOutcomeResolver{source: source, concurrency: concurrency}
}

func (r *FeedOutcomeResolver) Resolve(ctx context.Context, refs []outcome.GameRef) (result map[string]outcome.Outcome, err error) {
	dates := distinctDates(refs)
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedOutcomeResolver.Resolve",
		attribute.Int("games", len(refs)),
		attribute.Int("dates", len(dates)),
	)
	defer func() { endSpan(span, err) }()

	result = undecidedFor(refs)
	if len(dates) == 0 {
		return result, nil
	}

	schedules := make([][]game.Game, len(dates))
	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(r.concurrency)
	for i, date := range dates {
		p.Go(func(ctx context.Context) error {
			games, err := r.source.ListByDate(ctx, date)
			if err != nil {
				return fmt.Errorf("fetch schedule for %s: %w", pickweek.FormatDate(date), err)
			}
			schedules[i] = games
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailure, err)
	}

	for _, games := range schedules {
		for _, g := range games {
			if _, wanted := result[g.ID]; wanted {
				result[g.ID] = outcome.FromGame(g)
			}
		}
	}

	return result, nil
}

// ManualOutcomeResolver reads stored outcomes by game id.
type ManualOutcomeResolver struct {
	repo    outcome.Repository
	workers int
}

func NewManualOutcomeResolver(repo outcome.Repository, workers int) *ManualOutcomeResolver {
	if workers < 1 {
		workers = defaultResolverConcurrency
	}
	return &ManualOutcomeResolver{repo: repo, workers: workers}
}

func (r *ManualOutcomeResolver) Resolve(ctx context.Context, refs []outcome.GameRef) (result map[string]outcome.Outcome, err error) {
	result = undecidedFor(refs)
	ctx, span := startUsecaseSpan(ctx, "usecase.ManualOutcomeResolver.Resolve",
		attribute.Int("games", len(result)),
	)
	defer func() { endSpan(span, err) }()

	if len(result) == 0 {
		return result, nil
	}

	workerPool, err := ants.NewPool(r.workers)
	if err != nil {
		return nil, fmt.Errorf("create outcome worker pool: %w", err)
	}
	defer workerPool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	gameIDs := make([]string, 0, len(result))
	for gameID := range result {
		gameIDs = append(gameIDs, gameID)
	}

	for _, gameID := range gameIDs {
		wg.Add(1)
		if err := workerPool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			record, exists, err := r.repo.Get(ctx, gameID)
			if err != nil {
				fail(fmt.Errorf("get outcome game=%s: %w", gameID, err))
				return
			}
			if !exists {
				return
			}

			mu.Lock()
			result[gameID] = record.Outcome()
			mu.Unlock()
		}); err != nil {
			wg.Done()
			fail(fmt.Errorf("submit outcome lookup: %w", err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailure, firstErr)
	}
	return result, nil
}

func undecidedFor(refs []outcome.GameRef) map[string]outcome.Outcome {
	out := make(map[string]outcome.Outcome, len(refs))
	for _, ref := range refs {
		out[ref.GameID] = outcome.Undecided(ref.GameID)
	}
	return out
}

// distinctDates keeps first-seen order.
func distinctDates(refs []outcome.GameRef) []time.Time {
	seen := make(map[string]struct{}, len(refs))
	out := make([]time.Time, 0, len(refs))
	for _, ref := range refs {
		key := pickweek.FormatDate(ref.GameDate)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ref.GameDate)
	}
	return out
}
