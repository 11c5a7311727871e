package outcome

import "context"

// Repository stores manually assigned outcomes.
type Repository interface {
	Get(ctx context.Context, gameID string) (Record, bool, error)
	Upsert(ctx context.Context, record Record) error
}

// Resolver resolves each distinct game at most once per call. The result holds an
// entry for every requested game id.
type Resolver interface {
	Resolve(ctx context.Context, refs []GameRef) (map[string]Outcome, error)
}
