package pick

import "context"

// Repository persists pick sets keyed by (week id, user id).
type Repository interface {
	Get(ctx context.Context, weekID, userID string) (PickSet, bool, error)
	// Upsert merges set.Picks into the stored set by game id.
	Upsert(ctx context.Context, set PickSet) error
	ListByWeek(ctx context.Context, weekID string) ([]PickSet, error)
	ListAll(ctx context.Context) ([]PickSet, error)
}
