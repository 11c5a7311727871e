package profile

import "context"

// Repository stores user profiles.
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (Profile, bool, error)
	// CreateIfAbsent inserts p unless a profile for p.UserID exists and reports whether
	// it created one. An existing profile is never modified.
	CreateIfAbsent(ctx context.Context, p Profile) (bool, error)
}
