package profile

import (
	"fmt"
	"strings"
	"time"
)

// Profile is the public identity of a contest player.
type Profile struct {
	UserID      string
	DisplayName string
	CreatedAt   time.Time
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("profile user id is required")
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return fmt.Errorf("profile display name is required")
	}
	return nil
}

// NameOrID returns the display name, or userID when the profile has none.
func (p Profile) NameOrID(userID string) string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return userID
}
