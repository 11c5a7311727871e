package game

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinal     = "FINAL"
	StatusPostponed = "POSTPONED"
)

// Game is one scheduled contest on a single calendar day.
type Game struct {
	ID        string
	Date      time.Time
	HomeTeam  string
	AwayTeam  string
	Status    string
	HomeScore *int
	AwayScore *int
}

func (g Game) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	if g.Date.IsZero() {
		return fmt.Errorf("game date is required")
	}
	if strings.TrimSpace(g.HomeTeam) == "" {
		return fmt.Errorf("game home team is required")
	}
	if strings.TrimSpace(g.AwayTeam) == "" {
		return fmt.Errorf("game away team is required")
	}
	if g.HomeTeam == g.AwayTeam {
		return fmt.Errorf("game %s home and away team are both %q", g.ID, g.HomeTeam)
	}

	return nil
}

// HasTeam reports whether name is the home or away team.
func (g Game) HasTeam(name string) bool {
	return name != "" && (name == g.HomeTeam || name == g.AwayTeam)
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

// IsFinalStatus matches the feed's "Final" state only. Variants such as
// "Final/OT" are not produced by the feed.
func IsFinalStatus(status string) bool {
	return NormalizeStatus(status) == StatusFinal
}

// SortByDate orders games by date then id, in place.
func SortByDate(games []Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if !games[i].Date.Equal(games[j].Date) {
			return games[i].Date.Before(games[j].Date)
		}
		return games[i].ID < games[j].ID
	})
}
