package pick

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
)

// ErrInvalidChoice marks a pick whose choice matches neither team.
var ErrInvalidChoice = errors.New("pick choice must be the home or away team")

// Pick is one user's predicted winner for one game. Game fields are copied at pick time.
type Pick struct {
	GameID   string
	GameDate time.Time
	HomeTeam string
	AwayTeam string
	Choice   string
}

// FromGame builds a pick for g with the given choice.
func FromGame(g game.Game, choice string) Pick {
	return Pick{
		GameID:   g.ID,
		GameDate: g.Date,
		HomeTeam: g.HomeTeam,
		AwayTeam: g.AwayTeam,
		Choice:   strings.TrimSpace(choice),
	}
}

func (p Pick) Validate() error {
	if strings.TrimSpace(p.GameID) == "" {
		return fmt.Errorf("pick game id is required")
	}
	if p.GameDate.IsZero() {
		return fmt.Errorf("pick %s game date is required", p.GameID)
	}
	if strings.TrimSpace(p.HomeTeam) == "" || strings.TrimSpace(p.AwayTeam) == "" {
		return fmt.Errorf("pick %s teams are required", p.GameID)
	}
	if !p.ChoiceIsTeam() {
		return fmt.Errorf("%w: game %s choice %q", ErrInvalidChoice, p.GameID, p.Choice)
	}

	return nil
}

func (p Pick) ChoiceIsTeam() bool {
	return p.Choice != "" && (p.Choice == p.HomeTeam || p.Choice == p.AwayTeam)
}

// PickSet holds every pick one user made for one week.
type PickSet struct {
	WeekID    string
	UserID    string
	Picks     []Pick
	UpdatedAt time.Time
}

// Key is the storage key of the set, "{weekID}_{userID}".
func (s PickSet) Key() string {
	return Key(s.WeekID, s.UserID)
}

func Key(weekID, userID string) string {
	return weekID + "_" + userID
}

func (s PickSet) Validate() error {
	if strings.TrimSpace(s.WeekID) == "" {
		return fmt.Errorf("pick set week id is required")
	}
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("pick set user id is required")
	}
	seen := make(map[string]struct{}, len(s.Picks))
	for _, p := range s.Picks {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := seen[p.GameID]; ok {
			return fmt.Errorf("pick set has duplicate game id %s", p.GameID)
		}
		seen[p.GameID] = struct{}{}
	}

	return nil
}

// Find returns the pick for gameID.
func (s PickSet) Find(gameID string) (Pick, bool) {
	for _, p := range s.Picks {
		if p.GameID == gameID {
			return p, true
		}
	}
	return Pick{}, false
}

// Merge returns a copy of s where incoming picks replace picks for the same game id
// and every other pick is kept.
func (s PickSet) Merge(incoming []Pick) PickSet {
	byGame := make(map[string]Pick, len(s.Picks)+len(incoming))
	for _, p := range s.Picks {
		byGame[p.GameID] = p
	}
	for _, p := range incoming {
		byGame[p.GameID] = p
	}

	out := s
	out.Picks = make([]Pick, 0, len(byGame))
	for _, p := range byGame {
		out.Picks = append(out.Picks, p)
	}
	SortPicks(out.Picks)
	return out
}

// SortPicks orders picks by game date then game id, in place.
func SortPicks(picks []Pick) {
	sort.Slice(picks, func(i, j int) bool {
		if !picks[i].GameDate.Equal(picks[j].GameDate) {
			return picks[i].GameDate.Before(picks[j].GameDate)
		}
		return picks[i].GameID < picks[j].GameID
	})
}

func (s PickSet) Clone() PickSet {
	out := s
	out.Picks = append([]Pick(nil), s.Picks...)
	return out
}
