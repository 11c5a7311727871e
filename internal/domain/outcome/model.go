package outcome

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
)

// Outcome is the resolved winner of a game. An undecided outcome has Decided=false
// and an empty Winner; picks against it are not graded.
type Outcome struct {
	GameID  string
	Winner  string
	Decided bool
}

func Undecided(gameID string) Outcome {
	return Outcome{GameID: gameID}
}

func Decided(gameID, winner string) Outcome {
	return Outcome{GameID: gameID, Winner: winner, Decided: true}
}

// FromGame derives the outcome from a feed result. Only a final game with a strictly
// higher score has a winner; equal or missing scores stay undecided.
func FromGame(g game.Game) Outcome {
	if !game.IsFinalStatus(g.Status) || g.HomeScore == nil || g.AwayScore == nil {
		return Undecided(g.ID)
	}
	switch {
	case *g.HomeScore > *g.AwayScore:
		return Decided(g.ID, g.HomeTeam)
	case *g.AwayScore > *g.HomeScore:
		return Decided(g.ID, g.AwayTeam)
	default:
		return Undecided(g.ID)
	}
}

// Record is a manually stored outcome.
type Record struct {
	GameID    string
	Winner    *string
	Metadata  map[string]string
	UpdatedAt time.Time
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.GameID) == "" {
		return fmt.Errorf("outcome game id is required")
	}
	if r.Winner != nil && strings.TrimSpace(*r.Winner) == "" {
		return fmt.Errorf("outcome winner must be omitted or non-empty")
	}
	return nil
}

// Outcome converts the record. A nil winner is undecided.
func (r Record) Outcome() Outcome {
	if r.Winner == nil || strings.TrimSpace(*r.Winner) == "" {
		return Undecided(r.GameID)
	}
	return Decided(r.GameID, *r.Winner)
}

// GameRef identifies a game to resolve along with the date it was played.
type GameRef struct {
	GameID   string
	GameDate time.Time
}
