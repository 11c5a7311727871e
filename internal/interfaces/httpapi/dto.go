package httpapi

import (
	"math"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
	"github.com/riskibarqy/nhl-pickem/internal/domain/scoring"
	"github.com/riskibarqy/nhl-pickem/internal/usecase"
)

type sessionDTO struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

type windowDTO struct {
	WeekID      string `json:"week_id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	EditingOpen bool   `json:"editing_open"`
}

type currentWeekDTO struct {
	Picks   windowDTO `json:"picks"`
	Scoring windowDTO `json:"scoring"`
}

type gameDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	Status    string `json:"status"`
	HomeScore *int   `json:"home_score,omitempty"`
	AwayScore *int   `json:"away_score,omitempty"`
	Choice    string `json:"choice,omitempty"`
}

type boardDTO struct {
	Week      windowDTO `json:"week"`
	Games     []gameDTO `json:"games"`
	UpdatedAt *string   `json:"updated_at,omitempty"`
}

type pickDTO struct {
	GameID   string `json:"game_id"`
	GameDate string `json:"game_date"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Choice   string `json:"choice"`
}

type pickSetDTO struct {
	WeekID    string    `json:"week_id"`
	UserID    string    `json:"user_id"`
	Picks     []pickDTO `json:"picks"`
	UpdatedAt *string   `json:"updated_at,omitempty"`
}

type leaderboardEntryDTO struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	Points      int     `json:"points"`
	GamesGraded int     `json:"games_graded"`
	AccuracyPct float64 `json:"accuracy_pct"`
}

type leaderboardDTO struct {
	Scope   string                `json:"scope"`
	Week    *windowDTO            `json:"week,omitempty"`
	Entries []leaderboardEntryDTO `json:"entries"`
}

type outcomeDTO struct {
	GameID  string `json:"game_id"`
	Winner  string `json:"winner,omitempty"`
	Decided bool   `json:"decided"`
}

type outcomeRecordDTO struct {
	GameID    string            `json:"game_id"`
	Winner    *string           `json:"winner"`
	Decided   bool              `json:"decided"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	UpdatedAt string            `json:"updated_at"`
}

func windowToDTO(w pickweek.Window) windowDTO {
	return windowDTO{
		WeekID:      w.WeekID,
		Start:       pickweek.FormatDate(w.Start),
		End:         pickweek.FormatDate(w.End),
		EditingOpen: w.EditingOpen,
	}
}

func gameToDTO(g game.Game) gameDTO {
	return gameDTO{
		ID:        g.ID,
		Date:      pickweek.FormatDate(g.Date),
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		Status:    g.Status,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
	}
}

func boardToDTO(board usecase.WeekBoard) boardDTO {
	choices := make(map[string]string, len(board.Picks.Picks))
	for _, p := range board.Picks.Picks {
		choices[p.GameID] = p.Choice
	}

	games := make([]gameDTO, 0, len(board.Games))
	for _, g := range board.Games {
		item := gameToDTO(g)
		item.Choice = choices[g.ID]
		games = append(games, item)
	}

	return boardDTO{
		Week:      windowToDTO(board.Window),
		Games:     games,
		UpdatedAt: formatOptionalTime(board.Picks.UpdatedAt),
	}
}

func pickSetToDTO(set pick.PickSet) pickSetDTO {
	picks := make([]pickDTO, 0, len(set.Picks))
	for _, p := range set.Picks {
		picks = append(picks, pickDTO{
			GameID:   p.GameID,
			GameDate: pickweek.FormatDate(p.GameDate),
			HomeTeam: p.HomeTeam,
			AwayTeam: p.AwayTeam,
			Choice:   p.Choice,
		})
	}

	return pickSetDTO{
		WeekID:    set.WeekID,
		UserID:    set.UserID,
		Picks:     picks,
		UpdatedAt: formatOptionalTime(set.UpdatedAt),
	}
}

// leaderboardToDTO ranks ties with the same number (1, 2, 2, 4).
func leaderboardToDTO(board usecase.Leaderboard) leaderboardDTO {
	out := leaderboardDTO{
		Scope:   board.Scope,
		Entries: make([]leaderboardEntryDTO, 0, len(board.Scores)),
	}
	if board.Week != nil {
		week := windowToDTO(*board.Week)
		out.Week = &week
	}

	rank := 0
	for i, s := range board.Scores {
		if i == 0 || s.Correct != board.Scores[i-1].Correct {
			rank = i + 1
		}
		out.Entries = append(out.Entries, scoreToDTO(rank, s))
	}
	return out
}

func scoreToDTO(rank int, s scoring.UserScore) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		Rank:        rank,
		UserID:      s.UserID,
		Name:        s.DisplayName,
		Points:      s.Points(),
		GamesGraded: s.Graded,
		AccuracyPct: round1(s.Accuracy()),
	}
}

func outcomeRecordToDTO(r outcome.Record) outcomeRecordDTO {
	return outcomeRecordDTO{
		GameID:    r.GameID,
		Winner:    r.Winner,
		Decided:   r.Winner != nil,
		Metadata:  r.Metadata,
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatOptionalTime(v time.Time) *string {
	if v.IsZero() {
		return nil
	}
	out := v.UTC().Format(time.RFC3339)
	return &out
}
