package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
)

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("get profile: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("boom")) {
		t.Fatalf("unexpected not found")
	}
	if !isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})) {
		t.Fatalf("expected unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "42P01"}) {
		t.Fatalf("undefined table is not a unique violation")
	}
}

func TestGroupPickRows(t *testing.T) {
	t.Parallel()

	week := "2025-01-12"
	day := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	early := time.Date(2025, 1, 11, 8, 0, 0, 0, time.UTC)
	late := early.Add(2 * time.Hour)

	rows := []pickTableModel{
		{WeekID: week, UserID: "u1", GameID: "g2", GameDate: day.AddDate(0, 0, 1), HomeTeam: "A", AwayTeam: "B", Choice: "A", UpdatedAt: early},
		{WeekID: week, UserID: "u1", GameID: "g1", GameDate: day, HomeTeam: "C", AwayTeam: "D", Choice: "D", UpdatedAt: late},
		{WeekID: week, UserID: "u2", GameID: "g1", GameDate: day, HomeTeam: "C", AwayTeam: "D", Choice: "C", UpdatedAt: early},
	}

	sets := groupPickRows(rows)
	if len(sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(sets))
	}
	if sets[0].UserID != "u1" || len(sets[0].Picks) != 2 {
		t.Fatalf("unexpected first set %+v", sets[0])
	}
	if sets[0].Picks[0].GameID != "g1" {
		t.Fatalf("expected picks sorted by date, got %s first", sets[0].Picks[0].GameID)
	}
	if !sets[0].UpdatedAt.Equal(late) {
		t.Fatalf("expected latest row timestamp, got %s", sets[0].UpdatedAt)
	}
	if len(groupPickRows(nil)) != 0 {
		t.Fatalf("expected no sets for no rows")
	}
}

func TestOutcomeRowRoundTrip(t *testing.T) {
	t.Parallel()

	winner := "Boston Bruins"
	record := outcome.Record{
		GameID:    "g1",
		Winner:    &winner,
		Metadata:  map[string]string{"source": "scorekeeper"},
		UpdatedAt: time.Date(2025, 1, 13, 4, 0, 0, 0, time.UTC),
	}

	row, err := outcomeToRow(record)
	if err != nil {
		t.Fatalf("to row: %v", err)
	}
	if !row.Winner.Valid || row.Metadata != `{"source":"scorekeeper"}` {
		t.Fatalf("unexpected row %+v", row)
	}

	back, err := outcomeFromRow(row)
	if err != nil {
		t.Fatalf("from row: %v", err)
	}
	if back.Outcome().Winner != winner || back.Metadata["source"] != "scorekeeper" {
		t.Fatalf("unexpected record %+v", back)
	}

	undecided, err := outcomeFromRow(outcomeTableModel{GameID: "g2"})
	if err != nil {
		t.Fatalf("from row: %v", err)
	}
	if undecided.Outcome().Decided || undecided.Metadata == nil {
		t.Fatalf("expected undecided record with empty metadata, got %+v", undecided)
	}
}

func TestGameRowMapping(t *testing.T) {
	t.Parallel()

	home, away := 3, 2
	g := game.Game{
		ID:        "g1",
		Date:      time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		HomeTeam:  "Boston Bruins",
		AwayTeam:  "Toronto Maple Leafs",
		Status:    "final",
		HomeScore: &home,
		AwayScore: &away,
	}

	back := gameFromRow(gameToRow(g))
	if back.Status != game.StatusFinal {
		t.Fatalf("expected normalized status, got %s", back.Status)
	}
	if back.HomeScore == nil || *back.HomeScore != 3 || back.AwayScore == nil || *back.AwayScore != 2 {
		t.Fatalf("unexpected scores %+v", back)
	}
	if !outcome.FromGame(back).Decided {
		t.Fatalf("expected final game to decide an outcome")
	}

	unscored := gameFromRow(gameToRow(game.Game{ID: "g2", Date: g.Date, HomeTeam: "A", AwayTeam: "B"}))
	if unscored.HomeScore != nil || unscored.Status != game.StatusScheduled {
		t.Fatalf("unexpected unscored game %+v", unscored)
	}
}
