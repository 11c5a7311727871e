// Package csvtable reads a static schedule table with the columns
// date,game_id,home_team,away_team. Column order follows the header row.
package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
)

const (
	colDate     = "date"
	colGameID   = "game_id"
	colHomeTeam = "home_team"
	colAwayTeam = "away_team"
)

var requiredColumns = []string{colDate, colGameID, colHomeTeam, colAwayTeam}

func LoadFile(path string) ([]game.Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schedule table: %w", err)
	}
	defer f.Close()

	games, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load schedule table %s: %w", path, err)
	}
	return games, nil
}

// Load parses every row. Duplicate game ids are rejected.
func Load(r io.Reader) ([]game.Game, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []game.Game{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	reader.FieldsPerRecord = len(header)

	games := make([]game.Game, 0, 64)
	seen := make(map[string]int)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		g, err := rowToGame(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if prev, dup := seen[g.ID]; dup {
			return nil, fmt.Errorf("line %d: game %s already defined on line %d", line, g.ID, prev)
		}
		seen[g.ID] = line
		games = append(games, g)
	}

	game.SortByDate(games)
	return games, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("header is missing column %q", col)
		}
	}
	return index, nil
}

func rowToGame(record []string, index map[string]int) (game.Game, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[index[col]])
	}

	date, err := pickweek.ParseDate(field(colDate))
	if err != nil {
		return game.Game{}, err
	}
	g := game.Game{
		ID:       field(colGameID),
		Date:     date,
		HomeTeam: field(colHomeTeam),
		AwayTeam: field(colAwayTeam),
		Status:   game.StatusScheduled,
	}
	if err := g.Validate(); err != nil {
		return game.Game{}, err
	}
	return g, nil
}
