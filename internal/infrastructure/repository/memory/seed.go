package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
)

var seedMatchups = [][2]string{
	{"Boston Bruins", "Toronto Maple Leafs"},
	{"New York Rangers", "New Jersey Devils"},
	{"Edmonton Oilers", "Calgary Flames"},
	{"Colorado Avalanche", "Dallas Stars"},
	{"Vegas Golden Knights", "Los Angeles Kings"},
	{"Tampa Bay Lightning", "Florida Panthers"},
	{"Pittsburgh Penguins", "Philadelphia Flyers"},
}

// SeedGames builds one demo game per day for the week starting at sunday. Ids are
// stable for a given week.
func SeedGames(sunday time.Time) []game.Game {
	start, _ := pickweek.WeekDateRange(sunday)
	out := make([]game.Game, 0, len(seedMatchups))
	for i, matchup := range seedMatchups {
		day := start.AddDate(0, 0, i)
		out = append(out, game.Game{
			ID:       fmt.Sprintf("%s-%02d", day.Format("20060102"), i+1),
			Date:     day,
			HomeTeam: matchup[0],
			AwayTeam: matchup[1],
			Status:   game.StatusScheduled,
		})
	}
	return out
}
