package postgres

import (
	"database/sql"
	"time"
)

type gameTableModel struct {
	ID        string        `db:"id"`
	GameDate  time.Time     `db:"game_date"`
	HomeTeam  string        `db:"home_team"`
	AwayTeam  string        `db:"away_team"`
	Status    string        `db:"status"`
	HomeScore sql.NullInt32 `db:"home_score"`
	AwayScore sql.NullInt32 `db:"away_score"`
}
