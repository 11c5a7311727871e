package postgres

import "time"

type pickTableModel struct {
	WeekID    string    `db:"week_id"`
	UserID    string    `db:"user_id"`
	GameID    string    `db:"game_id"`
	GameDate  time.Time `db:"game_date"`
	HomeTeam  string    `db:"home_team"`
	AwayTeam  string    `db:"away_team"`
	Choice    string    `db:"choice"`
	UpdatedAt time.Time `db:"updated_at"`
}
