package postgres

import (
	"database/sql"
	"time"
)

type outcomeTableModel struct {
	GameID    string         `db:"game_id"`
	Winner    sql.NullString `db:"winner"`
	Metadata  string         `db:"metadata"`
	UpdatedAt time.Time      `db:"updated_at"`
}
