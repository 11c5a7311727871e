package memory

import "github.com/riskibarqy/nhl-pickem/internal/domain/outcome"

func outcomeRecord(gameID string, winner *string, metadata map[string]string) outcome.Record {
	return outcome.Record{GameID: gameID, Winner: winner, Metadata: metadata}
}
