package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/nhl-pickem/internal/usecase"
)

func (h *Handler) GetWeeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeeklyLeaderboard")
	defer span.End()

	weekID := strings.TrimSpace(r.URL.Query().Get("week_id"))
	board, err := h.scoringService.Leaderboard(ctx, usecase.LeaderboardQuery{
		Scope:  usecase.LeaderboardScopeWeekly,
		WeekID: weekID,
	})
	if err != nil {
		h.logFailure(ctx, "weekly leaderboard failed", err, "week_id", weekID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(board))
}

func (h *Handler) GetAllTimeLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAllTimeLeaderboard")
	defer span.End()

	board, err := h.scoringService.Leaderboard(ctx, usecase.LeaderboardQuery{Scope: usecase.LeaderboardScopeAllTime})
	if err != nil {
		h.logFailure(ctx, "all-time leaderboard failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(board))
}
