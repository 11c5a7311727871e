package httpapi

import (
	"net/http"

	"github.com/riskibarqy/nhl-pickem/internal/usecase"
)

type savePicksRequest struct {
	Picks map[string]string `json:"picks" validate:"required,min=1,max=64,dive,keys,required,endkeys,required"`
}

func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentWeek")
	defer span.End()

	picks, scoring := h.pickService.CurrentWeek()
	writeSuccess(ctx, w, http.StatusOK, currentWeekDTO{
		Picks:   windowToDTO(picks),
		Scoring: windowToDTO(scoring),
	})
}

func (h *Handler) GetCurrentPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentPicks")
	defer span.End()

	userID, err := requirePrincipalUserID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.pickService.CurrentBoard(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "load current board failed", err, "user_id", userID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boardToDTO(board))
}

func (h *Handler) SaveCurrentPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveCurrentPicks")
	defer span.End()

	userID, err := requirePrincipalUserID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req savePicksRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, err := h.pickService.SavePicks(ctx, usecase.SavePicksInput{
		UserID:  userID,
		Choices: req.Picks,
	})
	if err != nil {
		h.logFailure(ctx, "save picks failed", err, "user_id", userID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pickSetToDTO(saved))
}

func (h *Handler) GetWeekPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeekPicks")
	defer span.End()

	userID, err := requirePrincipalUserID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	weekID := r.PathValue("weekID")
	set, err := h.pickService.GetPicks(ctx, weekID, userID)
	if err != nil {
		h.logFailure(ctx, "load week picks failed", err, "user_id", userID, "week_id", weekID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pickSetToDTO(set))
}
