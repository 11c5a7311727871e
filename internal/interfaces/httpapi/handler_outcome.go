package httpapi

import (
	"net/http"

	"github.com/riskibarqy/nhl-pickem/internal/usecase"
)

type setOutcomeRequest struct {
	Winner   *string           `json:"winner" validate:"omitempty,max=100"`
	Metadata map[string]string `json:"metadata" validate:"omitempty,max=32,dive,keys,required,max=64,endkeys,max=512"`
}

func (h *Handler) GetOutcome(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOutcome")
	defer span.End()

	gameID := r.PathValue("gameID")
	result, err := h.outcomeService.GetOutcome(ctx, gameID)
	if err != nil {
		h.logFailure(ctx, "get outcome failed", err, "game_id", gameID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, outcomeDTO{
		GameID:  result.GameID,
		Winner:  result.Winner,
		Decided: result.Decided,
	})
}

func (h *Handler) SetOutcome(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetOutcome")
	defer span.End()

	var req setOutcomeRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	record, err := h.outcomeService.SetOutcome(ctx, usecase.SetOutcomeInput{
		GameID:   gameID,
		Winner:   req.Winner,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.logFailure(ctx, "set outcome failed", err, "game_id", gameID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, outcomeRecordToDTO(record))
}
