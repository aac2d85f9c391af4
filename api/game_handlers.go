package api

import (
	"net/http"

	"funbank/models"
	"funbank/service"
)

// --- Game lifecycle ---

func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameType     string `json:"gameType"`
		EntryFee     int64  `json:"entryFee"`
		Participants []struct {
			UserID int64  `json:"userId"`
			Choice string `json:"choice,omitempty"`
		} `json:"participants"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := make([]service.ParticipantEntry, 0, len(req.Participants))
	for _, p := range req.Participants {
		entries = append(entries, service.ParticipantEntry{
			UserID: p.UserID,
			Choice: models.Choice(p.Choice),
		})
	}

	game, err := h.svcs.Games.StartGame(r.Context(), models.GameType(req.GameType), req.EntryFee, entries)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.svcs.Games.GetGame(r.Context(), gameID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// --- 7up7down ---

func (h *Handler) SevenUpDownSelectWinner(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Side string `json:"side"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svcs.SevenUpDown.SelectWinner(r.Context(), gameID, models.Choice(req.Side))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Roulette ---

func (h *Handler) RouletteSaveNumbers(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Picks []struct {
			UserID int64 `json:"userId"`
			Number int   `json:"number"`
		} `json:"picks"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	picks := make([]service.NumberPick, 0, len(req.Picks))
	for _, p := range req.Picks {
		picks = append(picks, service.NumberPick{UserID: p.UserID, Number: p.Number})
	}

	if err := h.svcs.Roulette.SaveNumbers(r.Context(), gameID, picks); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) RouletteSpin(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Result *int `json:"result,omitempty"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.svcs.Roulette.Spin(r.Context(), gameID, req.Result)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) RouletteWinners(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	winners, err := h.svcs.Roulette.Winners(r.Context(), gameID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"winners": winners})
}

func (h *Handler) RouletteDeclareNearest(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	nearest, err := h.svcs.Roulette.DeclareNearest(r.Context(), gameID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nearest)
}

func (h *Handler) RouletteDistribute(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		WinnerIDs []int64 `json:"winnerIds"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svcs.Roulette.Distribute(r.Context(), gameID, req.WinnerIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) RouletteNextRound(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		AdditionalBet int64   `json:"additionalBet"`
		ContinuingIDs []int64 `json:"continuingIds"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svcs.Roulette.NextRound(r.Context(), gameID, req.AdditionalBet, req.ContinuingIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Roll the ball ---

func (h *Handler) RollTheBallSelectWinner(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		WinnerID int64 `json:"winnerId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svcs.RollTheBall.SelectWinner(r.Context(), gameID, req.WinnerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Poker ---

func (h *Handler) PokerDistribute(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Shares []struct {
			UserID int64 `json:"userId"`
			Amount int64 `json:"amount"`
		} `json:"shares"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	shares := make([]service.PayoutShare, 0, len(req.Shares))
	for _, s := range req.Shares {
		shares = append(shares, service.PayoutShare{UserID: s.UserID, Amount: s.Amount})
	}

	result, err := h.svcs.Poker.Distribute(r.Context(), gameID, shares)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Deal no deal ---

func (h *Handler) DealNoDealApplyResult(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		UserID int64 `json:"userId"`
		Amount int64 `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.svcs.DealNoDeal.ApplyResult(r.Context(), gameID, req.UserID, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *Handler) DealNoDealFinish(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(r, "gameId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Winner string `json:"winner"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svcs.DealNoDeal.Finish(r.Context(), gameID, req.Winner); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
