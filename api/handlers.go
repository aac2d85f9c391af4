package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"funbank/models"
	"funbank/service"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// Handler exposes the ledger operations over JSON
type Handler struct {
	svcs Services
}

// NewHandler returns the HTTP handler set for the given services
func NewHandler(svcs Services) *Handler {
	return &Handler{svcs: svcs}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps service errors onto HTTP statuses. Anything
// not recognized is an infrastructure failure and stays opaque.
func writeDomainError(w http.ResponseWriter, err error) {
	var insufficientErr *service.InsufficientFundsError
	switch {
	case errors.As(err, &insufficientErr):
		writeError(w, http.StatusConflict, insufficientErr.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrGameAlreadyCompleted),
		errors.Is(err, service.ErrNameTaken),
		errors.Is(err, service.ErrUserIsCaptain):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidTransfer),
		errors.Is(err, service.ErrWrongGameType),
		errors.Is(err, service.ErrNoParticipantsForChoice),
		errors.Is(err, service.ErrDistributionMismatch),
		errors.Is(err, service.ErrDuplicateParticipant),
		errors.Is(err, service.ErrNotAParticipant),
		errors.Is(err, service.ErrInvalidNumber),
		errors.Is(err, service.ErrMissingNumbers):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func parseLimitQuery(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

// accountRef is the wire form of a transfer endpoint: the literal
// string "pot" or a decimal user id.
type accountRef string

func (a accountRef) toAccount() (models.Account, error) {
	if a == "pot" {
		return models.PotAccount(), nil
	}
	id, err := strconv.ParseInt(string(a), 10, 64)
	if err != nil || id <= 0 {
		return models.Account{}, fmt.Errorf("account must be %q or a user id", "pot")
	}
	return models.UserAccount(id), nil
}

// --- User handlers ---

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svcs.Users.RegisterUser(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svcs.Users.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svcs.Users.GetUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) GetUserByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	user, err := h.svcs.Users.GetUserByName(r.Context(), name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svcs.Users.DeleteUser(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AssignCaptain(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		CaptainID int64 `json:"captainId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svcs.Users.AssignCaptain(r.Context(), userID, req.CaptainID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) RemoveCaptain(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svcs.Users.RemoveCaptain(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetUserHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txns, err := h.svcs.Stats.GetUserHistory(r.Context(), userID, parseLimitQuery(r, 50))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// --- Transfer handlers ---

type transferRequest struct {
	From   accountRef `json:"from"`
	To     accountRef `json:"to"`
	Amount int64      `json:"amount"`
}

func (req transferRequest) toServiceRequest() (service.TransferRequest, error) {
	from, err := req.From.toAccount()
	if err != nil {
		return service.TransferRequest{}, fmt.Errorf("from: %w", err)
	}
	to, err := req.To.toAccount()
	if err != nil {
		return service.TransferRequest{}, fmt.Errorf("to: %w", err)
	}
	return service.TransferRequest{From: from, To: to, Amount: req.Amount}, nil
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	parsed, err := req.toServiceRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.svcs.Transfers.Transfer(r.Context(), parsed.From, parsed.To, parsed.Amount, nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (h *Handler) TransferBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transfers []transferRequest `json:"transfers"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requests := make([]service.TransferRequest, 0, len(req.Transfers))
	for i, t := range req.Transfers {
		parsed, err := t.toServiceRequest()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("transfer %d: %v", i, err))
			return
		}
		requests = append(requests, parsed)
	}

	txns, err := h.svcs.Transfers.TransferBatch(r.Context(), requests)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txns)
}

func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64 `json:"userId"`
		Amount int64 `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.svcs.Transfers.AdjustBalance(r.Context(), req.UserID, req.Amount, nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

// --- Stats handlers ---

func (h *Handler) GetRankings(w http.ResponseWriter, r *http.Request) {
	users, err := h.svcs.Stats.GetRankings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) GetFamilyTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svcs.Stats.GetFamilyTotals(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *Handler) GetLedgerTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.svcs.Stats.GetLedgerTotal(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}

func (h *Handler) GetGameHistory(w http.ResponseWriter, r *http.Request) {
	games, err := h.svcs.Stats.GetGameHistory(r.Context(), parseLimitQuery(r, 50))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}
