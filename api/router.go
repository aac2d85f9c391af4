package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers every API endpoint behind the admin gate
func NewRouter(jwtSecret string, svcs Services) http.Handler {
	h := NewHandler(svcs)
	r := chi.NewRouter()

	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(adminAuth(jwtSecret))

		r.Post("/users", h.RegisterUser)
		r.Get("/users", h.ListUsers)
		r.Get("/users/{userId}", h.GetUser)
		r.Delete("/users/{userId}", h.DeleteUser)
		r.Get("/users/by-name/{name}", h.GetUserByName)
		r.Put("/users/{userId}/captain", h.AssignCaptain)
		r.Delete("/users/{userId}/captain", h.RemoveCaptain)
		r.Get("/users/{userId}/history", h.GetUserHistory)

		r.Post("/transfers", h.Transfer)
		r.Post("/transfers/batch", h.TransferBatch)
		r.Post("/adjustments", h.AdjustBalance)

		r.Post("/games", h.StartGame)
		r.Get("/games", h.GetGameHistory)
		r.Get("/games/{gameId}", h.GetGame)

		r.Post("/games/{gameId}/7up7down/winner", h.SevenUpDownSelectWinner)

		r.Post("/games/{gameId}/roulette/numbers", h.RouletteSaveNumbers)
		r.Post("/games/{gameId}/roulette/spin", h.RouletteSpin)
		r.Get("/games/{gameId}/roulette/winners", h.RouletteWinners)
		r.Get("/games/{gameId}/roulette/nearest", h.RouletteDeclareNearest)
		r.Post("/games/{gameId}/roulette/distribute", h.RouletteDistribute)
		r.Post("/games/{gameId}/roulette/next-round", h.RouletteNextRound)

		r.Post("/games/{gameId}/rolltheball/winner", h.RollTheBallSelectWinner)
		r.Post("/games/{gameId}/poker/distribute", h.PokerDistribute)
		r.Post("/games/{gameId}/dealnodeal/result", h.DealNoDealApplyResult)
		r.Post("/games/{gameId}/dealnodeal/finish", h.DealNoDealFinish)

		r.Get("/stats/rankings", h.GetRankings)
		r.Get("/stats/families", h.GetFamilyTotals)
		r.Get("/stats/ledger-total", h.GetLedgerTotal)
	})

	return r
}
