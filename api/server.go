package api

import (
	"net/http"
	"time"

	"funbank/service"
)

// Services bundles everything the HTTP surface calls into
type Services struct {
	Users       service.UserService
	Transfers   service.TransferService
	Games       service.GameService
	SevenUpDown service.SevenUpDownService
	Roulette    service.RouletteService
	RollTheBall service.RollTheBallService
	Poker       service.PokerService
	DealNoDeal  service.DealNoDealService
	Stats       service.StatsService
}

// NewServer creates a configured *http.Server for the ledger API
func NewServer(addr string, jwtSecret string, svcs Services) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(jwtSecret, svcs),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
