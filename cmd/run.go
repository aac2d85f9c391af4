package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"funbank/api"
	"funbank/config"
	"funbank/database"
	"funbank/events"
	"funbank/repository"
	"funbank/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	log.WithField("environment", cfg.Environment).Info("Starting funbank")

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Committed balance changes are worth a trace in the log even with
	// no other consumer subscribed.
	eventBus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		change, ok := e.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"transactionId": change.TransactionID,
			"amount":        change.Amount,
		}).Debug("Balance change committed")
	})

	svcs := api.Services{
		Users:       service.NewUserService(uowFactory, cfg.StartingBalance),
		Transfers:   service.NewTransferService(uowFactory),
		Games:       service.NewGameService(uowFactory),
		SevenUpDown: service.NewSevenUpDownService(uowFactory),
		Roulette:    service.NewRouletteService(uowFactory),
		RollTheBall: service.NewRollTheBallService(uowFactory),
		Poker:       service.NewPokerService(uowFactory),
		DealNoDeal:  service.NewDealNoDealService(uowFactory),
		Stats:       service.NewStatsService(uowFactory),
	}

	server := api.NewServer(cfg.HTTPAddr, cfg.AdminJWTSecret, svcs)

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown was not clean")
	}

	log.Info("Shutdown completed")
	return nil
}
