package service_test

import (
	"context"
	"testing"

	"funbank/events"
	"funbank/models"
	"funbank/repository"
	"funbank/repository/testutil"
	"funbank/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSevenUpDownSettlement_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)

	userService := service.NewUserService(uowFactory, 100)
	gameService := service.NewGameService(uowFactory)
	sevenUpDown := service.NewSevenUpDownService(uowFactory)
	stats := service.NewStatsService(uowFactory)

	alice, err := userService.RegisterUser(ctx, "alice")
	require.NoError(t, err)
	bob, err := userService.RegisterUser(ctx, "bob")
	require.NoError(t, err)
	carol, err := userService.RegisterUser(ctx, "carol")
	require.NoError(t, err)

	totalBefore, err := stats.GetLedgerTotal(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(300), totalBefore)

	// Three players at 100 each, 10 entry fee
	game, err := gameService.StartGame(ctx, models.GameTypeSevenUpDown, 10, []service.ParticipantEntry{
		{UserID: alice.ID, Choice: models.ChoiceUp},
		{UserID: bob.ID, Choice: models.ChoiceUp},
		{UserID: carol.ID, Choice: models.ChoiceDown},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), game.PotAmount)

	// Fees left every player at 90
	for _, id := range []int64{alice.ID, bob.ID, carol.ID} {
		user, err := userService.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(90), user.Balance)
	}

	result, err := sevenUpDown.SelectWinner(ctx, game.ID, models.ChoiceUp)
	require.NoError(t, err)
	assert.Equal(t, "up", result.Winner)
	assert.Equal(t, int64(30), result.TotalPaid)

	// The two up players split the 30 pot
	reloadedAlice, err := userService.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(105), reloadedAlice.Balance)

	reloadedBob, err := userService.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(105), reloadedBob.Balance)

	reloadedCarol, err := userService.GetUser(ctx, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), reloadedCarol.Balance)

	// Conservation: nothing entered or left the system
	totalAfter, err := stats.GetLedgerTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), totalAfter)

	// Settling the same game twice is refused
	_, err = sevenUpDown.SelectWinner(ctx, game.ID, models.ChoiceUp)
	assert.ErrorIs(t, err, service.ErrGameAlreadyCompleted)

	// The ledger replays to the same balances the rows hold
	txnRepo := repository.NewTransactionRepository(testDB.DB)
	replayed, err := txnRepo.ReplayUserBalance(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(105), replayed)

	// Deletion works for a user with a full history (grant, fee, game)
	require.NoError(t, userService.DeleteUser(ctx, carol.ID))
	_, err = userService.GetUser(ctx, carol.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	totalAfterDelete, err := stats.GetLedgerTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(210), totalAfterDelete)
}
