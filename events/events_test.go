package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"funbank/models"

	"github.com/stretchr/testify/assert"
)

func TestEventDeliveryAfterFlush(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		change, ok := event.(BalanceChangeEvent)
		if !ok {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
			return
		}
		eventReceived <- change
	})

	fromUser := int64(1)
	toUser := int64(2)
	gameType := models.GameTypePoker
	testEvent := BalanceChangeEvent{
		TransactionID: 42,
		FromUserID:    &fromUser,
		ToUserID:      &toUser,
		Amount:        500,
		GameType:      &gameType,
	}

	// Nothing reaches the bus before the commit flush
	transactionalBus.Publish(testEvent)
	select {
	case <-eventReceived:
		t.Fatal("Event delivered before flush")
	case <-time.After(50 * time.Millisecond):
	}

	transactionalBus.Flush(context.Background())
	wg.Wait()

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent.TransactionID, received.TransactionID)
		assert.Equal(t, testEvent.Amount, received.Amount)
		assert.Equal(t, *testEvent.FromUserID, *received.FromUserID)
		assert.Equal(t, *testEvent.ToUserID, *received.ToUserID)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestDiscardDropsPendingEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	delivered := make(chan Event, 1)
	mainBus.Subscribe(EventTypeGameSettled, func(ctx context.Context, event Event) {
		delivered <- event
	})

	transactionalBus.Publish(GameSettledEvent{GameID: 7, GameType: models.GameTypeRoulette})
	transactionalBus.Discard()

	// A later flush must not resurrect discarded events
	transactionalBus.Flush(context.Background())

	select {
	case <-delivered:
		t.Fatal("Discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribersOfOtherTypesNotCalled(t *testing.T) {
	bus := NewBus()

	called := make(chan struct{}, 1)
	bus.Subscribe(EventTypeUserCreated, func(ctx context.Context, event Event) {
		called <- struct{}{}
	})

	bus.Emit(context.Background(), GameStartedEvent{GameID: 1, GameType: models.GameTypePoker})

	select {
	case <-called:
		t.Fatal("Handler called for a different event type")
	case <-time.After(100 * time.Millisecond):
	}
}
