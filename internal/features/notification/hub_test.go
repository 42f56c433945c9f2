package notification

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHubDeliversToAccountSubscribers(t *testing.T) {
	freezeClock(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	hub := NewHub(zap.NewNop())
	target := newAccount(newUser("Ana"))
	other := newAccount(newUser("Ben"))

	messages, unsubscribe := hub.Subscribe(target.UUID())
	defer unsubscribe()
	otherMessages, unsubscribeOther := hub.Subscribe(other.UUID())
	defer unsubscribeOther()

	n, err := OnImportFinished(&recordingRepository{}, importFinished(target))
	require.NoError(t, err)
	hub.Publish(n)

	select {
	case payload := <-messages:
		var decoded ApiNotification
		require.NoError(t, json.Unmarshal(payload, &decoded))
		assert.Equal(t, n.ID().String(), decoded.ID)
		assert.Equal(t, "import_finished", decoded.EventType)
	default:
		t.Fatal("expected a message for the target account")
	}
	assert.Empty(t, otherMessages)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	target := newAccount(newUser("Ana"))

	messages, unsubscribe := hub.Subscribe(target.UUID())
	assert.Equal(t, 1, hub.Subscribers(target.UUID()))

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, hub.Subscribers(target.UUID()))

	_, open := <-messages
	assert.False(t, open)
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	hub := NewHub(zap.New(core))
	target := newAccount(newUser("Ana"))

	messages, unsubscribe := hub.Subscribe(target.UUID())
	defer unsubscribe()

	n, err := OnImportFinished(&recordingRepository{}, importFinished(target))
	require.NoError(t, err)
	for i := 0; i < subscriberBuffer+2; i++ {
		hub.Publish(n)
	}

	assert.Len(t, messages, subscriberBuffer)
	assert.Equal(t, 2, logs.FilterMessage("Dropping notification for slow subscriber").Len())
}

func TestHubIgnoresNil(t *testing.T) {
	hub := NewHub(zap.NewNop())
	assert.NotPanics(t, func() { hub.Publish(nil) })
}
