package handlers

import (
	"context"
	"testing"
	"time"

	"huntian-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestClientHub_BroadcastNeverBlocks(t *testing.T) {
	hub := NewClientHub()

	// Run 없이도 큐가 가득 차면 버리고 반환한다
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.BroadcastSnapshot(models.Snapshot{CurrentTime: float64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked")
	}
	assert.Len(t, hub.broadcast, cap(hub.broadcast))

	msg := <-hub.broadcast
	assert.Equal(t, models.MessageTypeSnapshot, msg.Type)
	assert.NotZero(t, msg.Timestamp)
}

func TestClientHub_RunStopsOnCancel(t *testing.T) {
	hub := NewClientHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	hub.BroadcastEvent(models.TimelineEvent{Type: models.EventTaskStarted})
	assert.Equal(t, map[string]int{"web": 0, "observer": 0}, hub.GetClientCount())

	cancel()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Zero(t, hub.totalClients())
}
