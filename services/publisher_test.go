package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"huntian-backend/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestSnapshotPublisher_PublishDeliversToSubscriber(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, SnapshotChannel("run-1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewSnapshotPublisher(client)
	snap := BuildSnapshot("run-1", testDataset(), SimulationClock{CurrentTime: 2.5, TotalDuration: 10, Speed: 1})
	require.NoError(t, publisher.Publish(ctx, snap))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "sim:snapshots:run-1", msg.Channel)
		var got models.Snapshot
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "run-1", got.RunID)
		assert.Equal(t, 2.5, got.CurrentTime)
		assert.Equal(t, models.Waypoint{5, 0}, got.Positions[1])
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot not delivered")
	}

	assert.True(t, mr.Exists(latestSnapshotKey))
	assert.Greater(t, mr.TTL(latestSnapshotKey), time.Duration(0))

	latest, err := publisher.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.CurrentTime, latest.CurrentTime)
	assert.Equal(t, snap.ConflictVisibility, latest.ConflictVisibility)
}

func TestSnapshotPublisher_RunDrainsQueue(t *testing.T) {
	client, mr := setupTestRedis(t)
	publisher := NewSnapshotPublisher(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go publisher.Run(ctx)

	tc := loadedController(t)
	tc.OnTick(publisher.Enqueue)
	tc.Seek(4)

	assert.Eventually(t, func() bool {
		latest, err := publisher.Latest(context.Background())
		return err == nil && latest.CurrentTime == 4
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, mr.Exists(latestSnapshotKey))
}

func TestSnapshotPublisher_LatestMissing(t *testing.T) {
	client, _ := setupTestRedis(t)

	_, err := NewSnapshotPublisher(client).Latest(context.Background())
	assert.ErrorIs(t, err, redis.Nil)
}
