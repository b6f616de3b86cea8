package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"huntian-backend/models"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotChannelPrefix = "sim:snapshots:"       // Pub/Sub channel: sim:snapshots:{run_id}
	latestSnapshotKey     = "sim:snapshots:latest" // 마지막 스냅샷 JSON
	latestSnapshotTTL     = 24 * time.Hour
	publishQueueSize      = 64
)

// SnapshotChannel - run 별 스냅샷 채널 이름
func SnapshotChannel(runID string) string {
	return snapshotChannelPrefix + runID
}

// SnapshotPublisher - 스냅샷을 Redis 로 팬아웃
//
// Enqueue 는 블로킹하지 않는다. 큐가 가득 차면 스냅샷을 버린다.
type SnapshotPublisher struct {
	client *redis.Client
	queue  chan models.Snapshot
}

// NewSnapshotPublisher - 발행기 생성 (Run 으로 시작)
func NewSnapshotPublisher(client *redis.Client) *SnapshotPublisher {
	return &SnapshotPublisher{
		client: client,
		queue:  make(chan models.Snapshot, publishQueueSize),
	}
}

// Publish - 스냅샷 1건을 채널에 발행하고 latest 키 갱신
func (p *SnapshotPublisher) Publish(ctx context.Context, snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, SnapshotChannel(snap.RunID), payload)
	pipe.Set(ctx, latestSnapshotKey, payload, latestSnapshotTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

// Latest - 마지막으로 발행된 스냅샷
func (p *SnapshotPublisher) Latest(ctx context.Context) (*models.Snapshot, error) {
	payload, err := p.client.Get(ctx, latestSnapshotKey).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read latest snapshot: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Enqueue - TimelineController.OnTick 에 연결해서 사용
func (p *SnapshotPublisher) Enqueue(snap models.Snapshot) {
	select {
	case p.queue <- snap:
	default:
		log.Println("⚠️ Redis 발행 큐 가득 참, 스냅샷 폐기")
	}
}

// Run - 큐를 비우며 발행. ctx 가 취소되면 반환한다.
func (p *SnapshotPublisher) Run(ctx context.Context) {
	log.Println("📡 Redis 스냅샷 발행 시작")
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Redis 스냅샷 발행 종료")
			return
		case snap := <-p.queue:
			if err := p.Publish(ctx, snap); err != nil && ctx.Err() == nil {
				log.Printf("❌ %v", err)
			}
		}
	}
}
