package services

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"huntian-backend/models"
)

const (
	DefaultTickInterval = 50 * time.Millisecond // 20Hz, speed 와 무관
	DefaultSpeed        = 1.0
	MinSpeed            = 0.1
	MaxSpeed            = 1000.0
)

// SimulationClock - 시뮬레이션 시계 (TimelineController 만 변경한다)
type SimulationClock struct {
	CurrentTime   float64 `json:"currentTime"`
	TotalDuration float64 `json:"totalDuration"`
	IsPlaying     bool    `json:"isPlaying"`
	Speed         float64 `json:"speed"`
}

// State - 재생 여부와 현재 시각으로 타임라인 상태 판별
func (c SimulationClock) State() models.TimelineState {
	switch {
	case c.IsPlaying:
		return models.TimelinePlaying
	case c.TotalDuration > 0 && c.CurrentTime >= c.TotalDuration:
		return models.TimelineCompleted
	case c.CurrentTime <= 0:
		return models.TimelineIdle
	default:
		return models.TimelinePaused
	}
}

type subscriber struct {
	id int
	fn func(models.Snapshot)
}

// TimelineController - 시뮬레이션 시계를 소유하는 유일한 상태 컴포넌트
//
// 모든 변경(play/pause/seek/tick/...) 직후 하나의 시계 값으로 스냅샷을 만들어
// 구독자에게 변경 순서대로 전달한다. 구독 콜백 안에서 컨트롤러 조작을 동기
// 호출하면 안 된다 (채널로 넘길 것).
type TimelineController struct {
	mu      sync.Mutex // clock, dataset, last, subs
	publish sync.Mutex // 스냅샷 전달 순서 보장

	clock   SimulationClock
	runID   string
	dataset *models.SimulationDataset
	last    models.Snapshot

	subs      []subscriber
	nextSubID int
}

// NewTimelineController - 빈 데이터셋으로 컨트롤러 생성
func NewTimelineController() *TimelineController {
	tc := &TimelineController{
		clock:   SimulationClock{Speed: DefaultSpeed},
		dataset: &models.SimulationDataset{},
	}
	tc.last = BuildSnapshot(tc.runID, tc.dataset, tc.clock)
	return tc
}

// OnTick - 스냅샷 구독. 반환된 함수로 구독 해제
func (tc *TimelineController) OnTick(fn func(models.Snapshot)) func() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.nextSubID++
	id := tc.nextSubID
	tc.subs = append(tc.subs, subscriber{id: id, fn: fn})

	return func() {
		tc.mu.Lock()
		defer tc.mu.Unlock()
		for i, s := range tc.subs {
			if s.id == id {
				tc.subs = append(tc.subs[:i:i], tc.subs[i+1:]...)
				return
			}
		}
	}
}

// Load - 새 데이터셋 로드. 시계는 0 으로 돌아가고 배속은 유지된다.
func (tc *TimelineController) Load(runID string, dataset *models.SimulationDataset) models.Snapshot {
	if dataset == nil {
		dataset = &models.SimulationDataset{}
	}
	snap, _ := tc.mutate(func(c *SimulationClock) bool {
		tc.runID = runID
		tc.dataset = dataset
		c.CurrentTime = 0
		c.IsPlaying = false
		c.TotalDuration = dataset.TotalDuration()
		return true
	})
	log.Printf("📦 데이터셋 로드: run=%s, routes=%d, total=%.1fs", runID, len(dataset.Routes), snap.TotalDuration)
	return snap
}

// Play - currentTime < totalDuration 일 때만 재생 시작
func (tc *TimelineController) Play() models.Snapshot {
	snap, _ := tc.mutate(func(c *SimulationClock) bool {
		if c.CurrentTime < c.TotalDuration {
			c.IsPlaying = true
		}
		return true
	})
	log.Printf("▶️ 재생: t=%.2f, playing=%v", snap.CurrentTime, snap.IsPlaying)
	return snap
}

// Pause - 재생 중지. 현재 시각은 그대로 유지된다.
func (tc *TimelineController) Pause() models.Snapshot {
	snap, _ := tc.mutate(func(c *SimulationClock) bool {
		c.IsPlaying = false
		return true
	})
	log.Printf("⏸️ 일시정지: t=%.2f", snap.CurrentTime)
	return snap
}

// Seek - [0, totalDuration] 로 clamp 후 즉시 이동. 재생 상태는 바꾸지 않는다.
func (tc *TimelineController) Seek(t float64) models.Snapshot {
	snap, _ := tc.mutate(func(c *SimulationClock) bool {
		c.CurrentTime = clampTime(t, c.TotalDuration)
		return true
	})
	return snap
}

// SetSpeed - 배속 변경 (다음 tick 부터 적용)
//
// 0 이하/NaN 은 MinSpeed, +Inf 는 MaxSpeed 로 보정한다.
func (tc *TimelineController) SetSpeed(s float64) models.Snapshot {
	speed := ClampSpeed(s)
	snap, _ := tc.mutate(func(c *SimulationClock) bool {
		c.Speed = speed
		return true
	})
	log.Printf("⏩ 배속 변경: x%g", speed)
	return snap
}

// Reset - 처음으로 되감고 정지
func (tc *TimelineController) Reset() models.Snapshot {
	snap, _ := tc.mutate(func(c *SimulationClock) bool {
		c.CurrentTime = 0
		c.IsPlaying = false
		return true
	})
	log.Println("⏮️ 시뮬레이션 리셋")
	return snap
}

// Tick - 재생 중일 때 wallDelta(초) * speed 만큼 시계 진행
//
// 끝에 도달하면 totalDuration 으로 clamp 하고 재생을 멈춘다. 재생 중이 아니거나
// wallDelta 가 양수가 아니면 아무것도 하지 않고 false 를 반환한다.
func (tc *TimelineController) Tick(wallDelta float64) (models.Snapshot, bool) {
	return tc.mutate(func(c *SimulationClock) bool {
		if !c.IsPlaying || !(wallDelta > 0) {
			return false
		}
		c.CurrentTime += wallDelta * c.Speed
		if c.CurrentTime >= c.TotalDuration {
			c.CurrentTime = c.TotalDuration
			c.IsPlaying = false
		}
		return true
	})
}

// Snapshot - 마지막으로 발행된 스냅샷
func (tc *TimelineController) Snapshot() models.Snapshot {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.last
}

// Clock - 현재 시계 값
func (tc *TimelineController) Clock() SimulationClock {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.clock
}

// Run - 고정 간격 tick 루프. ctx 가 취소되면 반환한다.
func (tc *TimelineController) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("🚀 타임라인 루프 시작 (interval=%v)", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 타임라인 루프 종료")
			return
		case <-ticker.C:
			snap, advanced := tc.Tick(interval.Seconds())
			if advanced && snap.State == models.TimelineCompleted {
				log.Printf("🏁 시뮬레이션 완료: run=%s, t=%.1fs", snap.RunID, snap.CurrentTime)
			}
		}
	}
}

// mutate applies fn to the clock and, if fn reports a change, publishes the
// resulting snapshot to every subscriber before the next mutation starts.
func (tc *TimelineController) mutate(fn func(c *SimulationClock) bool) (models.Snapshot, bool) {
	tc.publish.Lock()
	defer tc.publish.Unlock()

	tc.mu.Lock()
	if !fn(&tc.clock) {
		snap := tc.last
		tc.mu.Unlock()
		return snap, false
	}
	snap := BuildSnapshot(tc.runID, tc.dataset, tc.clock)
	tc.last = snap
	subs := make([]subscriber, len(tc.subs))
	copy(subs, tc.subs)
	tc.mu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
	return snap, true
}

// ClampSpeed - 유효한 배속 범위로 보정
func ClampSpeed(s float64) float64 {
	switch {
	case math.IsNaN(s) || s <= 0:
		return MinSpeed
	case s > MaxSpeed:
		return MaxSpeed
	default:
		return s
	}
}

func clampTime(t, total float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > total {
		return total
	}
	return t
}
