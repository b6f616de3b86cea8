package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"huntian-backend/models"

	"github.com/gorilla/websocket"
)

type WatchCmd struct {
	URL     string        `help:"WebSocket endpoint." default:"ws://localhost:3000/websocket/web"`
	Play    bool          `help:"Send play after connecting."`
	Speed   float64       `help:"Send a speed change after connecting (0 keeps the current speed)."`
	Seek    float64       `help:"Seek to this time before playing (negative skips)." default:"-1"`
	Timeout time.Duration `help:"How long to run before exiting (0 for infinite)."`
	JSON    bool          `name:"json" help:"Dump raw messages instead of formatted events."`
}

// watchStats - 수신 메시지 집계
type watchStats struct {
	Snapshots int
	Events    map[string]int
	Last      models.Snapshot
	StartTime time.Time
}

func (c *WatchCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.URL, err)
	}
	defer conn.Close()
	log.Printf("Connected to %s", c.URL)

	for _, cmd := range c.commands() {
		if err := conn.WriteJSON(models.WebSocketMessage{Type: models.MessageTypeControl, Data: cmd}); err != nil {
			return fmt.Errorf("send %s: %w", cmd.Action, err)
		}
	}

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	stats := &watchStats{Events: map[string]int{}, StartTime: time.Now()}
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				stats.report()
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if done := stats.record(raw, c.JSON); done {
			stats.report()
			return nil
		}
	}
}

func (c *WatchCmd) commands() []models.ControlCommand {
	var cmds []models.ControlCommand
	if c.Speed > 0 {
		cmds = append(cmds, models.ControlCommand{Action: models.ActionSpeed, Value: c.Speed})
	}
	if c.Seek >= 0 {
		cmds = append(cmds, models.ControlCommand{Action: models.ActionSeek, Value: c.Seek})
	}
	if c.Play {
		cmds = append(cmds, models.ControlCommand{Action: models.ActionPlay})
	}
	return cmds
}

// record returns true once the simulation has completed.
func (s *watchStats) record(raw []byte, showJSON bool) bool {
	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return false
	}

	if showJSON {
		var pretty bytes.Buffer
		_ = json.Indent(&pretty, raw, "", "  ")
		fmt.Printf("%s\n\n", pretty.String())
	}

	switch msg.Type {
	case models.MessageTypeSnapshot:
		s.Snapshots++
		_ = json.Unmarshal(msg.Data, &s.Last)
	case models.MessageTypeTimelineEvent:
		var ev models.TimelineEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return false
		}
		s.Events[ev.Type]++
		if !showJSON {
			fmt.Println(formatEvent(ev))
		}
		return ev.Type == models.EventSimulationCompleted
	case models.MessageTypeError:
		log.Printf("server error: %s", msg.Data)
	}
	return false
}

func (s *watchStats) report() {
	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Watched for %.1fs, %d snapshots\n", time.Since(s.StartTime).Seconds(), s.Snapshots)
	fmt.Printf("Run %s at t=%.2f/%.2f (%s, x%g)\n",
		s.Last.RunID, s.Last.CurrentTime, s.Last.TotalDuration, s.Last.State, s.Last.Speed)
	for _, t := range []string{
		models.EventTaskStarted, models.EventTaskFinished, models.EventConflictActive,
		models.EventMarkerReached, models.EventSimulationCompleted,
	} {
		fmt.Printf("  %-22s %d\n", t, s.Events[t])
	}
	fmt.Printf("Efficiency: %.1f%% (%s)\n", s.Last.Metrics.OverallEfficiency, s.Last.Metrics.EfficiencyRating)
}

func formatEvent(ev models.TimelineEvent) string {
	return fmt.Sprintf("[%8.2fs] %-20s p=%-3d %s", ev.SimTime, ev.Type, ev.Priority, ev.Label)
}
