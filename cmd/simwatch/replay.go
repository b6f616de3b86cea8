package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"huntian-backend/models"
	"huntian-backend/services"
)

type ReplayCmd struct {
	File string  `arg:"" type:"existingfile" help:"Dataset JSON file."`
	Step float64 `help:"Simulated seconds per tick." default:"0.5"`
}

func (c *ReplayCmd) Run() error {
	ds, err := services.LoadDatasetFile(c.File)
	if err != nil {
		return err
	}
	final := replay(ds, c.Step, os.Stdout)
	printMetrics(os.Stdout, final)
	return nil
}

// replay - 시계를 step 초씩 끝까지 진행하며 이벤트를 출력하고 마지막 스냅샷 반환
func replay(ds *models.SimulationDataset, step float64, out io.Writer) models.Snapshot {
	if step <= 0 {
		step = 0.5
	}
	ctrl := services.NewTimelineController()
	detector := services.NewEventDetector(func(ev models.TimelineEvent) {
		fmt.Fprintln(out, formatEvent(ev))
	})
	ctrl.OnTick(detector.Observe)

	ctrl.Load("replay", ds)
	ctrl.Play()
	for {
		snap, advanced := ctrl.Tick(step)
		if !advanced {
			return ctrl.Snapshot()
		}
		if !snap.IsPlaying {
			return snap
		}
	}
}

func printMetrics(out io.Writer, snap models.Snapshot) {
	m := snap.Metrics
	fmt.Fprintf(out, "--------------------------------------------------\n")
	fmt.Fprintf(out, "Completion time:   %s\n", services.FormatDuration(m.TotalCompletionTime))
	fmt.Fprintf(out, "Tasks completed:   %d\n", snap.CompletedTasks)
	fmt.Fprintf(out, "Bottleneck:        %.1f%%\n", m.BottleneckUtilization)
	fmt.Fprintf(out, "Throughput:        %.1f tasks/h\n", m.Throughput)
	fmt.Fprintf(out, "Conflicts:         %d\n", m.ConflictCount)
	fmt.Fprintf(out, "Efficiency:        %.1f%% (%s)\n", m.OverallEfficiency, m.EfficiencyRating)
}

type DemoCmd struct {
	Seed     int64  `help:"Random seed." default:"42"`
	AGVs     int    `name:"agvs" help:"Number of AGVs." default:"3"`
	Stations int    `help:"Number of stations." default:"6"`
	Tasks    int    `help:"Tasks per AGV." default:"4"`
	Out      string `short:"o" type:"path" help:"Output file (stdout when empty)."`
}

func (c *DemoCmd) Run() error {
	opts := services.DemoOptions{
		Seed:        c.Seed,
		Stations:    c.Stations,
		AGVs:        c.AGVs,
		TasksPerAGV: c.Tasks,
	}
	if err := opts.CheckLimits(); err != nil {
		return err
	}
	ds, err := services.GenerateDemoDataset(opts)
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return err
	}
	if c.Out == "" {
		_, err = os.Stdout.Write(append(body, '\n'))
		return err
	}
	return os.WriteFile(c.Out, body, 0o644)
}
