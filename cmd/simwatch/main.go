// Command simwatch is a terminal companion for the simulation server: it can
// watch a live timeline over WebSocket, export a demo dataset and replay a
// dataset headless.
package main

import (
	"github.com/alecthomas/kong"
)

var cli struct {
	Watch  WatchCmd  `cmd:"" help:"Connect to a running server and print timeline events."`
	Demo   DemoCmd   `cmd:"" help:"Write a seeded demo dataset as JSON."`
	Replay ReplayCmd `cmd:"" help:"Replay a dataset offline and print events and final metrics."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("simwatch"),
		kong.Description("AGV route simulation companion tool."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
