// Package main is the entry point for nst-server, the companion servers
// nst's probes drive traffic against: a TCP-stability heartbeat, a
// bandwidth byte streamer, a connection-perf responder, a minimal
// authoritative DNS resolver, and a jitter PING/PONG, bound at
// base+1..base+5 in that order.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"nst/cmd/shared"
	"nst/pkg/echoserver"
	"nst/pkg/log"
)

const (
	modeFlag = "mode"
	hostFlag = "host"
	portFlag = "port"
)

func main() {
	app := &cli.Command{
		Name:        "nst-server",
		Description: "Runs the companion listeners nst's probes measure against",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  modeFlag,
				Usage: "Which listener(s) to run: all, tcp-stability, bandwidth, connection-perf, dns-stability, network-jitter",
				Value: string(echoserver.ModeAll),
			},
			&cli.StringFlag{
				Name:  hostFlag,
				Usage: "Address to bind the listeners on",
				Value: "0.0.0.0",
			},
			&cli.IntFlag{
				Name:  portFlag,
				Usage: "Base port; listeners bind at base+1..base+5",
				Value: 9000,
			},
			&cli.BoolFlag{
				Name:  shared.VerboseFlag,
				Usage: "Verbose server logging",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger := log.NewLogger(false)
		logger.ErrorMsg("Run: %s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	shared.SetupSignalHandling(cancel)

	logger := log.NewLogger(cmd.Bool(shared.VerboseFlag))

	mode := echoserver.Mode(cmd.String(modeFlag))
	suite, err := echoserver.NewSuite(ctx, mode, cmd.String(hostFlag), cmd.Int(portFlag), logger)
	if err != nil {
		return fmt.Errorf("starting echo servers: %w", err)
	}

	err = suite.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
