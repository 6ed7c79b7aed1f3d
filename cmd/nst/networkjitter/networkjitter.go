// Package networkjitter implements the "nst network-jitter" command.
// Not part of the original CLI surface but the probe is complete, so
// it gets a direct entry point alongside the three original probes.
package networkjitter

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"nst/cmd/shared"
	"nst/pkg/log"
	"nst/pkg/metrics"
	"nst/pkg/probe"
	probejitter "nst/pkg/probe/jitter"
)

const (
	targetsFlag      = "targets"
	pingIntervalFlag = "ping-interval"
)

// GetCommand returns the CLI command driving the network-jitter probe.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "network-jitter",
		Usage: "Measure round-trip latency variance via fresh per-tick CONNECT tunnels",
		Flags: getFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			shared.SetupSignalHandling(cancel)

			logger := log.NewLogger(cmd.Bool(shared.VerboseFlag))

			client, proxy, err := shared.BuildClient(cmd)
			if err != nil {
				return err
			}

			cfg := probejitter.Config{
				Targets:      cmd.StringSlice(targetsFlag),
				PingInterval: time.Duration(cmd.Int(pingIntervalFlag)) * time.Second,
				TestDuration: time.Duration(cmd.Int(shared.DurationFlag)) * time.Second,
			}

			result, err := probe.RunSet(ctx, cmd.Int(shared.ParallelFlag),
				func(ctx context.Context, index int) (metrics.JitterResult, error) {
					return probejitter.New(client, cfg, logger).Run(ctx)
				},
				metrics.JitterResult.Merge,
			)
			if err != nil {
				logger.ErrorMsg("network-jitter probe failed: %v", err)
				return err
			}

			collector := metrics.NewCollector(shared.ProxyDescriptor(proxy))
			collector.SetJitter(result)
			return shared.Finish(os.Stdout, cmd, logger, collector.Finalize())
		},
	}
}

func getFlags() []cli.Flag {
	flags := append([]cli.Flag{}, shared.GetCommonFlags()...)
	flags = append(flags,
		&cli.StringSliceFlag{
			Name:  targetsFlag,
			Usage: "Targets to ping round-robin, host:port, repeatable",
			Value: []string{"8.8.8.8:53"},
		},
		&cli.IntFlag{
			Name:  pingIntervalFlag,
			Usage: "Interval between pings in seconds",
			Value: 5,
		},
		&cli.IntFlag{
			Name:  shared.DurationFlag,
			Usage: "Test duration in seconds",
			Value: 60,
		},
	)
	return flags
}
