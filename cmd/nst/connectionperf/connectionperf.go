// Package connectionperf implements the "nst connection-perf" command.
package connectionperf

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"nst/cmd/shared"
	"nst/pkg/log"
	"nst/pkg/metrics"
	"nst/pkg/probe"
	probeconnperf "nst/pkg/probe/connperf"
)

const (
	concurrentFlag = "concurrent"
	totalFlag      = "total"
)

// GetCommand returns the CLI command driving the connection-perf probe.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "connection-perf",
		Usage: "Measure CONNECT latency and reliable concurrency through the proxy",
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

			cfg := probeconnperf.Config{
				Target:                cmd.String(shared.TargetFlag),
				ConcurrentConnections: cmd.Int(concurrentFlag),
				TotalConnections:      cmd.Int(totalFlag),
			}

			result, err := probe.RunSet(ctx, cmd.Int(shared.ParallelFlag),
				func(ctx context.Context, index int) (metrics.ConnectionPerfResult, error) {
					return probeconnperf.New(client, cfg, logger).Run(ctx)
				},
				metrics.ConnectionPerfResult.Merge,
			)
			if err != nil {
				logger.ErrorMsg("connection-perf probe failed: %v", err)
				return err
			}

			collector := metrics.NewCollector(shared.ProxyDescriptor(proxy))
			collector.SetConnectionPerf(result)
			return shared.Finish(os.Stdout, cmd, logger, collector.Finalize())
		},
	}
}

func getFlags() []cli.Flag {
	flags := append([]cli.Flag{}, shared.GetCommonFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  shared.TargetFlag,
			Usage: "Target address reachable through the proxy, host:port",
			Value: "8.8.8.8:53",
		},
		&cli.IntFlag{
			Name:  concurrentFlag,
			Usage: "Advisory concurrent-connection count; not used by the probe, whose burst phase runs the fixed 2/5/10/20/50 ladder",
			Value: 10,
		},
		&cli.IntFlag{
			Name:  totalFlag,
			Usage: "Total sequential-phase connection attempts",
			Value: 100,
		},
	)
	return flags
}
