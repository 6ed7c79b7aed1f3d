// Package tcpstability implements the "nst tcp-stability" command.
package tcpstability

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"nst/cmd/shared"
	"nst/pkg/log"
	"nst/pkg/metrics"
	"nst/pkg/probe"
	probetcpstability "nst/pkg/probe/tcpstability"
)

const (
	intervalFlag = "interval"
)

// GetCommand returns the CLI command driving the TCP-stability probe.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "tcp-stability",
		Usage: "Measure how well a long-lived connection survives through the proxy",
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

			target := cmd.String(shared.TargetFlag)
			cfg := probetcpstability.Config{
				Target:            target,
				HeartbeatInterval: time.Duration(cmd.Int(intervalFlag)) * time.Second,
				TestDuration:      time.Duration(cmd.Int(shared.DurationFlag)) * time.Second,
			}

			result, err := probe.RunSet(ctx, cmd.Int(shared.ParallelFlag),
				func(ctx context.Context, index int) (metrics.TCPStabilityResult, error) {
					return probetcpstability.New(client, cfg, logger).Run(ctx)
				},
				metrics.TCPStabilityResult.Merge,
			)
			if err != nil {
				logger.ErrorMsg("tcp-stability probe failed: %v", err)
				return err
			}

			collector := metrics.NewCollector(shared.ProxyDescriptor(proxy))
			collector.SetTCPStability(result)
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
			Name:  intervalFlag,
			Usage: "Heartbeat interval in seconds",
			Value: 30,
		},
		&cli.IntFlag{
			Name:  shared.DurationFlag,
			Usage: "Test duration in seconds",
			Value: 300,
		},
	)
	return flags
}
