// Package bandwidth implements the "nst bandwidth" command.
package bandwidth

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"nst/cmd/shared"
	"nst/pkg/log"
	"nst/pkg/metrics"
	probebandwidth "nst/pkg/probe/bandwidth"
	"nst/pkg/probe"
)

const sizeFlag = "size"

// GetCommand returns the CLI command driving the bandwidth probe.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "bandwidth",
		Usage: "Measure sustained upload/download throughput through the proxy",
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

			cfg := probebandwidth.Config{
				Target:       cmd.String(shared.TargetFlag),
				ChunkSize:    cmd.Int(sizeFlag),
				TestDuration: time.Duration(cmd.Int(shared.DurationFlag)) * time.Second,
			}

			result, err := probe.RunSet(ctx, cmd.Int(shared.ParallelFlag),
				func(ctx context.Context, index int) (metrics.BandwidthResult, error) {
					return probebandwidth.New(client, cfg, logger).Run(ctx)
				},
				metrics.BandwidthResult.Merge,
			)
			if err != nil {
				logger.ErrorMsg("bandwidth probe failed: %v", err)
				return err
			}

			collector := metrics.NewCollector(shared.ProxyDescriptor(proxy))
			collector.SetBandwidth(result)
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
			Value: "httpbin.org:80",
		},
		&cli.IntFlag{
			Name:  sizeFlag,
			Usage: "Chunk size in bytes for each upload/download round",
			Value: 1024,
		},
		&cli.IntFlag{
			Name:  shared.DurationFlag,
			Usage: "Test duration in seconds",
			Value: 60,
		},
	)
	return flags
}
