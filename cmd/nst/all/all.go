// Package all implements the "nst all" command: tcp-stability, bandwidth,
// and connection-perf run back to back against their own default targets
// and land in a single report.
package all

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"nst/cmd/shared"
	"nst/pkg/log"
	"nst/pkg/metrics"
	"nst/pkg/probe"
	probebandwidth "nst/pkg/probe/bandwidth"
	probeconnperf "nst/pkg/probe/connperf"
	probetcpstability "nst/pkg/probe/tcpstability"
)

// defaults mirror the standalone subcommands' own flag defaults; "all"
// takes no probe-specific flags, only the common ones plus parallelism.
const (
	defaultTarget            = "8.8.8.8:53"
	defaultBandwidthTarget   = "httpbin.org:80"
	defaultHeartbeatInterval = 30
	defaultDuration          = 300
	defaultBandwidthDuration = 60
	defaultChunkSize         = 1024
	defaultConcurrent        = 10
	defaultTotal             = 100
)

// GetCommand returns the CLI command driving all three core probes in
// sequence.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "all",
		Usage: "Run tcp-stability, bandwidth, and connection-perf with their defaults",
		Flags: shared.GetCommonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			shared.SetupSignalHandling(cancel)

			logger := log.NewLogger(cmd.Bool(shared.VerboseFlag))

			client, proxy, err := shared.BuildClient(cmd)
			if err != nil {
				return err
			}

			parallel := cmd.Int(shared.ParallelFlag)
			collector := metrics.NewCollector(shared.ProxyDescriptor(proxy))

			tcpResult, err := probe.RunSet(ctx, parallel,
				func(ctx context.Context, index int) (metrics.TCPStabilityResult, error) {
					cfg := probetcpstability.Config{
						Target:            defaultTarget,
						HeartbeatInterval: defaultHeartbeatInterval * time.Second,
						TestDuration:      defaultDuration * time.Second,
					}
					return probetcpstability.New(client, cfg, logger).Run(ctx)
				},
				metrics.TCPStabilityResult.Merge,
			)
			if err != nil {
				logger.ErrorMsg("all: tcp-stability probe failed: %v", err)
				return err
			}
			collector.SetTCPStability(tcpResult)

			bwResult, err := probe.RunSet(ctx, parallel,
				func(ctx context.Context, index int) (metrics.BandwidthResult, error) {
					cfg := probebandwidth.Config{
						Target:       defaultBandwidthTarget,
						ChunkSize:    defaultChunkSize,
						TestDuration: defaultBandwidthDuration * time.Second,
					}
					return probebandwidth.New(client, cfg, logger).Run(ctx)
				},
				metrics.BandwidthResult.Merge,
			)
			if err != nil {
				logger.ErrorMsg("all: bandwidth probe failed: %v", err)
				return err
			}
			collector.SetBandwidth(bwResult)

			connResult, err := probe.RunSet(ctx, parallel,
				func(ctx context.Context, index int) (metrics.ConnectionPerfResult, error) {
					cfg := probeconnperf.Config{
						Target:                defaultTarget,
						ConcurrentConnections: defaultConcurrent,
						TotalConnections:      defaultTotal,
					}
					return probeconnperf.New(client, cfg, logger).Run(ctx)
				},
				metrics.ConnectionPerfResult.Merge,
			)
			if err != nil {
				logger.ErrorMsg("all: connection-perf probe failed: %v", err)
				return err
			}
			collector.SetConnectionPerf(connResult)

			return shared.Finish(os.Stdout, cmd, logger, collector.Finalize())
		},
	}
}
