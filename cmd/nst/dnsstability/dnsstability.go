// Package dnsstability implements the "nst dns-stability" command. Not
// part of the original CLI surface (the original bandwidth/tcp-stability/
// connection-perf/all command set never exposed its own DNS and jitter
// servers as probes), but the probe itself is complete, so it gets an
// entry point too rather than being reachable only via nst-server.
package dnsstability

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"nst/cmd/shared"
	"nst/pkg/log"
	"nst/pkg/metrics"
	"nst/pkg/probe"
	probedns "nst/pkg/probe/dns"
)

const (
	domainsFlag       = "domains"
	queryIntervalFlag = "query-interval"
)

// GetCommand returns the CLI command driving the DNS-stability probe.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "dns-stability",
		Usage: "Measure DNS resolution success rate and latency through a UDP ASSOCIATE relay",
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

			cfg := probedns.Config{
				Domains:       cmd.StringSlice(domainsFlag),
				QueryInterval: time.Duration(cmd.Int(queryIntervalFlag)) * time.Second,
				TestDuration:  time.Duration(cmd.Int(shared.DurationFlag)) * time.Second,
			}

			result, err := probe.RunSet(ctx, cmd.Int(shared.ParallelFlag),
				func(ctx context.Context, index int) (metrics.DNSResult, error) {
					return probedns.New(client, cfg, logger).Run(ctx)
				},
				metrics.DNSResult.Merge,
			)
			if err != nil {
				logger.ErrorMsg("dns-stability probe failed: %v", err)
				return err
			}

			collector := metrics.NewCollector(shared.ProxyDescriptor(proxy))
			collector.SetDNS(result)
			return shared.Finish(os.Stdout, cmd, logger, collector.Finalize())
		},
	}
}

func getFlags() []cli.Flag {
	flags := append([]cli.Flag{}, shared.GetCommonFlags()...)
	flags = append(flags,
		&cli.StringSliceFlag{
			Name:  domainsFlag,
			Usage: "Domains to resolve round-robin, repeatable",
			Value: []string{"example.com"},
		},
		&cli.IntFlag{
			Name:  queryIntervalFlag,
			Usage: "Interval between queries in seconds",
			Value: 10,
		},
		&cli.IntFlag{
			Name:  shared.DurationFlag,
			Usage: "Test duration in seconds",
			Value: 60,
		},
	)
	return flags
}
