// Package main is the entry point for nst, a SOCKS5 proxy quality
// measurement toolkit.
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"nst/cmd/nst/all"
	"nst/cmd/nst/bandwidth"
	"nst/cmd/nst/connectionperf"
	"nst/cmd/nst/dnsstability"
	"nst/cmd/nst/networkjitter"
	"nst/cmd/nst/tcpstability"
	"nst/pkg/log"
)

func main() {
	app := &cli.Command{
		Name:        "nst",
		Description: "Measures SOCKS5 proxy quality: stability, throughput, connection performance, DNS, and jitter",
		Commands: []*cli.Command{
			tcpstability.GetCommand(),
			bandwidth.GetCommand(),
			connectionperf.GetCommand(),
			dnsstability.GetCommand(),
			networkjitter.GetCommand(),
			all.GetCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger := log.NewLogger(false)
		logger.ErrorMsg("Run: %s\n", err)
		os.Exit(1)
	}
}
