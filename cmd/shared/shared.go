package shared

import (
	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// ProxyFlag is the SOCKS5 proxy address, "host:port".
const ProxyFlag = "proxy"

// UsernameFlag and PasswordFlag configure RFC 1929 authentication.
const (
	UsernameFlag = "username"
	PasswordFlag = "password"
)

// ConnectTimeoutFlag bounds the TCP handshake with the proxy, in
// milliseconds.
const ConnectTimeoutFlag = "connect-timeout"

// VerboseFlag enables debug-level probe tracing.
const VerboseFlag = "verbose"

// ParallelFlag is the number of identical probe instances to fan out.
const ParallelFlag = "parallel"

// ReportFlag, if set, writes the finished RunReport as JSON to this path
// in addition to printing the console summary.
const ReportFlag = "report"

// GetCommonFlags returns the flags every probe subcommand accepts:
// the proxy endpoint, optional credentials, verbosity, fan-out, and the
// optional JSON report path.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     ProxyFlag,
			Aliases:  []string{"p"},
			Usage:    "SOCKS5 proxy address, host:port",
			Category: categoryCommon,
			Value:    "127.0.0.1:1080",
		},
		&cli.StringFlag{
			Name:     UsernameFlag,
			Usage:    "RFC 1929 username, leave empty to disable authentication",
			Category: categoryCommon,
		},
		&cli.StringFlag{
			Name:     PasswordFlag,
			Usage:    "RFC 1929 password, leave empty to disable authentication",
			Category: categoryCommon,
		},
		&cli.IntFlag{
			Name:     ConnectTimeoutFlag,
			Usage:    "Proxy connect timeout in milliseconds",
			Category: categoryCommon,
			Value:    10000,
		},
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose probe logging",
			Category: categoryCommon,
		},
		&cli.IntFlag{
			Name:     ParallelFlag,
			Aliases:  []string{"j"},
			Usage:    "Number of identical probe instances to run concurrently",
			Category: categoryCommon,
			Value:    1,
		},
		&cli.StringFlag{
			Name:     ReportFlag,
			Aliases:  []string{"o"},
			Usage:    "Write the finished report as JSON to this path",
			Category: categoryCommon,
		},
	}
}

// TargetFlag is the single host:port a probe drives traffic against.
const TargetFlag = "target"

// DurationFlag is a probe's total run time, in seconds.
const DurationFlag = "duration"
