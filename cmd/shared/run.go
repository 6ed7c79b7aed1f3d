package shared

import (
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"nst/pkg/config"
	"nst/pkg/log"
	"nst/pkg/metrics"
	nstreport "nst/pkg/report"
	"nst/pkg/socksclient"
)

// BuildClient parses the common proxy flags into a config.Proxy, validates
// it, and returns a socksclient.Client ready for probes to dial through.
func BuildClient(cmd *cli.Command) (*socksclient.Client, config.Proxy, error) {
	host, port, err := ParseHostPort(cmd.String(ProxyFlag))
	if err != nil {
		return nil, config.Proxy{}, err
	}

	proxy := config.Proxy{
		Host:           host,
		Port:           port,
		Username:       cmd.String(UsernameFlag),
		Password:       cmd.String(PasswordFlag),
		ConnectTimeout: time.Duration(cmd.Int(ConnectTimeoutFlag)) * time.Millisecond,
	}

	if errs := config.Validate(proxy); len(errs) > 0 {
		return nil, config.Proxy{}, joinErrors("invalid proxy configuration", errs)
	}

	return socksclient.New(proxy.Endpoint()), proxy, nil
}

// ProxyDescriptor builds the metrics.ProxyDescriptor recorded in the
// finished report.
func ProxyDescriptor(proxy config.Proxy) metrics.ProxyDescriptor {
	return metrics.ProxyDescriptor{
		Address:           FormatHostPort(proxy.Host, proxy.Port),
		ProxyType:         "socks5",
		AuthRequired:      proxy.Username != "",
		ConnectionTimeout: proxy.ConnectTimeout,
	}
}

// Finish prints the console summary for report and, if the --report flag
// was set, writes it as JSON too.
func Finish(w io.Writer, cmd *cli.Command, logger *log.Logger, report metrics.RunReport) error {
	report.Summary().PrintSummary(w)

	path := cmd.String(ReportFlag)
	if path == "" {
		return nil
	}

	if err := nstreport.WriteJSON(report, path); err != nil {
		return err
	}
	logger.InfoMsg("report written to %s", path)
	return nil
}

func joinErrors(context string, errs []error) error {
	msg := context
	for _, err := range errs {
		msg += "\n  - " + err.Error()
	}
	return fmt.Errorf("%s", msg)
}
