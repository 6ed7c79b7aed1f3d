// Package report serializes a finished metrics.RunReport to disk. JSON is
// the only format promoted out of the external-adapter boundary into
// code nst owns: CSV/HTML/text stay out of scope, same as the CLI parser
// and config loader they'd otherwise live alongside.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nst/pkg/metrics"
)

// document is the on-disk JSON shape. It mirrors RunReport field for
// field but adds computed convenience fields (test duration, rating) so a
// consumer never needs to re-run the scoring formulas just to read a
// report.
type document struct {
	SessionID      string                  `json:"session_id"`
	TestStartTime  time.Time               `json:"test_start_time"`
	TestEndTime    time.Time               `json:"test_end_time"`
	TestDuration   string                  `json:"test_duration"`
	Proxy          proxyDocument           `json:"proxy"`
	OverallScore   *float64                `json:"overall_score,omitempty"`
	Rating         string                  `json:"rating,omitempty"`
	TCPStability   *metrics.TCPStabilityResult   `json:"tcp_stability,omitempty"`
	Bandwidth      *metrics.BandwidthResult      `json:"bandwidth,omitempty"`
	ConnectionPerf *metrics.ConnectionPerfResult `json:"connection_perf,omitempty"`
	DNS            *metrics.DNSResult            `json:"dns_stability,omitempty"`
	Jitter         *metrics.JitterResult         `json:"network_jitter,omitempty"`
}

type proxyDocument struct {
	Address           string `json:"address"`
	ProxyType         string `json:"proxy_type"`
	AuthRequired      bool   `json:"auth_required"`
	ConnectTimeout    string `json:"connect_timeout"`
}

func toDocument(r metrics.RunReport) document {
	d := document{
		SessionID:     r.SessionID,
		TestStartTime: r.TestStartTime,
		TestEndTime:   r.TestEndTime,
		TestDuration:  r.TestDuration().String(),
		Proxy: proxyDocument{
			Address:        r.Proxy.Address,
			ProxyType:      r.Proxy.ProxyType,
			AuthRequired:   r.Proxy.AuthRequired,
			ConnectTimeout: r.Proxy.ConnectionTimeout.String(),
		},
		OverallScore:   r.OverallScore,
		TCPStability:   r.TCPStability,
		Bandwidth:      r.Bandwidth,
		ConnectionPerf: r.ConnectionPerf,
		DNS:            r.DNS,
		Jitter:         r.Jitter,
	}
	if r.OverallScore != nil {
		d.Rating = metrics.Rating(*r.OverallScore)
	}
	return d
}

// WriteJSON marshals r as indented JSON and writes it to path, creating
// any missing parent directories first.
func WriteJSON(r metrics.RunReport, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(toDocument(r), "", "  ")
	if err != nil {
		return fmt.Errorf("serializing report as JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report to %s: %w", path, err)
	}
	return nil
}
