// Package config defines the configuration structures nst's CLI and probe
// runtime share: the proxy endpoint, per-probe settings, and the run-wide
// aggregate built from CLI flags or a YAML file.
package config

import (
	"fmt"
	"time"

	"nst/pkg/socksclient"
)

// Proxy describes the SOCKS5 proxy a run measures through.
type Proxy struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Username       string        `yaml:"username,omitempty"`
	Password       string        `yaml:"password,omitempty"`
	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty"`
}

// Endpoint converts Proxy into the socksclient.Endpoint the dialer needs.
func (p Proxy) Endpoint() socksclient.Endpoint {
	return socksclient.Endpoint{
		Host:           p.Host,
		Port:           p.Port,
		Username:       p.Username,
		Password:       p.Password,
		ConnectTimeout: p.ConnectTimeout,
	}
}

// Validate checks Proxy for errors.
func (p Proxy) Validate() []error {
	var errs []error
	if p.Host == "" {
		errs = append(errs, fmt.Errorf("proxy: host must not be empty"))
	}
	if p.Port <= 0 || p.Port > 65535 {
		errs = append(errs, fmt.Errorf("proxy: port %d out of range", p.Port))
	}
	if (p.Username == "") != (p.Password == "") {
		errs = append(errs, fmt.Errorf("proxy: username and password must both be set or both be empty"))
	}
	return errs
}

// TCPStability holds the heartbeat probe's configuration.
type TCPStability struct {
	Target           string        `yaml:"target"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	TestDuration     time.Duration `yaml:"test_duration"`
	Parallel         int           `yaml:"parallel"`
}

// Validate checks TCPStability for errors.
func (c TCPStability) Validate() []error {
	var errs []error
	if c.Target == "" {
		errs = append(errs, fmt.Errorf("tcp-stability: target must not be empty"))
	}
	if c.HeartbeatInterval <= 0 {
		errs = append(errs, fmt.Errorf("tcp-stability: heartbeat_interval must be positive"))
	}
	if c.TestDuration <= 0 {
		errs = append(errs, fmt.Errorf("tcp-stability: test_duration must be positive"))
	}
	if c.Parallel <= 0 {
		errs = append(errs, fmt.Errorf("tcp-stability: parallel must be at least 1"))
	}
	return errs
}

// Bandwidth holds the bandwidth probe's configuration.
type Bandwidth struct {
	Target       string        `yaml:"target"`
	ChunkSize    int           `yaml:"chunk_size"`
	TestDuration time.Duration `yaml:"test_duration"`
	Parallel     int           `yaml:"parallel"`
}

// Validate checks Bandwidth for errors.
func (c Bandwidth) Validate() []error {
	var errs []error
	if c.Target == "" {
		errs = append(errs, fmt.Errorf("bandwidth: target must not be empty"))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("bandwidth: chunk_size must be positive"))
	}
	if c.TestDuration <= 0 {
		errs = append(errs, fmt.Errorf("bandwidth: test_duration must be positive"))
	}
	if c.Parallel <= 0 {
		errs = append(errs, fmt.Errorf("bandwidth: parallel must be at least 1"))
	}
	return errs
}

// ConnectionPerf holds the connection-perf probe's configuration.
type ConnectionPerf struct {
	Target                string `yaml:"target"`
	ConcurrentConnections int    `yaml:"concurrent_connections"`
	TotalConnections      int    `yaml:"total_connections"`
	Parallel              int    `yaml:"parallel"`
}

// Validate checks ConnectionPerf for errors.
func (c ConnectionPerf) Validate() []error {
	var errs []error
	if c.Target == "" {
		errs = append(errs, fmt.Errorf("connection-perf: target must not be empty"))
	}
	if c.TotalConnections <= 0 {
		errs = append(errs, fmt.Errorf("connection-perf: total_connections must be positive"))
	}
	if c.ConcurrentConnections < 0 {
		errs = append(errs, fmt.Errorf("connection-perf: concurrent_connections must not be negative"))
	}
	if c.Parallel <= 0 {
		errs = append(errs, fmt.Errorf("connection-perf: parallel must be at least 1"))
	}
	return errs
}

// DNS holds the DNS probe's configuration.
type DNS struct {
	Domains       []string      `yaml:"domains"`
	QueryInterval time.Duration `yaml:"query_interval"`
	TestDuration  time.Duration `yaml:"test_duration"`
	Parallel      int           `yaml:"parallel"`
}

// Validate checks DNS for errors.
func (c DNS) Validate() []error {
	var errs []error
	if len(c.Domains) == 0 {
		errs = append(errs, fmt.Errorf("dns-stability: domains must not be empty"))
	}
	if c.QueryInterval <= 0 {
		errs = append(errs, fmt.Errorf("dns-stability: query_interval must be positive"))
	}
	if c.TestDuration <= 0 {
		errs = append(errs, fmt.Errorf("dns-stability: test_duration must be positive"))
	}
	if c.Parallel <= 0 {
		errs = append(errs, fmt.Errorf("dns-stability: parallel must be at least 1"))
	}
	return errs
}

// Jitter holds the network-jitter probe's configuration.
type Jitter struct {
	Targets      []string      `yaml:"targets"`
	PingInterval time.Duration `yaml:"ping_interval"`
	TestDuration time.Duration `yaml:"test_duration"`
	Parallel     int           `yaml:"parallel"`
}

// Validate checks Jitter for errors.
func (c Jitter) Validate() []error {
	var errs []error
	if len(c.Targets) == 0 {
		errs = append(errs, fmt.Errorf("network-jitter: targets must not be empty"))
	}
	if c.PingInterval <= 0 {
		errs = append(errs, fmt.Errorf("network-jitter: ping_interval must be positive"))
	}
	if c.TestDuration <= 0 {
		errs = append(errs, fmt.Errorf("network-jitter: test_duration must be positive"))
	}
	if c.Parallel <= 0 {
		errs = append(errs, fmt.Errorf("network-jitter: parallel must be at least 1"))
	}
	return errs
}

// RunConfig aggregates everything one `nst` invocation needs: the proxy to
// measure through and whichever probe configs the selected subcommand
// populated. Probe fields are pointers so a `nil` field means "this probe
// did not run" without a sentinel zero value.
type RunConfig struct {
	Proxy          Proxy           `yaml:"proxy"`
	TCPStability   *TCPStability   `yaml:"tcp_stability,omitempty"`
	Bandwidth      *Bandwidth      `yaml:"bandwidth,omitempty"`
	ConnectionPerf *ConnectionPerf `yaml:"connection_perf,omitempty"`
	DNS            *DNS            `yaml:"dns_stability,omitempty"`
	Jitter         *Jitter         `yaml:"network_jitter,omitempty"`
	ReportPath     string          `yaml:"report_path,omitempty"`
	Verbose        bool            `yaml:"verbose,omitempty"`
}

// Validate aggregates errors across the proxy config and every probe
// config that is present in the run.
func (c RunConfig) Validate() []error {
	cfgs := []ValidatableConfig{c.Proxy}
	if c.TCPStability != nil {
		cfgs = append(cfgs, *c.TCPStability)
	}
	if c.Bandwidth != nil {
		cfgs = append(cfgs, *c.Bandwidth)
	}
	if c.ConnectionPerf != nil {
		cfgs = append(cfgs, *c.ConnectionPerf)
	}
	if c.DNS != nil {
		cfgs = append(cfgs, *c.DNS)
	}
	if c.Jitter != nil {
		cfgs = append(cfgs, *c.Jitter)
	}

	errs := Validate(cfgs...)
	if c.TCPStability == nil && c.Bandwidth == nil && c.ConnectionPerf == nil && c.DNS == nil && c.Jitter == nil {
		errs = append(errs, fmt.Errorf("run: at least one probe must be configured"))
	}
	return errs
}
