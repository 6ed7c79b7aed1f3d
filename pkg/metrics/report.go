package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ProxyDescriptor records which proxy a run measured, for inclusion in
// the final report.
type ProxyDescriptor struct {
	Address           string
	ProxyType         string
	AuthRequired      bool
	ConnectionTimeout time.Duration
}

// RunReport is the top-level result of one `nst` invocation: a session
// id, start/end timestamps, the proxy descriptor, whichever probe
// results ran, and the overall weighted score. It is built incrementally
// via Collector and finalized once at run end.
type RunReport struct {
	SessionID      string
	TestStartTime  time.Time
	TestEndTime    time.Time
	Proxy          ProxyDescriptor
	TCPStability   *TCPStabilityResult
	Bandwidth      *BandwidthResult
	ConnectionPerf *ConnectionPerfResult
	DNS            *DNSResult
	Jitter         *JitterResult
	OverallScore   *float64
}

// TestsRun returns how many of the five probes contributed a result.
func (r RunReport) TestsRun() int {
	n := 0
	if r.TCPStability != nil {
		n++
	}
	if r.Bandwidth != nil {
		n++
	}
	if r.ConnectionPerf != nil {
		n++
	}
	if r.DNS != nil {
		n++
	}
	if r.Jitter != nil {
		n++
	}
	return n
}

// TestDuration returns TestEndTime - TestStartTime, or 0 if the run has
// not been finalized yet.
func (r RunReport) TestDuration() time.Duration {
	if r.TestEndTime.IsZero() {
		return 0
	}
	return r.TestEndTime.Sub(r.TestStartTime)
}

// probeWeight pairs a probe's score with the fixed weight it contributes
// to the overall score.
type probeWeight struct {
	score  float64
	weight float64
}

// CalculateOverallScore computes the weighted average over whichever
// probes ran, with fixed weights (TCP 0.25, Bandwidth 0.20, Conn-Perf
// 0.20, DNS 0.15, Jitter 0.20) and a denominator equal to the sum of
// present weights, not 1.0. It stores the result in OverallScore; if no
// probe ran, OverallScore is left nil.
func (r *RunReport) CalculateOverallScore() {
	var entries []probeWeight

	if r.TCPStability != nil {
		entries = append(entries, probeWeight{r.TCPStability.Score(), 0.25})
	}
	if r.Bandwidth != nil {
		entries = append(entries, probeWeight{r.Bandwidth.Score(), 0.20})
	}
	if r.ConnectionPerf != nil {
		entries = append(entries, probeWeight{r.ConnectionPerf.Score(), 0.20})
	}
	if r.DNS != nil {
		entries = append(entries, probeWeight{r.DNS.Score(), 0.15})
	}
	if r.Jitter != nil {
		entries = append(entries, probeWeight{r.Jitter.Score(), 0.20})
	}

	if len(entries) == 0 {
		return
	}

	var totalWeight, weightedSum float64
	for _, e := range entries {
		totalWeight += e.weight
		weightedSum += e.score * e.weight
	}

	overall := weightedSum / totalWeight
	r.OverallScore = &overall
}

// Finalize stamps TestEndTime and computes the overall score. It should
// be called exactly once, after every selected probe has produced its
// result.
func (r *RunReport) Finalize() {
	r.TestEndTime = time.Now()
	r.CalculateOverallScore()
}

// Collector builds a RunReport incrementally as probes complete,
// matching the original implementation's MetricsCollector: construct
// once at run start, call the SetXxx method for each probe as it
// finishes, then Finalize to get the completed RunReport.
type Collector struct {
	report RunReport
}

// NewCollector starts a new RunReport for the given proxy, with a fresh
// UUID v4 session id and the current time as the start time.
func NewCollector(proxy ProxyDescriptor) *Collector {
	return &Collector{
		report: RunReport{
			SessionID:     uuid.New().String(),
			TestStartTime: time.Now(),
			Proxy:         proxy,
		},
	}
}

// SetTCPStability records the TCP-stability probe's result.
func (c *Collector) SetTCPStability(r TCPStabilityResult) { c.report.TCPStability = &r }

// SetBandwidth records the bandwidth probe's result.
func (c *Collector) SetBandwidth(r BandwidthResult) { c.report.Bandwidth = &r }

// SetConnectionPerf records the connection-perf probe's result.
func (c *Collector) SetConnectionPerf(r ConnectionPerfResult) { c.report.ConnectionPerf = &r }

// SetDNS records the DNS probe's result.
func (c *Collector) SetDNS(r DNSResult) { c.report.DNS = &r }

// SetJitter records the jitter probe's result.
func (c *Collector) SetJitter(r JitterResult) { c.report.Jitter = &r }

// Finalize stamps the end time, computes the overall score, and returns
// the completed RunReport.
func (c *Collector) Finalize() RunReport {
	c.report.Finalize()
	return c.report
}

// Summary is the condensed, report-format-agnostic view of a RunReport
// used for the end-of-run console printout.
type Summary struct {
	SessionID            string
	ProxyAddress         string
	TestDuration         time.Duration
	OverallScore         *float64
	TestsRun             int
	TCPStabilityScore    *float64
	BandwidthScore       *float64
	ConnectionPerfScore  *float64
	DNSScore             *float64
	NetworkQualityScore  *float64
}

// Summary condenses a RunReport into its printable form.
func (r RunReport) Summary() Summary {
	s := Summary{
		SessionID:    r.SessionID,
		ProxyAddress: r.Proxy.Address,
		TestDuration: r.TestDuration(),
		OverallScore: r.OverallScore,
		TestsRun:     r.TestsRun(),
	}
	if r.TCPStability != nil {
		score := r.TCPStability.Score()
		s.TCPStabilityScore = &score
	}
	if r.Bandwidth != nil {
		score := r.Bandwidth.Score()
		s.BandwidthScore = &score
	}
	if r.ConnectionPerf != nil {
		score := r.ConnectionPerf.Score()
		s.ConnectionPerfScore = &score
	}
	if r.DNS != nil {
		score := r.DNS.Score()
		s.DNSScore = &score
	}
	if r.Jitter != nil {
		score := r.Jitter.Score()
		s.NetworkQualityScore = &score
	}
	return s
}

// Rating buckets an overall score into the fixed rating bands: >=90
// Excellent, >=80 Good, >=70 Fair, >=60 Poor, else Very Poor.
func Rating(score float64) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Good"
	case score >= 70:
		return "Fair"
	case score >= 60:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// PrintSummary writes the human-readable session summary to w, grounded
// on the original implementation's MetricsSummary::print_summary.
func (s Summary) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n=== Test Session Summary ===")
	fmt.Fprintf(w, "Session ID: %s\n", s.SessionID)
	fmt.Fprintf(w, "Proxy Address: %s\n", s.ProxyAddress)

	if s.TestDuration > 0 {
		fmt.Fprintf(w, "Total Test Duration: %s\n", s.TestDuration)
	}

	fmt.Fprintf(w, "Tests Run: %d\n\n", s.TestsRun)

	if s.OverallScore != nil {
		fmt.Fprintf(w, "Overall Network Stability Score: %.1f/100\n", *s.OverallScore)
		fmt.Fprintf(w, "Rating: %s\n", Rating(*s.OverallScore))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Individual Test Scores:")
	if s.TCPStabilityScore != nil {
		fmt.Fprintf(w, "  TCP Stability: %.1f/100\n", *s.TCPStabilityScore)
	}
	if s.BandwidthScore != nil {
		fmt.Fprintf(w, "  Bandwidth: %.1f/100\n", *s.BandwidthScore)
	}
	if s.ConnectionPerfScore != nil {
		fmt.Fprintf(w, "  Connection Performance: %.1f/100\n", *s.ConnectionPerfScore)
	}
	if s.DNSScore != nil {
		fmt.Fprintf(w, "  DNS Stability: %.1f/100\n", *s.DNSScore)
	}
	if s.NetworkQualityScore != nil {
		fmt.Fprintf(w, "  Network Quality: %.1f/100\n", *s.NetworkQualityScore)
	}
	fmt.Fprintln(w)
}
