package metrics

import "time"

// ConnectionDrop records one Connected→Broken→Connected cycle of the
// TCP-stability probe.
type ConnectionDrop struct {
	Timestamp time.Time
	Duration  time.Duration
	Reason    string
}

// TCPStabilityResult is the TCP-stability probe's aggregate result.
type TCPStabilityResult struct {
	TestDuration       time.Duration
	HeartbeatInterval  time.Duration
	TotalHeartbeats    uint64
	SuccessfulHeartbeats uint64
	FailedHeartbeats   uint64
	Reconnections      uint64
	TotalDowntime      time.Duration
	UptimePercentage   float64
	AverageRTT         time.Duration
	MinRTT             time.Duration
	MaxRTT             time.Duration
	RTTVariance        float64
	ConnectionDrops    []ConnectionDrop
}

// Merge combines two TCP-stability results from parallel instances
// against the same target into one: counters and drop records sum and
// concatenate, RTT aggregates recombine weighted by successful-heartbeat
// count, and uptime percentage is simple-averaged since every instance
// ran for the same configured TestDuration.
func (r TCPStabilityResult) Merge(other TCPStabilityResult) TCPStabilityResult {
	if r.TotalHeartbeats == 0 {
		return other
	}
	if other.TotalHeartbeats == 0 {
		return r
	}

	merged := r
	merged.TotalHeartbeats += other.TotalHeartbeats
	merged.SuccessfulHeartbeats += other.SuccessfulHeartbeats
	merged.FailedHeartbeats += other.FailedHeartbeats
	merged.Reconnections += other.Reconnections
	merged.TotalDowntime += other.TotalDowntime
	merged.ConnectionDrops = append(append([]ConnectionDrop{}, r.ConnectionDrops...), other.ConnectionDrops...)
	merged.UptimePercentage = (r.UptimePercentage + other.UptimePercentage) / 2

	if merged.SuccessfulHeartbeats > 0 {
		weightedRTT := r.AverageRTT*time.Duration(r.SuccessfulHeartbeats) + other.AverageRTT*time.Duration(other.SuccessfulHeartbeats)
		merged.AverageRTT = weightedRTT / time.Duration(merged.SuccessfulHeartbeats)
	}
	merged.MinRTT = minNonZeroDuration(r.MinRTT, other.MinRTT)
	if other.MaxRTT > merged.MaxRTT {
		merged.MaxRTT = other.MaxRTT
	}

	return merged
}

func minNonZeroDuration(a, b time.Duration) time.Duration {
	switch {
	case a == 0:
		return b
	case b == 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}

// Score implements the TCP-stability formula:
// success_rate * connection_stability * 100, where
// connection_stability = 1 / (1 + 0.1 * reconnections).
func (r TCPStabilityResult) Score() float64 {
	if r.TotalHeartbeats == 0 {
		return 0
	}

	successRate := float64(r.SuccessfulHeartbeats) / float64(r.TotalHeartbeats)
	connectionStability := 1 / (1 + 0.1*float64(r.Reconnections))
	return clamp(successRate * connectionStability * 100)
}
