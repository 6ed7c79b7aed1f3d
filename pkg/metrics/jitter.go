package metrics

import "time"

// TargetResult is one target's aggregate within a jitter probe run.
type TargetResult struct {
	Target          string
	TotalPings      uint64
	SuccessfulPings uint64
	FailedPings     uint64
	RTTs            []time.Duration
}

// PacketLossRate returns this target's packet-loss rate, or 0 if
// untested.
func (t TargetResult) PacketLossRate() float64 {
	if t.TotalPings == 0 {
		return 0
	}
	return float64(t.TotalPings-t.SuccessfulPings) / float64(t.TotalPings)
}

// AverageRTT returns the mean RTT over this target's successful pings.
func (t TargetResult) AverageRTT() time.Duration {
	_, _, avg := MinMaxAvg(t.RTTs)
	return avg
}

// Jitter returns the arithmetic jitter over this target's RTT samples.
func (t TargetResult) Jitter() time.Duration {
	return Jitter(t.RTTs)
}

// merge combines two per-target results for the same target.
func (t TargetResult) merge(other TargetResult) TargetResult {
	merged := t
	merged.TotalPings += other.TotalPings
	merged.SuccessfulPings += other.SuccessfulPings
	merged.FailedPings += other.FailedPings
	merged.RTTs = append(append([]time.Duration{}, t.RTTs...), other.RTTs...)
	return merged
}

// JitterResult is the network-jitter probe's aggregate result.
type JitterResult struct {
	TestDuration   time.Duration
	PingInterval   time.Duration
	TimeoutPings   uint64
	PerTarget      map[string]*TargetResult
}

// TargetsTested returns how many distinct targets were pinged.
func (r JitterResult) TargetsTested() int {
	return len(r.PerTarget)
}

func (r JitterResult) sum(f func(*TargetResult) uint64) uint64 {
	var total uint64
	for _, t := range r.PerTarget {
		total += f(t)
	}
	return total
}

// TotalPings sums total_pings across every target.
func (r JitterResult) TotalPings() uint64 {
	return r.sum(func(t *TargetResult) uint64 { return t.TotalPings })
}

// SuccessfulPings sums successful_pings across every target.
func (r JitterResult) SuccessfulPings() uint64 {
	return r.sum(func(t *TargetResult) uint64 { return t.SuccessfulPings })
}

// FailedPings sums failed_pings across every target.
func (r JitterResult) FailedPings() uint64 {
	return r.sum(func(t *TargetResult) uint64 { return t.FailedPings })
}

// PacketLossRate returns the overall packet-loss rate across all
// targets, or 0 if none were tested.
func (r JitterResult) PacketLossRate() float64 {
	total := r.TotalPings()
	if total == 0 {
		return 0
	}
	return float64(total-r.SuccessfulPings()) / float64(total)
}

func (r JitterResult) allRTTs() []time.Duration {
	var out []time.Duration
	for _, t := range r.PerTarget {
		out = append(out, t.RTTs...)
	}
	return out
}

// RTTStats returns min/max/avg/median/p95/p99 over every recorded RTT,
// regardless of target.
func (r JitterResult) RTTStats() (min, max, avg, median, p95, p99 time.Duration) {
	all := r.allRTTs()
	min, max, avg = MinMaxAvg(all)
	median = Median(all)
	p95 = Percentile(all, 95)
	p99 = Percentile(all, 99)
	return
}

// OverallJitter returns the arithmetic jitter over every recorded RTT in
// completion order, regardless of target.
func (r JitterResult) OverallJitter() time.Duration {
	return Jitter(r.allRTTs())
}

// Merge combines two jitter results from parallel instances by summing
// the timeout counter and merging each target's per-target counters and
// recorded RTTs.
func (r JitterResult) Merge(other JitterResult) JitterResult {
	merged := r
	merged.TimeoutPings += other.TimeoutPings

	merged.PerTarget = make(map[string]*TargetResult, len(r.PerTarget))
	for target, t := range r.PerTarget {
		copied := *t
		merged.PerTarget[target] = &copied
	}
	for target, t := range other.PerTarget {
		if existing, ok := merged.PerTarget[target]; ok {
			combined := existing.merge(*t)
			merged.PerTarget[target] = &combined
		} else {
			copied := *t
			merged.PerTarget[target] = &copied
		}
	}
	return merged
}

func latencyScoreJitter(avg time.Duration) float64 {
	switch {
	case avg <= 50*time.Millisecond:
		return 100
	case avg <= 150*time.Millisecond:
		return 80
	case avg <= 300*time.Millisecond:
		return 60
	case avg <= 600*time.Millisecond:
		return 40
	default:
		return 20
	}
}

func jitterScoreStep(jitter time.Duration) float64 {
	switch {
	case jitter <= 10*time.Millisecond:
		return 100
	case jitter <= 30*time.Millisecond:
		return 80
	case jitter <= 60*time.Millisecond:
		return 60
	case jitter <= 100*time.Millisecond:
		return 40
	default:
		return 20
	}
}

// targetConsistencyScore derives a 0-100 score from the coefficient of
// variation of per-target packet-loss rates.
func (r JitterResult) targetConsistencyScore() float64 {
	if len(r.PerTarget) == 0 {
		return 0
	}
	rates := make([]float64, 0, len(r.PerTarget))
	for _, t := range r.PerTarget {
		rates = append(rates, t.PacketLossRate())
	}
	cov := CoV(rates)
	return clamp(100 * (1 - cov))
}

// Score implements the jitter formula: 0.3*packet_loss_score +
// 0.3*latency_score + 0.25*jitter_score + 0.15*consistency_score.
func (r JitterResult) Score() float64 {
	if r.TotalPings() == 0 {
		return 0
	}

	lossPercent := r.PacketLossRate() * 100
	packetLossScore := 100 - 10*lossPercent
	if packetLossScore < 0 {
		packetLossScore = 0
	}

	_, _, avg, _, _, _ := r.RTTStats()
	latencyScore := latencyScoreJitter(avg)
	jitterScore := jitterScoreStep(r.OverallJitter())
	consistencyScore := r.targetConsistencyScore()

	weighted := 0.3*packetLossScore + 0.3*latencyScore + 0.25*jitterScore + 0.15*consistencyScore
	return clamp(weighted)
}
