package metrics

import "time"

// DomainResult is one domain's aggregate within a DNS probe run.
type DomainResult struct {
	Domain            string
	TotalQueries      uint64
	SuccessfulQueries uint64
	FailedQueries     uint64
	Durations         []time.Duration
}

// SuccessRate returns this domain's success rate, or 0 if untested.
func (d DomainResult) SuccessRate() float64 {
	if d.TotalQueries == 0 {
		return 0
	}
	return float64(d.SuccessfulQueries) / float64(d.TotalQueries)
}

// AverageQueryTime returns the mean duration over this domain's
// recorded queries.
func (d DomainResult) AverageQueryTime() time.Duration {
	_, _, avg := MinMaxAvg(d.Durations)
	return avg
}

// merge combines two per-domain results for the same domain.
func (d DomainResult) merge(other DomainResult) DomainResult {
	merged := d
	merged.TotalQueries += other.TotalQueries
	merged.SuccessfulQueries += other.SuccessfulQueries
	merged.FailedQueries += other.FailedQueries
	merged.Durations = append(append([]time.Duration{}, d.Durations...), other.Durations...)
	return merged
}

// DNSResult is the DNS probe's aggregate result.
type DNSResult struct {
	TestDuration   time.Duration
	QueryInterval  time.Duration
	TimeoutQueries uint64
	PerDomain      map[string]*DomainResult
}

// DomainsTested returns how many distinct domains were queried.
func (r DNSResult) DomainsTested() int {
	return len(r.PerDomain)
}

// TotalQueries sums total_queries across every domain.
func (r DNSResult) TotalQueries() uint64 {
	var total uint64
	for _, d := range r.PerDomain {
		total += d.TotalQueries
	}
	return total
}

// SuccessfulQueries sums successful_queries across every domain.
func (r DNSResult) SuccessfulQueries() uint64 {
	var total uint64
	for _, d := range r.PerDomain {
		total += d.SuccessfulQueries
	}
	return total
}

// FailedQueries sums failed_queries across every domain.
func (r DNSResult) FailedQueries() uint64 {
	var total uint64
	for _, d := range r.PerDomain {
		total += d.FailedQueries
	}
	return total
}

// SuccessRate returns the overall success rate across all domains, or 0
// if the domain list was empty (a documented boundary behavior).
func (r DNSResult) SuccessRate() float64 {
	total := r.TotalQueries()
	if total == 0 {
		return 0
	}
	return float64(r.SuccessfulQueries()) / float64(total)
}

// TimeoutRate returns TimeoutQueries / TotalQueries, or 0 if there were
// no queries.
func (r DNSResult) TimeoutRate() float64 {
	total := r.TotalQueries()
	if total == 0 {
		return 0
	}
	return float64(r.TimeoutQueries) / float64(total)
}

func (r DNSResult) allDurations() []time.Duration {
	var out []time.Duration
	for _, d := range r.PerDomain {
		out = append(out, d.Durations...)
	}
	return out
}

// QueryTimeStats returns the min/max/avg across every recorded query
// duration, regardless of domain.
func (r DNSResult) QueryTimeStats() (min, max, avg time.Duration) {
	return MinMaxAvg(r.allDurations())
}

// Merge combines two DNS results from parallel instances by summing the
// timeout counter and merging each domain's per-domain counters and
// recorded durations.
func (r DNSResult) Merge(other DNSResult) DNSResult {
	merged := r
	merged.TimeoutQueries += other.TimeoutQueries

	merged.PerDomain = make(map[string]*DomainResult, len(r.PerDomain))
	for domain, d := range r.PerDomain {
		copied := *d
		merged.PerDomain[domain] = &copied
	}
	for domain, d := range other.PerDomain {
		if existing, ok := merged.PerDomain[domain]; ok {
			combined := existing.merge(*d)
			merged.PerDomain[domain] = &combined
		} else {
			copied := *d
			merged.PerDomain[domain] = &copied
		}
	}
	return merged
}

// domainConsistencyScore derives a 0-100 score from the coefficient of
// variation of per-domain success rates.
func (r DNSResult) domainConsistencyScore() float64 {
	if len(r.PerDomain) == 0 {
		return 0
	}
	rates := make([]float64, 0, len(r.PerDomain))
	for _, d := range r.PerDomain {
		rates = append(rates, d.SuccessRate())
	}
	cov := CoV(rates)
	return clamp(100 * (1 - cov))
}

func speedScoreDNS(avg time.Duration) float64 {
	switch {
	case avg <= 50*time.Millisecond:
		return 100
	case avg <= 200*time.Millisecond:
		return 80
	case avg <= 500*time.Millisecond:
		return 60
	case avg <= time.Second:
		return 40
	default:
		return 20
	}
}

// Score implements the DNS formula: 0.4*success_rate + 0.3*speed_score +
// 0.2*timeout_score + 0.1*consistency_score.
func (r DNSResult) Score() float64 {
	if r.TotalQueries() == 0 {
		return 0
	}

	_, _, avg := r.QueryTimeStats()

	successScore := r.SuccessRate() * 100
	speedScore := speedScoreDNS(avg)

	timeoutRatePercent := r.TimeoutRate() * 100
	timeoutScore := 100 - 10*timeoutRatePercent
	if timeoutScore < 0 {
		timeoutScore = 0
	}

	consistencyScore := r.domainConsistencyScore()

	weighted := 0.4*successScore + 0.3*speedScore + 0.2*timeoutScore + 0.1*consistencyScore
	return clamp(weighted)
}
