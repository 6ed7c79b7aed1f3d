package metrics

import (
	"testing"
	"time"
)

func TestTCPStabilityScoreNoHeartbeats(t *testing.T) {
	r := TCPStabilityResult{}
	if got := r.Score(); got != 0 {
		t.Errorf("Score() = %v, want 0", got)
	}
}

func TestTCPStabilityScorePerfect(t *testing.T) {
	r := TCPStabilityResult{TotalHeartbeats: 10, SuccessfulHeartbeats: 10}
	if got := r.Score(); got != 100 {
		t.Errorf("Score() = %v, want 100", got)
	}
}

func TestTCPStabilityScoreWithReconnections(t *testing.T) {
	r := TCPStabilityResult{TotalHeartbeats: 10, SuccessfulHeartbeats: 9, Reconnections: 1}
	// success_rate = 0.9, connection_stability = 1/1.1
	want := 0.9 * (1 / 1.1) * 100
	if got := r.Score(); !almostEqual(got, want) {
		t.Errorf("Score() = %v, want %v", got, want)
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}

func TestConnectionDropDuration(t *testing.T) {
	d := ConnectionDrop{Duration: 2 * time.Second, Reason: "reset"}
	if d.Duration <= 0 {
		t.Errorf("Duration = %v, want positive", d.Duration)
	}
}
