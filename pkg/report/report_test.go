package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nst/pkg/metrics"
)

func sampleReport() metrics.RunReport {
	collector := metrics.NewCollector(metrics.ProxyDescriptor{
		Address:           "127.0.0.1:1080",
		ProxyType:         "socks5",
		AuthRequired:      false,
		ConnectionTimeout: 10 * time.Second,
	})
	collector.SetTCPStability(metrics.TCPStabilityResult{
		TotalHeartbeats: 10, SuccessfulHeartbeats: 10, UptimePercentage: 100,
	})
	return collector.Finalize()
}

func TestWriteJSONProducesValidDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "report.json")

	r := sampleReport()
	if err := WriteJSON(r, path); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding written report: %v", err)
	}

	if decoded["session_id"] != r.SessionID {
		t.Errorf("session_id = %v, want %v", decoded["session_id"], r.SessionID)
	}
	if _, ok := decoded["tcp_stability"]; !ok {
		t.Error("expected tcp_stability field in JSON document")
	}
	if _, ok := decoded["bandwidth"]; ok {
		t.Error("bandwidth should be omitted when the probe did not run")
	}
	if decoded["rating"] == nil || decoded["rating"] == "" {
		t.Error("expected a non-empty rating since overall_score is present")
	}
}

func TestWriteJSONCreatesMissingDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "c", "report.json")

	if err := WriteJSON(sampleReport(), path); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file not created: %v", err)
	}
}
