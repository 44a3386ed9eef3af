package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"ScanRunsTotal", ScanRunsTotal},
		{"ScanDuration", ScanDuration},
		{"ScanRunning", ScanRunning},
		{"LastScanTimestamp", LastScanTimestamp},
		{"DirectoriesScanned", DirectoriesScanned},
		{"DirectoryErrors", DirectoryErrors},
		{"PairsTotal", PairsTotal},
		{"LearnedPairs", LearnedPairs},
		{"RescansTotal", RescansTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func counterValue(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestPairsTotalByMethod(t *testing.T) {
	before := counterValue(t, "pairdex_pairs_total", "method", "exact")
	PairsTotal.WithLabelValues("exact").Add(2)
	if got := counterValue(t, "pairdex_pairs_total", "method", "exact") - before; got != 2 {
		t.Fatalf("exact delta = %v, want 2", got)
	}
}

func TestServeExposesMetrics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	DirectoriesScanned.Inc()

	done, err := Serve(ctx, "127.0.0.1:0", nil)
	if err != nil {
		cancel()
		t.Fatalf("Serve failed: %v", err)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("server exited with %v", err)
	}
}

func TestHandlerServesPairdexMetrics(t *testing.T) {
	ScanRunsTotal.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "pairdex_scan_runs_total") {
		t.Fatal("scrape output missing pairdex_scan_runs_total")
	}
}
