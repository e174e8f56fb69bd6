package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestChoreCounters(t *testing.T) {
	m := New()

	m.StateInitialized()
	m.RotationPerformed()
	m.RotationPerformed()
	m.DutiesRepaired(3)
	m.ChoreCompleted()
	m.WriteConflict()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"states_initialized", testutil.ToFloat64(m.statesInitialized), 1},
		{"rotations", testutil.ToFloat64(m.rotations), 2},
		{"repaired_duties", testutil.ToFloat64(m.repairs), 3},
		{"completions", testutil.ToFloat64(m.completions), 1},
		{"write_conflicts", testutil.ToFloat64(m.writeConflicts), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestHTTPRequests(t *testing.T) {
	m := New()

	m.RecordHTTPRequest("GET /api/chores/today", "GET", 200, 5*time.Millisecond)
	m.RecordHTTPRequest("GET /api/chores/today", "GET", 200, 7*time.Millisecond)
	m.RecordHTTPRequest("POST /api/chores/{duty}/done", "POST", 403, time.Millisecond)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /api/chores/today", "GET", "200")); got != 2 {
		t.Errorf("today requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("POST /api/chores/{duty}/done", "POST", "403")); got != 1 {
		t.Errorf("done requests = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.httpRequestDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestScoreHistogram(t *testing.T) {
	m := New()
	for _, s := range []int{0, 33, 100} {
		m.ScoreComputed(s)
	}

	expected := `
# HELP roomsync_compatibility_score Distribution of computed compatibility scores.
# TYPE roomsync_compatibility_score histogram
roomsync_compatibility_score_bucket{le="10"} 1
roomsync_compatibility_score_bucket{le="20"} 1
roomsync_compatibility_score_bucket{le="30"} 1
roomsync_compatibility_score_bucket{le="40"} 2
roomsync_compatibility_score_bucket{le="50"} 2
roomsync_compatibility_score_bucket{le="60"} 2
roomsync_compatibility_score_bucket{le="70"} 2
roomsync_compatibility_score_bucket{le="80"} 2
roomsync_compatibility_score_bucket{le="90"} 2
roomsync_compatibility_score_bucket{le="100"} 3
roomsync_compatibility_score_bucket{le="+Inf"} 3
roomsync_compatibility_score_sum 133
roomsync_compatibility_score_count 3
`
	if err := testutil.CollectAndCompare(m.scores, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RotationPerformed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"roomsync_chore_rotations_total 1", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
