package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.CellDone(false)
	c.CellDone(false)
	c.CellDone(true)
	c.SolverRequest("request")
	c.SolverRequest("request")
	c.SolverRequest("run")
	c.StageFailed("rcn")
	c.CellTimer().ObserveDuration()

	if have := testutil.ToFloat64(c.CellsCompleted); have != 2 {
		t.Errorf("have %v completed cells, want 2", have)
	}
	if have := testutil.ToFloat64(c.CellsFailed); have != 1 {
		t.Errorf("have %v failed cells, want 1", have)
	}
	if have := testutil.ToFloat64(c.SolverRequests.WithLabelValues("request")); have != 2 {
		t.Errorf("have %v requests, want 2", have)
	}
	if n := testutil.CollectAndCount(c.CellDuration); n != 1 {
		t.Errorf("have %d duration series, want 1", n)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.CellDone(true)
	c.ScanStarted()
	c.SolverRequest("run")
	c.StageFailed("rcn")
	c.StageTimer("rcn").ObserveDuration()
}
