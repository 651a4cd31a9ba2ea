package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	c, err := NewCollector(nil)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.ObserveChart(3 * time.Millisecond)
	c.ObserveChart(5 * time.Millisecond)
	c.IncRecorded("mars")
	c.IncRecorded("mars")
	c.IncRecorded("sun")
	c.IncFailure("pluto")
	c.SetInstants(48)

	if got := testutil.ToFloat64(c.ChartsComputed); got != 2 {
		t.Errorf("charts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.PositionsRecorded.WithLabelValues("mars")); got != 2 {
		t.Errorf("mars recorded = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.PositionFailures.WithLabelValues("pluto")); got != 1 {
		t.Errorf("pluto failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.InstantsPlanned); got != 48 {
		t.Errorf("instants = %v, want 48", got)
	}
	if n := testutil.CollectAndCount(c.ChartDuration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestCollector_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector on same registry: %v", err)
	}

	a.IncRecorded("venus")
	b.IncRecorded("venus")
	if got := testutil.ToFloat64(a.PositionsRecorded.WithLabelValues("venus")); got != 2 {
		t.Errorf("venus = %v, want 2 (collectors share series)", got)
	}
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	c.ObserveChart(time.Second)
	c.IncRecorded("sun")
	c.IncFailure("sun")
	c.SetInstants(1)
	if c.Gatherer() != nil {
		t.Error("nil collector has a gatherer")
	}
	if err := c.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile on nil: %v", err)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	c, err := NewCollector(nil)
	if err != nil {
		t.Fatal(err)
	}
	c.IncRecorded("jupiter")

	path := filepath.Join(t.TempDir(), "astromaps.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `astromaps_positions_recorded_total{body="jupiter"} 1`) {
		t.Errorf("textfile missing jupiter counter:\n%s", data)
	}
}
