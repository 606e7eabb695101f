package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestTimingMetric_Record(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	s := m.Stats()
	if s.Count != 2 {
		t.Fatalf("count = %d, want 2", s.Count)
	}
	if s.MaxMs != 4 || s.MinMs != 2 || s.AvgMs != 3 {
		t.Errorf("stats = %+v", s)
	}

	m.Reset()
	if m.Count() != 0 {
		t.Errorf("count after reset = %d", m.Count())
	}
}

func TestTimer_Disabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	Timer(m)()
	if m.Count() != 0 {
		t.Errorf("disabled timer recorded %d measurements", m.Count())
	}
}

func TestWriteTimings(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	defer ResetAll()

	SimulationTick.Record(2 * time.Millisecond)
	SimulationTick.Record(4 * time.Millisecond)

	var buf bytes.Buffer
	WriteTimings(&buf)
	out := buf.String()
	if !strings.Contains(out, "simulation_tick") || !strings.Contains(out, "n=2") {
		t.Errorf("output missing tick line:\n%s", out)
	}
	if strings.Contains(out, "data_load") {
		t.Errorf("output lists a metric with no data:\n%s", out)
	}
	if got := SimulationTick.TotalDuration(); got != 6*time.Millisecond {
		t.Errorf("TotalDuration = %v, want 6ms", got)
	}

	ResetAll()
	buf.Reset()
	WriteTimings(&buf)
	if buf.Len() != 0 {
		t.Errorf("output after ResetAll = %q", buf.String())
	}
}

func TestRegistry_Gather(t *testing.T) {
	r := NewRegistry()
	r.RecordTick(time.Millisecond, 0.5)
	r.RecordEvent("hover_enter", nil)
	r.SetGraphSize(3, 2)
	r.RecordReload(nil)

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{"cooc_simulation_ticks_total", "cooc_graph_nodes", "cooc_interaction_events_total"} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}
