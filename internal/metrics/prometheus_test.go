package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FramesBroadcast.Inc()
	m.FramesBroadcast.Inc()
	m.HTTPListeners.Set(3)

	if got := testutil.ToFloat64(m.FramesBroadcast); got != 2 {
		t.Errorf("FramesBroadcast = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPListeners); got != 3 {
		t.Errorf("HTTPListeners = %v, want 3", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 5 {
		t.Errorf("registered %d metric families, want 5", len(families))
	}
}

func TestNewTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	New(reg)
}
