package telemetry

import "testing"

func TestWarnOnceFiresOnlyOnce(t *testing.T) {
	l := NewLogger(true, true)
	calls := 0
	for i := 0; i < 5; i++ {
		before := len(l.warnedAt)
		l.WarnOnce("regions/0/0.rgn", "flush failed: %d", i)
		if len(l.warnedAt) != before && before != 0 {
			t.Fatalf("warnedAt grew after first call")
		}
		calls++
	}
	if !l.warnedAt["regions/0/0.rgn"] {
		t.Fatalf("expected path to be marked warned")
	}
}

func TestStreamAndPoolTogglesGateOutput(t *testing.T) {
	l := NewLogger(false, false)
	// Exercise both code paths; nothing to assert on stdlib log output,
	// but both must be safe no-ops when disabled.
	l.Stream("ring request for face %d", 0)
	l.Pool("alloc failed")
}

func TestNilLoggerMethodsAreNoops(t *testing.T) {
	var l *Logger
	l.Stream("x")
	l.Pool("x")
	l.WarnOnce("p", "x")
	l.Errorf("x: %d", 1)
}
