package monitor

import "testing"

func TestParseCPUStat(t *testing.T) {
	s, err := parseCPUStat("cpu  4705 150 1120 16250 520 0 30 0 0 0")
	if err != nil {
		t.Fatalf("parseCPUStat: %v", err)
	}

	if want := uint64(16250 + 520); s.Idle != want {
		t.Fatalf("Idle = %d, want %d", s.Idle, want)
	}
	if want := uint64(4705 + 150 + 1120 + 16250 + 520 + 30); s.Total != want {
		t.Fatalf("Total = %d, want %d", s.Total, want)
	}
}

func TestParseCPUStatRejectsGarbage(t *testing.T) {
	for _, line := range []string{
		"",
		"cpu0 1 2 3 4 5 6",
		"cpu 1 2 three 4 5 6",
		"intr 130230",
	} {
		if _, err := parseCPUStat(line); err == nil {
			t.Fatalf("parseCPUStat(%q) accepted garbage", line)
		}
	}
}

func TestBusyFraction(t *testing.T) {
	for _, tc := range []struct {
		name      string
		prev, cur CPUSample
		want      float64
	}{
		{"half busy", CPUSample{Idle: 0, Total: 0}, CPUSample{Idle: 50, Total: 100}, 0.5},
		{"all idle", CPUSample{Idle: 0, Total: 0}, CPUSample{Idle: 100, Total: 100}, 0},
		{"all busy", CPUSample{Idle: 10, Total: 10}, CPUSample{Idle: 10, Total: 110}, 1},
		{"no progress", CPUSample{Idle: 5, Total: 10}, CPUSample{Idle: 5, Total: 10}, 0},
		{"counter went backwards", CPUSample{Idle: 5, Total: 100}, CPUSample{Idle: 5, Total: 90}, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := BusyFraction(tc.prev, tc.cur); got != tc.want {
				t.Fatalf("BusyFraction = %v, want %v", got, tc.want)
			}
		})
	}
}
