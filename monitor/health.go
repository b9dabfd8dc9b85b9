// Package monitor samples host health for the riglet rig: CPU load and the
// liveness of the two daemons. It only reads system state; it never talks to
// the pulse engine.
package monitor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Service names as installed on the rig.
const (
	ServiceAutopatch = "midi-autopatch.service"
	ServiceClock     = "clock2po.service"
)

// CPUSample holds cumulative counters from the first line of /proc/stat.
type CPUSample struct {
	Idle  uint64 // idle + iowait
	Total uint64
}

// ReadCPUSample reads the aggregate cpu line from /proc/stat.
func ReadCPUSample() (CPUSample, error) {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return CPUSample{}, err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return parseCPUStat(line)
}

// parseCPUStat parses a "cpu  user nice system idle iowait ..." line.
func parseCPUStat(line string) (CPUSample, error) {
	fields := strings.Fields(line)
	if len(fields) < 6 || fields[0] != "cpu" {
		return CPUSample{}, fmt.Errorf("unexpected /proc/stat line %q", line)
	}

	var s CPUSample
	for i, f := range fields[1:] {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return CPUSample{}, fmt.Errorf("field %d of %q: %w", i+1, line, err)
		}
		s.Total += v
		if i == 3 || i == 4 { // idle + iowait
			s.Idle += v
		}
	}
	return s, nil
}

// BusyFraction returns the fraction of CPU busy between two samples,
// clamped to [0, 1]. A non-advancing counter pair reads as idle.
func BusyFraction(prev, cur CPUSample) float64 {
	dTotal := int64(cur.Total) - int64(prev.Total)
	if dTotal <= 0 {
		return 0
	}
	dIdle := int64(cur.Idle) - int64(prev.Idle)
	busy := float64(dTotal-dIdle) / float64(dTotal)
	if busy < 0 {
		return 0
	}
	if busy > 1 {
		return 1
	}
	return busy
}

// ServiceActive reports whether a systemd service is active.
func ServiceActive(ctx context.Context, name string) bool {
	return exec.CommandContext(ctx, "systemctl", "is-active", "--quiet", name).Run() == nil
}
