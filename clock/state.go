package clock

import (
	"sync"

	"go.uber.org/zap"
)

// State is the process-wide arbitration record: which input currently owns
// pulse output, whether its transport is running, and how many clock events
// have arrived since the last pulse. One mutex guards all three; every event
// is a single critical section so listeners never interleave reads and
// writes of owner/running/ticks.
//
// Invariants: running implies owner != ""; ticks stays in [0, divisor).
type State struct {
	mu      sync.Mutex
	owner   string // "" means unclaimed; first suitable event adopts
	running bool
	ticks   int
	divisor int
	log     *zap.Logger
}

// NewState creates arbitration state emitting one pulse per divisor clock
// events.
func NewState(divisor int, log *zap.Logger) *State {
	if divisor < 1 {
		divisor = 1
	}
	return &State{divisor: divisor, log: log}
}

// HandleStart processes a start or continue message from src. An unclaimed
// owner slot is adopted; the owning source switches transport to running and
// resets the tick count.
func (s *State) HandleStart(src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == "" {
		s.adoptLocked(src)
	}
	if s.owner == src {
		if !s.running {
			s.log.Info("transport started", zap.String("port", src))
		}
		s.running = true
		s.ticks = 0
	}
}

// HandleStop processes a stop message from src. Only the owner can stop the
// transport; repeated stops are no-ops.
func (s *State) HandleStop(src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == src {
		if s.running {
			s.log.Info("transport stopped", zap.String("port", src))
		}
		s.running = false
		s.ticks = 0
	}
}

// HandleClock processes one timing clock from src and reports whether a
// pulse is due. The caller emits the pulse outside this lock so a slow audio
// write never stalls another listener's event. A clock from an unclaimed
// slot adopts src, tolerating sources that never send an explicit start.
func (s *State) HandleClock(src string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == "" {
		s.adoptLocked(src)
	}
	if s.owner != src || !s.running {
		return false
	}
	s.ticks++
	if s.ticks >= s.divisor {
		s.ticks = 0
		return true
	}
	return false
}

func (s *State) adoptLocked(src string) {
	s.owner = src
	s.running = false
	s.ticks = 0
	s.log.Info("adopted clock source", zap.String("port", src))
}

// DropVanished clears ownership when the current owner is not among the
// present ports, freeing the slot for the next suitable source. Reports
// whether ownership was cleared.
func (s *State) DropVanished(present map[string]bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == "" || present[s.owner] {
		return false
	}
	s.log.Info("clock source vanished", zap.String("port", s.owner))
	s.owner = ""
	s.running = false
	s.ticks = 0
	return true
}

// Snapshot returns the current owner, transport flag and tick count.
func (s *State) Snapshot() (owner string, running bool, ticks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner, s.running, s.ticks
}
