// Package midi wraps port discovery and per-port listening over the system
// MIDI backend. Ports are identified by their human-readable names; names are
// stable across hot-plug even when the underlying OS handles are recreated.
package midi

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver
)

// scanTimeout guards port enumeration against a hung MIDI backend.
const scanTimeout = 3 * time.Second

// ErrScanTimeout is returned when the backend does not answer an enumeration
// request in time. The caller is expected to try again on its next scan.
var ErrScanTimeout = errors.New("midi port scan timed out")

// Scanner enumerates input ports, filtering out loopback/virtual/system
// endpoints by case-insensitive name patterns.
type Scanner struct {
	ignore []*regexp.Regexp
}

// NewScanner compiles the ignore patterns. Patterns are matched
// case-insensitively anywhere in the port name.
func NewScanner(ignorePatterns []string) (*Scanner, error) {
	s := &Scanner{}
	for _, p := range ignorePatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", p, err)
		}
		s.ignore = append(s.ignore, re)
	}
	return s, nil
}

// Ignored reports whether a port name matches any ignore pattern.
func (s *Scanner) Ignored(name string) bool {
	for _, re := range s.ignore {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Inputs returns the names of the currently available, non-ignored input
// ports. Enumeration runs in its own goroutine so a hung backend cannot
// stall the scan loop forever.
func (s *Scanner) Inputs() ([]string, error) {
	ch := make(chan []string, 1)
	go func() {
		ports := gomidi.GetInPorts()
		names := make([]string, 0, len(ports))
		for _, p := range ports {
			names = append(names, p.String())
		}
		ch <- names
	}()

	var names []string
	select {
	case names = <-ch:
	case <-time.After(scanTimeout):
		return nil, ErrScanTimeout
	}

	kept := names[:0]
	for _, name := range names {
		if !s.Ignored(name) {
			kept = append(kept, name)
		}
	}
	return kept, nil
}

// Listen opens the named port and delivers transport/timing events to onEvent
// in arrival order until the returned stop function is called. onErr fires if
// the listener dies underneath us (device yanked, backend error); the port is
// not reopened here - that is the scan loop's call.
//
// UseTimeCode is required so the driver lets realtime timing messages
// through; rtmidi filters them together with MTC by default.
func (s *Scanner) Listen(port string, onEvent func(Event), onErr func(error)) (func(), error) {
	in, err := gomidi.FindInPort(port)
	if err != nil {
		return nil, fmt.Errorf("find input %q: %w", port, err)
	}

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		switch msg.Type() {
		case gomidi.TimingClockMsg:
			onEvent(Event{Port: port, Kind: KindClock})
		case gomidi.StartMsg:
			onEvent(Event{Port: port, Kind: KindStart})
		case gomidi.ContinueMsg:
			onEvent(Event{Port: port, Kind: KindContinue})
		case gomidi.StopMsg:
			onEvent(Event{Port: port, Kind: KindStop})
		}
	}, gomidi.UseTimeCode(), gomidi.HandleError(onErr))
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", port, err)
	}
	return stop, nil
}

// CloseDriver releases the MIDI backend. Call once on process shutdown.
func CloseDriver() {
	gomidi.CloseDriver()
}
