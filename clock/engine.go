// Package clock turns MIDI clock events from hot-pluggable inputs into
// Pocket Operator sync pulses. One listener per live input feeds a single
// arbitration State; the first active source wins and keeps output until it
// disappears.
package clock

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/aerialviews007/riglet/midi"
)

// Ports is the discovery collaborator: it enumerates live, non-ignored input
// ports and opens per-port event subscriptions. Implemented by midi.Scanner.
type Ports interface {
	Inputs() ([]string, error)
	Listen(port string, onEvent func(midi.Event), onErr func(error)) (func(), error)
}

// Emitter emits one sync pulse. Implemented by audio.Sink.
type Emitter interface {
	Emit() error
}

// listener tracks one open input subscription. dead is flipped from the
// backend's callback goroutine when the subscription fails; the scan loop
// reaps dead listeners and re-spawns them while the port is still present.
type listener struct {
	port string
	stop func()
	dead atomic.Bool
}

// Engine owns the source registry and the periodic scan loop. The listeners
// map is touched only from Run's goroutine; event handling runs on the MIDI
// backend's goroutines and touches only State and the Emitter, which apply
// their own locking.
type Engine struct {
	ports     Ports
	sink      Emitter
	state     *State
	interval  time.Duration
	log       *zap.Logger
	listeners map[string]*listener
}

// NewEngine wires discovery, arbitration state and the pulse sink together.
func NewEngine(ports Ports, sink Emitter, state *State, interval time.Duration, log *zap.Logger) *Engine {
	return &Engine{
		ports:     ports,
		sink:      sink,
		state:     state,
		interval:  interval,
		log:       log,
		listeners: make(map[string]*listener),
	}
}

// Run scans for inputs on a fixed interval until ctx is done, spawning a
// listener per new port, reaping dead ones, and clearing ownership when the
// owning port disappears. A failed scan is logged and the next one attempted
// on schedule. Blocking; run in its own goroutine if needed.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.scan()
	for {
		select {
		case <-ctx.Done():
			e.stopAll()
			return
		case <-ticker.C:
			e.scan()
		}
	}
}

func (e *Engine) scan() {
	names, err := e.ports.Inputs()
	if err != nil {
		e.log.Warn("input scan failed", zap.Error(err))
		return
	}

	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}

	for port, l := range e.listeners {
		if l.dead.Load() {
			l.stop()
			delete(e.listeners, port)
			e.log.Info("listener retired", zap.String("port", port))
		}
	}

	for _, name := range names {
		if _, ok := e.listeners[name]; !ok {
			e.spawn(name)
		}
	}

	// Disappearance clears ownership before any new adoption is considered;
	// the next clock or start from a surviving source claims the slot.
	e.state.DropVanished(present)
}

func (e *Engine) spawn(port string) {
	l := &listener{port: port}

	stop, err := e.ports.Listen(port,
		func(ev midi.Event) { e.handle(ev) },
		func(err error) {
			e.log.Warn("listener ended", zap.String("port", port), zap.Error(err))
			l.dead.Store(true)
		},
	)
	if err != nil {
		e.log.Warn("open input failed", zap.String("port", port), zap.Error(err))
		return
	}

	l.stop = stop
	e.listeners[port] = l
	e.log.Info("listening", zap.String("port", port))
}

// handle applies one event to the arbitration state per the transport state
// machine. Events from a port that is not the owner commute to no-ops, so no
// cross-port ordering is needed.
func (e *Engine) handle(ev midi.Event) {
	switch ev.Kind {
	case midi.KindStart, midi.KindContinue:
		e.state.HandleStart(ev.Port)
	case midi.KindStop:
		e.state.HandleStop(ev.Port)
	case midi.KindClock:
		if e.state.HandleClock(ev.Port) {
			if err := e.sink.Emit(); err != nil {
				e.log.Warn("pulse dropped", zap.String("port", ev.Port), zap.Error(err))
			}
		}
	}
}

func (e *Engine) stopAll() {
	for port, l := range e.listeners {
		l.stop()
		delete(e.listeners, port)
	}
}
