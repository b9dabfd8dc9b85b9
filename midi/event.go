package midi

// Kind classifies the transport and timing messages the clock engine reacts
// to. Everything else a port sends is dropped at the listening boundary.
type Kind int

const (
	KindClock Kind = iota
	KindStart
	KindContinue
	KindStop
)

func (k Kind) String() string {
	switch k {
	case KindClock:
		return "clock"
	case KindStart:
		return "start"
	case KindContinue:
		return "continue"
	case KindStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Event is one transport/timing message received from a named input port.
type Event struct {
	Port string
	Kind Kind
}
