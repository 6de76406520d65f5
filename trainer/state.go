package trainer

// State is the position of the training loop.
type State int

const (
	Idle State = iota
	EpochRunning
	BatchRunning
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case EpochRunning:
		return "epoch"
	case BatchRunning:
		return "batch"
	case Done:
		return "done"
	}
	return "unknown"
}

// Event describes one state transition. Loss is set only on BatchRunning
// events, after the optimizer step.
type Event struct {
	State State
	Epoch int
	Batch int
	Step  int
	Loss  float64
}

// Observer receives every Event of a run in order.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }
