package cpu

// State is the execution state of the processor.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_READY   = State(0) // ready
	STATE_RUNNING = State(1) // running
	STATE_HALTED  = State(2) // halted
	STATE_FAULTED = State(3) // faulted
)

// Done returns true for the terminal states.
func (state State) Done() bool {
	return state == STATE_HALTED || state == STATE_FAULTED
}
