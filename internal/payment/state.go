package payment

// State is where a cash screen is in its submission lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// transitions lists the legal moves. failed always falls back to idle.
var transitions = map[State][]State{
	StateIdle:       {StateSubmitting},
	StateSubmitting: {StateSuccess, StateFailed},
	StateFailed:     {StateIdle},
	StateSuccess:    {},
}

func (s State) CanMoveTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
