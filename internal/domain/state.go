package domain

// SessionState is the state of a cooking session. It is a closed set of
// variants: Idle, Loading, Failed, Ready, Empty and Complete.
type SessionState interface {
	// Name returns a short lowercase label, used in logs.
	Name() string
	sessionState()
}

// Idle is the state of a controller before the first Open.
type Idle struct{}

// Loading means steps are being resolved.
type Loading struct {
	RecipeName string
}

// Failed means step resolution failed. The user may retry.
type Failed struct {
	RecipeName string
	Kind       ErrorKind
	Message    string
}

// Empty means resolution succeeded but produced no steps.
type Empty struct {
	RecipeName string
}

// Ready is the interactive state. Steps is never empty and Index is
// always within bounds.
type Ready struct {
	RecipeName string
	Steps      []CookingStep
	Index      int
	Timer      TimerState
}

// Complete is terminal until a new session is opened.
type Complete struct {
	RecipeName string
	StepCount  int
}

func (Idle) Name() string     { return "idle" }
func (Loading) Name() string  { return "loading" }
func (Failed) Name() string   { return "error" }
func (Empty) Name() string    { return "empty" }
func (Ready) Name() string    { return "ready" }
func (Complete) Name() string { return "complete" }

func (Idle) sessionState()     {}
func (Loading) sessionState()  {}
func (Failed) sessionState()   {}
func (Empty) sessionState()    {}
func (Ready) sessionState()    {}
func (Complete) sessionState() {}

// CurrentStep returns the step at Index, or false if Index is out of
// range (a zero Ready has no steps).
func (r Ready) CurrentStep() (CookingStep, bool) {
	if r.Index < 0 || r.Index >= len(r.Steps) {
		return CookingStep{}, false
	}
	return r.Steps[r.Index], true
}

// IsFirst reports whether the session is on the first step.
func (r Ready) IsFirst() bool { return r.Index == 0 }

// IsLast reports whether the session is on the last step. UIs use it to
// label the forward action "Finish" instead of "Next".
func (r Ready) IsLast() bool { return r.Index == len(r.Steps)-1 }

// Progress returns (Index+1)/len(Steps).
func (r Ready) Progress() float64 {
	if len(r.Steps) == 0 {
		return 0
	}
	return float64(r.Index+1) / float64(len(r.Steps))
}

// TimerState is an observable snapshot of a countdown.
//
// Finished implies !Running and RemainingSeconds == 0.
type TimerState struct {
	RemainingSeconds int
	Running          bool
	Finished         bool
}

// IsZero reports whether the timer is in its reset state.
func (t TimerState) IsZero() bool {
	return t == TimerState{}
}
