package runner

// State tracks where an execution is in its lifecycle. Transitions are
// strictly forward: Init -> Navigated -> (Started) -> Pages -> Results
// -> Done, with Failed reachable from any point.
type State string

const (
	StateInit      State = "init"
	StateNavigated State = "navigated"
	StateStarted   State = "started"
	StatePages     State = "pages"
	StateResults   State = "results"
	StateDone      State = "done"
	StateFailed    State = "failed"
)
