package request

// SubmittedEvent is published after a submission commits.
type SubmittedEvent struct {
	Result Request
}

// TransitionedEvent is published after a status change commits, including
// the auto-approval hop of a submission.
type TransitionedEvent struct {
	From   Status
	To     Status
	Actor  Actor
	Result Request
}

// NewSubmittedEvent creates the event for a persisted submission.
func NewSubmittedEvent(result *Request) *SubmittedEvent {
	return &SubmittedEvent{Result: *result}
}

// NewTransitionedEvent creates the event for a committed status change.
func NewTransitionedEvent(from, to Status, actor Actor, result *Request) *TransitionedEvent {
	return &TransitionedEvent{From: from, To: to, Actor: actor, Result: *result}
}
