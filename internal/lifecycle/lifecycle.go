package lifecycle

import (
	"fmt"

	"github.com/scolaria/class_admin/internal/model"
)

// Action is a lifecycle transition trigger.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionDeactivate Action = "deactivate"
)

// edges is the whole transition graph. No edge leaves inactive or
// rejected: both are terminal.
var edges = map[Action]struct {
	from model.ClassState
	to   model.ClassState
}{
	ActionApprove:    {from: model.ClassStatePending, to: model.ClassStateActive},
	ActionReject:     {from: model.ClassStatePending, to: model.ClassStateRejected},
	ActionDeactivate: {from: model.ClassStateActive, to: model.ClassStateInactive},
}

// Transition returns the target state for applying action in state. Every
// (state, action) pair either matches exactly one edge or fails with
// ErrInvalidTransition; there is no silent no-op, so a double submission
// of approve on an already-active class fails instead of succeeding.
func Transition(state model.ClassState, action Action) (model.ClassState, error) {
	edge, ok := edges[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", model.ErrInvalidTransition, action)
	}
	if state != edge.from {
		return "", fmt.Errorf("%w: cannot %s a class in state %q", model.ErrInvalidTransition, action, state)
	}
	return edge.to, nil
}

// CanApply checks if action is permitted from state
func CanApply(state model.ClassState, action Action) bool {
	_, err := Transition(state, action)
	return err == nil
}

// Initial returns the state every class is created in. Creation may never
// skip the approval queue.
func Initial() model.ClassState {
	return model.ClassStatePending
}
