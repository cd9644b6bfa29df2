package engine

// Outcome classifies how an event was resolved. no_action_needed is kept
// distinct from actions_succeeded: an event for which the handler had
// nothing to do is not the same as one whose actions all ran.
type Outcome string

const (
	OutcomeActionsSucceeded Outcome = "actions_succeeded"
	OutcomePartial          Outcome = "partial"
	OutcomeFailed           Outcome = "failed"
	OutcomeNoActionNeeded   Outcome = "no_action_needed"
)

// Decision is a handler's declared intent: the actions warranted by the
// change, in execution order, plus an optional classification result
// (document category, expense category).
type Decision struct {
	Actions  []Action
	Category string
}

// ExecutedAction is one action that actually ran, as recorded in the
// audit trail
type ExecutedAction struct {
	Target string `json:"target"`
	Label  string `json:"label"`
}

// FailedAction is one action that was attempted and failed
type FailedAction struct {
	Target string `json:"target"`
	Label  string `json:"label"`
	Error  string `json:"error"`
}

// AutomationResult is the outcome of a single handler invocation after
// execution. Actions lists only the actions actually taken; an action
// never runs without appearing here.
type AutomationResult struct {
	Handler  string           `json:"handler"`
	Outcome  Outcome          `json:"outcome"`
	Actions  []ExecutedAction `json:"actions"`
	Failed   []FailedAction   `json:"failed,omitempty"`
	Category string           `json:"category,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Success reports whether the invocation resolved without a full failure
func (r AutomationResult) Success() bool {
	return r.Outcome != OutcomeFailed
}

// ActionOutcome is the executor's verdict for one declared action
type ActionOutcome struct {
	Action Action
	Err    error
}

// BuildResult folds executor outcomes into an AutomationResult
func BuildResult(handler string, decision Decision, outcomes []ActionOutcome) AutomationResult {
	result := AutomationResult{
		Handler:  handler,
		Category: decision.Category,
	}

	for _, out := range outcomes {
		if out.Err != nil {
			result.Failed = append(result.Failed, FailedAction{
				Target: out.Action.Target(),
				Label:  out.Action.Label(),
				Error:  out.Err.Error(),
			})
			continue
		}
		result.Actions = append(result.Actions, ExecutedAction{
			Target: out.Action.Target(),
			Label:  out.Action.Label(),
		})
	}

	switch {
	case len(outcomes) == 0:
		result.Outcome = OutcomeNoActionNeeded
	case len(result.Failed) == 0:
		result.Outcome = OutcomeActionsSucceeded
	case len(result.Actions) == 0:
		result.Outcome = OutcomeFailed
		result.Error = result.Failed[0].Error
	default:
		result.Outcome = OutcomePartial
		result.Error = result.Failed[0].Error
	}

	return result
}

// FailureResult builds the result for a handler that failed before
// declaring any actions; nothing is assumed to have run
func FailureResult(handler string, err error) AutomationResult {
	return AutomationResult{
		Handler: handler,
		Outcome: OutcomeFailed,
		Error:   err.Error(),
	}
}
