package download

// Status tracks an item through its pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusResolved   Status = "resolved"
	StatusFetching   Status = "fetching"
	StatusFetched    Status = "fetched"
	StatusConverting Status = "converting"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// validTransitions defines allowed state transitions.
// Key is the "from" status, value is list of valid "to" statuses.
// Failed and canceled absorb from every non-terminal state; done is only
// reachable through conversion.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusResolved, StatusFailed, StatusCanceled},
	StatusResolved:   {StatusFetching, StatusFailed, StatusCanceled},
	StatusFetching:   {StatusFetched, StatusFailed, StatusCanceled},
	StatusFetched:    {StatusConverting, StatusFailed, StatusCanceled},
	StatusConverting: {StatusDone, StatusFailed, StatusCanceled},
	StatusDone:       {},
	StatusFailed:     {},
	StatusCanceled:   {},
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s Status) CanTransitionTo(target Status) bool {
	valid, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, v := range valid {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if this status has no valid outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed || s == StatusCanceled
}
