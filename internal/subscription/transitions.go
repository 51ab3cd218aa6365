package subscription

import "slices"

type Transition struct {
	From DelinquencyState
	To   DelinquencyState
}

var validTransitions = map[Transition]bool{
	{StateCurrent, StatePendingRetry}: true, // payment failed, grace starts
	{StatePendingRetry, StatePastDue}: true, // grace elapsed
	{StatePendingRetry, StateCurrent}: true, // retry succeeded
	{StatePastDue, StateCurrent}:      true, // paid after restriction
}

func CanTransition(from, to DelinquencyState) bool {
	return validTransitions[Transition{from, to}]
}

// validTransitionsFrom returns the reachable states from from, sorted.
func validTransitionsFrom(from DelinquencyState) []DelinquencyState {
	targets := make([]DelinquencyState, 0)
	for t := range validTransitions {
		if t.From == from {
			targets = append(targets, t.To)
		}
	}
	slices.Sort(targets)
	return targets
}
