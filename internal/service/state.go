package service

import "fmt"

// State is a position in the lookup state machine.
type State int

const (
	StateIdle State = iota
	StateGeocodingInFlight
	StateGeocodeFailed
	StateConditionsInFlight
	StateConditionsFailed
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGeocodingInFlight:
		return "geocoding_in_flight"
	case StateGeocodeFailed:
		return "geocode_failed"
	case StateConditionsInFlight:
		return "conditions_in_flight"
	case StateConditionsFailed:
		return "conditions_failed"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateGeocodeFailed || s == StateConditionsFailed || s == StateCompleted
}

var allowedTransitions = map[State][]State{
	StateIdle:               {StateGeocodingInFlight, StateConditionsInFlight},
	StateGeocodingInFlight:  {StateGeocodeFailed, StateConditionsInFlight},
	StateConditionsInFlight: {StateConditionsFailed, StateCompleted},
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to State) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func mustTransition(from, to State) {
	if !CanTransition(from, to) {
		panic(fmt.Sprintf("lookup: illegal transition %s -> %s", from, to))
	}
}
