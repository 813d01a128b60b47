package breathing

import "time"

// Phase is one stage of a breathing cycle.
type Phase string

const (
	PhaseInhale Phase = "inhale"
	PhaseHold   Phase = "hold"
	PhaseExhale Phase = "exhale"
	PhaseWait   Phase = "wait"
)

// Phases lists the cycle in order. After PhaseWait the cycle wraps to PhaseInhale.
var Phases = [...]Phase{PhaseInhale, PhaseHold, PhaseExhale, PhaseWait}

// EventType defines the type of engine event.
type EventType string

const (
	EventPhaseChange EventType = "phase_change"
	EventDisplay     EventType = "display"
	EventFinished    EventType = "finished"
)

// StopReason tells observers why a session ended.
type StopReason string

const (
	StopCompleted StopReason = "completed"
	StopCancelled StopReason = "cancelled"
)

// TickOutcome is the result of a single Tick call.
type TickOutcome int

const (
	TickUpdated TickOutcome = iota
	TickStopped
)

func (outcome TickOutcome) String() string {
	if outcome == TickStopped {
		return "stopped"
	}
	return "updated"
}

// Event represents an engine update for observers.
type Event struct {
	Type    EventType
	Session string
	Phase   Phase
	Display Display
	Reason  StopReason
	At      time.Time
}
