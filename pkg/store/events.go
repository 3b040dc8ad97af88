package store

import "ftxwidget/pkg/widget"

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventInitial       EventType = "initial"
	EventStateChanged  EventType = "state_changed"
	EventActionIgnored EventType = "action_ignored"
	EventCountdown     EventType = "countdown"
)

// Event is published after every reduction and on each countdown tick.
type Event struct {
	Type      EventType     `json:"type"`
	Action    string        `json:"action,omitempty"`
	State     *widget.State `json:"state"`
	Remaining int           `json:"remaining,omitempty"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
