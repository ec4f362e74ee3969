package pipeline

import "delphi/internal/agents"

// EventType tags the messages streamed to dashboard clients during a run.
type EventType string

const (
	EventStart    EventType = "start"
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one message in a run's progress stream. Which fields are set
// depends on the type: start carries ticker and date, progress carries
// agent, progress and message, complete carries the result envelope, and
// error carries the failure message.
type Event struct {
	Type     EventType      `json:"type"`
	Ticker   string         `json:"ticker,omitempty"`
	Date     string         `json:"date,omitempty"`
	Agent    string         `json:"agent,omitempty"`
	Progress *int           `json:"progress,omitempty"`
	Message  string         `json:"message,omitempty"`
	Result   *agents.Result `json:"result,omitempty"`
}

// NewStartEvent acknowledges an accepted run.
func NewStartEvent(ticker, date string) Event {
	return Event{Type: EventStart, Ticker: ticker, Date: date}
}

// NewProgressEvent reports how far along the run is and what it is about to
// work on.
func NewProgressEvent(agent string, percent int, message string) Event {
	return Event{Type: EventProgress, Agent: agent, Progress: &percent, Message: message}
}

// NewCompleteEvent carries the final result envelope.
func NewCompleteEvent(result *agents.Result) Event {
	return Event{Type: EventComplete, Result: result}
}

// NewErrorEvent carries the run's failure message.
func NewErrorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

// Percent returns the progress percentage, zero for events that carry none.
func (e Event) Percent() int {
	if e.Progress == nil {
		return 0
	}
	return *e.Progress
}

// Terminal reports whether the event ends the run's stream.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}
