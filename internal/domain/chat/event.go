package chat

import (
	"encoding/json"
	"errors"
)

// EventType tags a StreamEvent.
type EventType string

const (
	EventDelta EventType = "delta"
	EventDone  EventType = "done"
	EventError EventType = "error"
)

// StreamEvent is one framed unit of a chat response.
type StreamEvent struct {
	Type    EventType `json:"type"`
	Text    string    `json:"text,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Terminal reports whether the event ends a stream.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// MarshalJSON keeps the text field on deltas even when empty and omits it elsewhere.
func (e StreamEvent) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventDelta:
		return json.Marshal(struct {
			Type EventType `json:"type"`
			Text string    `json:"text"`
		}{e.Type, e.Text})
	case EventError:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Message string    `json:"message"`
		}{e.Type, e.Message})
	default:
		return json.Marshal(struct {
			Type EventType `json:"type"`
		}{e.Type})
	}
}

// Delta builds a text increment event.
func Delta(text string) StreamEvent { return StreamEvent{Type: EventDelta, Text: text} }

// Done builds the successful terminal event.
func Done() StreamEvent { return StreamEvent{Type: EventDone} }

// Failure builds the error terminal event.
func Failure(msg string) StreamEvent { return StreamEvent{Type: EventError, Message: msg} }

// EventSink receives stream events in order. Implementations write them to the client.
type EventSink interface {
	Send(StreamEvent) error
}

// ErrStreamTerminated is returned when an event is sent after the terminal event.
var ErrStreamTerminated = errors.New("stream already terminated")

// Emitter enforces the stream grammar on top of a sink: any number of deltas followed by
// exactly one terminal event, and nothing after it. After a sink write fails the emitter is
// considered terminated as well.
type Emitter struct {
	sink       EventSink
	terminated bool
	deltas     int
}

// NewEmitter wraps sink.
func NewEmitter(sink EventSink) *Emitter {
	return &Emitter{sink: sink}
}

// Delta sends a text increment.
func (e *Emitter) Delta(text string) error {
	if err := e.send(Delta(text)); err != nil {
		return err
	}
	e.deltas++
	return nil
}

// Done terminates the stream successfully.
func (e *Emitter) Done() error {
	return e.send(Done())
}

// Fail terminates the stream with an in-band error.
func (e *Emitter) Fail(msg string) error {
	return e.send(Failure(msg))
}

// Terminated reports whether a terminal event was sent or the sink failed.
func (e *Emitter) Terminated() bool { return e.terminated }

// Deltas returns how many deltas were delivered.
func (e *Emitter) Deltas() int { return e.deltas }

func (e *Emitter) send(ev StreamEvent) error {
	if e.terminated {
		return ErrStreamTerminated
	}
	if ev.Terminal() {
		e.terminated = true
	}
	if err := e.sink.Send(ev); err != nil {
		e.terminated = true
		return err
	}
	return nil
}
