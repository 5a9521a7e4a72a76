// Package metrics emits the relay's standard StatsD metrics.
package metrics

import (
	"time"

	obserrors "github.com/target/chat-relay/internal/observability/errors"
	"github.com/target/chat-relay/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultRejected = "rejected"
	ResultAborted  = "aborted"
)

// StreamMetric captures the outcome of one chat stream.
type StreamMetric struct {
	// Phase is "preflight" when the stream never started, otherwise "stream".
	Phase    string
	Result   string
	Deltas   int
	Duration time.Duration
	Err      error
}

// EmitStream emits chat.stream counters and timings.
func EmitStream(sink statsd.Sink, in StreamMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"phase":  in.Phase,
		"result": in.Result,
	}
	addErrorClass(tags, in.Err)

	sink.Count("chat.stream", 1, tags)
	if in.Deltas > 0 {
		sink.Count("chat.stream.deltas", int64(in.Deltas), CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("chat.stream.duration", in.Duration, CloneTags(tags))
	}
}

// LoginMetric captures the outcome of one login exchange.
type LoginMetric struct {
	Result   string
	Duration time.Duration
	Err      error
}

// EmitLogin emits auth.login counters and timings.
func EmitLogin(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": in.Result}
	addErrorClass(tags, in.Err)

	sink.Count("auth.login", 1, tags)
	if in.Duration > 0 {
		sink.Timing("auth.login.duration", in.Duration, CloneTags(tags))
	}
}

func addErrorClass(tags map[string]string, err error) {
	if err == nil {
		return
	}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
