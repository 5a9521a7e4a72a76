package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/target/chat-relay/internal/domain/chat"
	apperrors "github.com/target/chat-relay/internal/errors"
	"github.com/target/chat-relay/internal/observability/metrics"
	"github.com/target/chat-relay/internal/observability/statsd"
	"github.com/target/chat-relay/internal/ports"
)

const (
	// DefaultFirstChunkTimeout bounds the wait for the first upstream increment.
	DefaultFirstChunkTimeout = 60 * time.Second
	// DefaultStreamTimeout bounds a whole stream, first chunk included.
	DefaultStreamTimeout = 5 * time.Minute

	msgInvalidMessages = "Invalid messages format"
	msgNoAPIKey        = "API key not configured"
	msgUpstreamFailed  = "An error occurred"
	msgUpstreamTimeout = "Response timed out"
	msgCanceled        = "Request canceled"
)

// ChatRelayOptions groups dependencies for ChatRelay.
type ChatRelayOptions struct {
	// Generator may be nil when no upstream is configured; every request then fails with a
	// Misconfigured error instead of the process refusing to start.
	Generator         ports.Generator
	HistoryLimit      int
	FirstChunkTimeout time.Duration
	StreamTimeout     time.Duration
	Metrics           statsd.Sink  // Optional
	Logger            *slog.Logger // Optional
}

// ChatRelay forwards conversations to the upstream generator and republishes the answer as an
// ordered event stream.
type ChatRelay struct {
	generator         ports.Generator
	historyLimit      int
	firstChunkTimeout time.Duration
	streamTimeout     time.Duration
	metrics           statsd.Sink
	logger            *slog.Logger
}

// NewChatRelay constructs a ChatRelay, applying defaults for zero values.
func NewChatRelay(opts ChatRelayOptions) *ChatRelay {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &ChatRelay{
		generator:         opts.Generator,
		historyLimit:      opts.HistoryLimit,
		firstChunkTimeout: opts.FirstChunkTimeout,
		streamTimeout:     opts.StreamTimeout,
		metrics:           opts.Metrics,
		logger:            logger.With("component", "chat_relay"),
	}
	if r.historyLimit <= 0 {
		r.historyLimit = chat.DefaultHistoryLimit
	}
	if r.firstChunkTimeout <= 0 {
		r.firstChunkTimeout = DefaultFirstChunkTimeout
	}
	if r.streamTimeout <= 0 {
		r.streamTimeout = DefaultStreamTimeout
	}
	return r
}

type chunk struct {
	text string
	err  error
}

// Stream is an upstream call that has produced its first increment (or ended cleanly) and is
// ready to be written to a client. Run must be called exactly once, or Close if the caller
// abandons it.
type Stream struct {
	relay   *ChatRelay
	ctx     context.Context
	cancel  context.CancelFunc
	chunks  <-chan chunk
	stopped <-chan struct{}
	first   *chunk
	started time.Time
}

// Open validates the conversation, starts the upstream call, and waits for the first
// increment. Every failure up to that point is returned synchronously as an AppError so the
// caller can still answer with a plain status code.
func (r *ChatRelay) Open(ctx context.Context, turns []chat.Turn) (*Stream, error) {
	started := time.Now()
	s, err := r.open(ctx, turns, started)
	if err != nil {
		metrics.EmitStream(r.metrics, metrics.StreamMetric{
			Phase:    "preflight",
			Result:   metrics.ResultRejected,
			Duration: time.Since(started),
			Err:      err,
		})
		r.logger.WarnContext(ctx, "chat request rejected", "error", err, "code", apperrors.GetCode(err))
	}
	return s, err
}

func (r *ChatRelay) open(ctx context.Context, turns []chat.Turn, started time.Time) (*Stream, error) {
	conv, err := chat.NewConversation(turns, r.historyLimit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, msgInvalidMessages).WithDetail(err.Error())
	}
	if r.generator == nil {
		return nil, apperrors.Misconfigured(msgNoAPIKey)
	}

	streamCtx, cancel := context.WithTimeout(ctx, r.streamTimeout)
	chunks := make(chan chunk)
	stopped := make(chan struct{})
	go r.produce(streamCtx, conv, chunks, stopped)

	s := &Stream{
		relay:   r,
		ctx:     streamCtx,
		cancel:  cancel,
		chunks:  chunks,
		stopped: stopped,
		started: started,
	}

	timer := time.NewTimer(r.firstChunkTimeout)
	defer timer.Stop()

	// Failures are classified before Close, which cancels streamCtx.
	select {
	case c, ok := <-chunks:
		switch {
		case ok && c.err != nil:
			failure := upstreamFailure(streamCtx, c.err)
			s.Close()
			return nil, failure
		case ok:
			s.first = &c
		case streamCtx.Err() != nil:
			failure := upstreamFailure(streamCtx, streamCtx.Err())
			s.Close()
			return nil, failure
		}
		return s, nil
	case <-timer.C:
		failure := apperrors.Wrap(context.DeadlineExceeded, apperrors.ErrCodeUpstreamFailure, msgUpstreamTimeout)
		s.Close()
		return nil, failure
	case <-streamCtx.Done():
		failure := upstreamFailure(streamCtx, streamCtx.Err())
		s.Close()
		return nil, failure
	}
}

// upstreamFailure classifies why an upstream call ended badly. Once ctx is done its error
// wins over whatever the generator reported: a canceled context means the client went away,
// an expired one means the stream ran out of time.
func upstreamFailure(ctx context.Context, cause error) error {
	switch err := ctx.Err(); {
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, msgCanceled)
	case err != nil:
		return apperrors.Wrap(err, apperrors.ErrCodeUpstreamFailure, msgUpstreamTimeout)
	default:
		return apperrors.Wrap(cause, apperrors.ErrCodeUpstreamFailure, msgUpstreamFailed)
	}
}

// produce drains the upstream sequence into out. It stops at the first error, when the
// sequence ends, or when ctx is done; closing out is the end signal.
func (r *ChatRelay) produce(ctx context.Context, conv chat.Conversation, out chan<- chunk, stopped chan<- struct{}) {
	defer close(stopped)
	defer close(out)
	for text, err := range r.generator.Stream(ctx, conv) {
		if err == nil && text == "" {
			continue
		}
		select {
		case out <- chunk{text: text, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// Run writes the stream to sink: one delta per increment, then exactly one done or error
// event. It returns the error that ended the stream early, or nil after done. The upstream
// call is released before Run returns.
func (s *Stream) Run(sink chat.EventSink) error {
	defer s.Close()
	em := chat.NewEmitter(sink)
	err := s.pump(em)

	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case errors.Is(err, errSinkFailed), apperrors.GetCode(err) == apperrors.ErrCodeCanceled:
		result = metrics.ResultAborted
	default:
		result = metrics.ResultError
	}
	metrics.EmitStream(s.relay.metrics, metrics.StreamMetric{
		Phase:    "stream",
		Result:   result,
		Deltas:   em.Deltas(),
		Duration: time.Since(s.started),
		Err:      err,
	})
	if err != nil {
		s.relay.logger.WarnContext(s.ctx, "chat stream ended early",
			"error", err, "result", result, "deltas", em.Deltas())
	}
	return err
}

var errSinkFailed = errors.New("event sink write failed")

func (s *Stream) pump(em *chat.Emitter) error {
	if s.first != nil {
		if err := em.Delta(s.first.text); err != nil {
			return errors.Join(errSinkFailed, err)
		}
	}
	for c := range s.chunks {
		if c.err != nil {
			return s.fail(em, c.err)
		}
		if err := em.Delta(c.text); err != nil {
			return errors.Join(errSinkFailed, err)
		}
	}
	if err := s.ctx.Err(); err != nil {
		return s.fail(em, err)
	}
	if err := em.Done(); err != nil {
		return errors.Join(errSinkFailed, err)
	}
	return nil
}

// fail terminates the stream with an in-band error event describing cause.
func (s *Stream) fail(em *chat.Emitter, cause error) error {
	failure := upstreamFailure(s.ctx, cause)
	if err := em.Fail(apperrors.PublicMessage(failure, msgUpstreamFailed)); err != nil {
		return errors.Join(errSinkFailed, failure, err)
	}
	return failure
}

// Close cancels the upstream call and waits for the producer to exit. It is safe to call
// more than once.
func (s *Stream) Close() {
	s.cancel()
	<-s.stopped
}
