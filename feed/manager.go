package feed

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/livefeed/errors"
	"github.com/kbukum/livefeed/httpclient"
	"github.com/kbukum/livefeed/httpclient/sse"
	"github.com/kbukum/livefeed/logger"
	"github.com/kbukum/livefeed/observability"
)

// Manager owns one event stream connection: it opens the stream,
// classifies frames into the record buffer, reconnects with capped
// exponential backoff, and exposes the side-channel sender.
//
// All state transitions run under a single mutex. Stream reading
// happens on a per-handle goroutine that reports back through the
// machine, so callbacks from a superseded handle are discarded by
// generation check rather than by synchronization tricks.
type Manager struct {
	mu      sync.Mutex
	cfg     Config
	machine *machine
	buffer  *Buffer
	client  *httpclient.Client
	log     *logger.Logger
	metrics *observability.FeedMetrics
	tracer  trace.Tracer

	endpoint Endpoint
	handle   *streamHandle
	timer    *time.Timer

	// createFailed overrides the reported status after a synchronous
	// handle creation failure. Cleared by the next connect attempt.
	createFailed bool
}

// streamHandle is the manager's side of one stream goroutine.
type streamHandle struct {
	gen    uint64
	cancel context.CancelFunc
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to one built from cfg.Logging.
func WithLogger(log *logger.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithMetrics sets the metric instruments. Nil metrics are a no-op.
func WithMetrics(metrics *observability.FeedMetrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithTracer sets the tracer used for side-channel sends.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) { m.tracer = tracer }
}

// WithHTTPClient replaces the underlying HTTP client. Mostly for tests.
func WithHTTPClient(client *httpclient.Client) Option {
	return func(m *Manager) { m.client = client }
}

// New creates a Manager from the given configuration. The manager is
// idle until Connect is called (or Start, with AutoConnect set).
func New(cfg Config, opts ...Option) (*Manager, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:     cfg,
		machine: newMachine(cfg.AutoReconnect),
		buffer:  NewBuffer(cfg.BufferSize),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.log == nil {
		m.log = logger.New(&cfg.Logging, "livefeed")
	}
	m.log = m.log.WithComponent("feed")

	if m.client == nil {
		client, err := httpclient.New(httpclient.Config{BaseURL: cfg.BaseURL})
		if err != nil {
			return nil, err
		}
		m.client = client
	}
	return m, nil
}

// Connect opens the stream, tearing down any previous connection
// first. A synchronous handle creation failure is terminal: it is
// reported through Status and Records and never retried.
func (m *Manager) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ep := newEndpoint(m.cfg.BaseURL, m.cfg.Token)
	if err := ep.check(); err != nil {
		m.createFailed = true
		m.pushLocked(metaRecord(EventMeta, "failed to create stream"))
		m.log.WithError(err).Error("failed to create stream")
		return apperrors.ConnectionFailed(m.cfg.BaseURL, err)
	}
	m.createFailed = false
	m.endpoint = ep

	m.log.Info("connecting", logger.Fields(logger.FieldEndpoint, ep.String()))
	m.stepLocked(inputConnect{})
	return nil
}

// Disconnect closes the stream and cancels any pending reconnect.
// Safe to call in any state.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stepLocked(inputDisconnect{})
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.state
}

// Attempts returns the current consecutive reconnect attempt count.
// Reset to zero whenever a stream opens.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.attempt
}

// Records returns a snapshot of the buffered records, newest first.
func (m *Manager) Records() []Record {
	return m.buffer.Snapshot()
}

// stepLocked runs one machine transition and executes its effects.
// Caller holds m.mu.
func (m *Manager) stepLocked(in input) {
	before := m.machine.state
	m.applyLocked(m.machine.step(in))
	after := m.machine.state

	if before != after {
		m.log.Debug("state change", logger.Fields(
			"from", before.String(),
			logger.FieldState, after.String(),
		))
		if after == StateOpen {
			m.metrics.RecordStreamOpen(context.Background(), 1)
		}
		if before == StateOpen {
			m.metrics.RecordStreamOpen(context.Background(), -1)
		}
	}
}

// applyLocked executes side-effect intents in order. Caller holds m.mu.
func (m *Manager) applyLocked(effects []effect) {
	for _, ef := range effects {
		switch ef := ef.(type) {
		case effectOpenStream:
			m.endpoint = m.endpoint.refresh()
			ctx, cancel := context.WithCancel(context.Background())
			m.handle = &streamHandle{gen: ef.gen, cancel: cancel}
			go m.runStream(ctx, ef.gen, m.endpoint)

		case effectReleaseStream:
			if m.handle != nil {
				m.handle.cancel()
				m.handle = nil
			}

		case effectCancelTimer:
			if m.timer != nil {
				m.timer.Stop()
				m.timer = nil
			}

		case effectScheduleRetry:
			m.metrics.RecordReconnect(context.Background())
			m.log.Info("retry scheduled", logger.Fields(
				logger.FieldAttempt, ef.attempt,
				"delay", ef.delay.String(),
			))
			gen := ef.gen
			m.timer = time.AfterFunc(ef.delay, func() {
				m.retryFired(gen)
			})

		case effectEmit:
			m.pushLocked(ef.rec)
		}
	}
}

// retryFired is the backoff timer callback.
func (m *Manager) retryFired(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer = nil
	m.stepLocked(inputRetryTimer{gen: gen})
}

// dispatch feeds an input from a stream goroutine into the machine.
func (m *Manager) dispatch(in input) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stepLocked(in)
}

// pushLocked appends a record to the buffer and counts evictions.
func (m *Manager) pushLocked(rec Record) {
	evicted := m.buffer.Push(rec)
	m.metrics.RecordDropped(context.Background(), int64(evicted))
}

// runStream opens the stream and pumps frames until the stream ends or
// the handle is released. Runs on its own goroutine, one per handle.
func (m *Manager) runStream(ctx context.Context, gen uint64, ep Endpoint) {
	stream, err := m.client.DoStream(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   streamPath,
		Query:  ep.streamQuery(),
		Headers: map[string]string{
			"Accept":        "text/event-stream",
			"Cache-Control": "no-cache",
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.dispatch(inputStreamError{gen: gen, err: err})
		return
	}
	defer func() { _ = stream.Close() }()

	if stream.SSE == nil {
		m.dispatch(inputStreamError{
			gen: gen,
			err: apperrors.New(apperrors.ErrCodeExternalService, "response is not an event stream"),
		})
		return
	}

	m.dispatch(inputOpened{gen: gen, endpoint: ep.String()})
	m.log.Info("stream open", logger.Fields(logger.FieldEndpoint, ep.String()))

	for {
		ev, err := stream.SSE.Next()
		if err != nil {
			if ctx.Err() != nil {
				// Handle was released; the generation check would drop
				// this anyway.
				return
			}
			m.dispatch(inputStreamError{gen: gen, err: classifyStreamEnd(err)})
			return
		}
		m.onFrame(ctx, gen, ev)
	}
}

// onFrame classifies and buffers one incoming frame, unless the handle
// has been superseded meanwhile.
func (m *Manager) onFrame(ctx context.Context, gen uint64, ev *sse.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.machine.acceptsFrames(gen) {
		return
	}
	rec := Classify(ev)
	m.pushLocked(rec)
	m.metrics.RecordFrame(ctx, rec.Event)
	m.log.Debug("frame", logger.Fields(logger.FieldEvent, rec.Event))
}

// classifyStreamEnd maps a reader error to an application error.
func classifyStreamEnd(err error) error {
	if err == io.EOF {
		return apperrors.StreamClosed(err)
	}
	return apperrors.ConnectionFailed("event stream", err)
}
