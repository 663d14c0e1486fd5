package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tahmid-rahman/counselhub/internal/clock"
	"github.com/tahmid-rahman/counselhub/internal/model"
	"github.com/tahmid-rahman/counselhub/internal/state"
)

// Engine owns the entity store. All business operations and the sweeper are
// serialized behind one mutex with no I/O inside the critical section, so no
// caller ever observes a partially applied transition. Construct one per
// process (or per test) and inject it; there is no package-level instance.
type Engine struct {
	mu        sync.Mutex
	snap      state.Snapshot
	deadlines deadlineHeap
	replies   map[string]clock.Timer

	clk        clock.Clock
	replyDelay func() time.Duration
	newID      func() string
	logger     *slog.Logger
	tracer     trace.Tracer

	journal   Journal
	journalCh chan JournalEntry
	done      chan struct{}
	closeOnce sync.Once
}

type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clk = c }
}

// WithReplyDelay overrides the random delay before the simulated counterpart
// reply fires.
func WithReplyDelay(fn func() time.Duration) Option {
	return func(e *Engine) { e.replyDelay = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

func WithIDSource(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// New builds an engine around an initial snapshot (usually from the seed
// provider). Deadlines already materialized in the snapshot are indexed so
// they still expire on time.
func New(initial state.Snapshot, opts ...Option) *Engine {
	if initial.Config.LawyerApprovalHours <= 0 ||
		initial.Config.ClientPaymentMinutes <= 0 ||
		initial.Config.CasePaymentDays <= 0 {
		initial.Config = model.DefaultConfig()
	}

	e := &Engine{
		snap:    initial,
		replies: map[string]clock.Timer{},
		clk:     clock.System(),
		newID:   uuid.NewString,
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		tracer:  otel.Tracer("counselhub/engine"),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.replyDelay == nil {
		e.replyDelay = defaultReplyDelay
	}
	e.indexDeadlines(initial)
	if e.journal != nil {
		e.journalCh = make(chan JournalEntry, journalBuffer)
		go e.runJournal()
	}
	return e
}

// Close stops the journal pump and any pending reply timers.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.mu.Lock()
		for id, t := range e.replies {
			t.Stop()
			delete(e.replies, id)
		}
		e.mu.Unlock()
	})
}

// Snapshot returns a deep-copied read-only view of all entities. Mutation
// only happens through named operations.
func (e *Engine) Snapshot() state.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Clone()
}

// apply runs actions through the reducer in order. Caller holds e.mu; the
// whole batch is visible atomically because readers also take the mutex.
func (e *Engine) apply(_ context.Context, actions ...state.Action) {
	now := e.clk.Now()
	for _, a := range actions {
		e.snap = state.Apply(e.snap, a)
		e.record(a, now)
	}
}

type ref struct {
	appointmentID string
	caseID        string
	paymentID     string
}

func (e *Engine) newNotification(at time.Time, typ model.NotificationType, title, message string, r ref) model.Notification {
	return model.Notification{
		ID:            e.newID(),
		Timestamp:     at,
		Type:          typ,
		Title:         title,
		Message:       message,
		AppointmentID: r.appointmentID,
		CaseID:        r.caseID,
		PaymentID:     r.paymentID,
	}
}
