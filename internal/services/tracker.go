package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"studytracker/internal/core"
	"studytracker/internal/log"
	"studytracker/internal/observability"
	"studytracker/internal/storage"
)

// ResultKind classifies the outcome of a submission for the view.
type ResultKind string

const (
	ResultOK            ResultKind = "ok"
	ResultValidation    ResultKind = "validation"
	ResultUnknownCourse ResultKind = "unknown_course"
	ResultUnknownWeek   ResultKind = "unknown_week"
	ResultIO            ResultKind = "io"
)

const invalidHoursMessage = "Please enter a valid number for hours."

// Result is what SubmitEntry reports back to the view. It never carries a
// Go error; Message is meant to be shown to the user as is.
type Result struct {
	OK      bool       `json:"ok"`
	Kind    ResultKind `json:"kind"`
	Message string     `json:"message"`
	// Entry is set whenever the ledger was changed, including when the
	// following save failed.
	Entry *core.Entry `json:"entry,omitempty"`
}

// EntryPublisher is notified after an entry has been recorded and saved.
type EntryPublisher interface {
	PublishEntry(ctx context.Context, e core.Entry) error
}

// Tracker is the collaborator the view talks to. It owns the ledger and
// sequences every mutation with an explicit save. Calls are serialized, so
// the ledger only ever sees one operation at a time.
type Tracker struct {
	mu        sync.Mutex
	ledger    *core.Ledger
	store     storage.Store
	publisher EntryPublisher
	logger    *log.Logger
	now       func() time.Time
}

type Option func(*Tracker)

// WithPublisher enables entry notifications.
func WithPublisher(p EntryPublisher) Option {
	return func(t *Tracker) { t.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l.WithComponent(log.ComponentTracker)
		}
	}
}

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker wraps an already loaded ledger.
func NewTracker(ledger *core.Ledger, store storage.Store, opts ...Option) *Tracker {
	t := &Tracker{
		ledger: ledger,
		store:  store,
		logger: log.Wrap(nil, log.ComponentTracker),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.ledger == nil {
		t.ledger = core.NewLedger()
	}
	observability.SetLedgerHours(t.ledger.Total())
	return t
}

// Open loads the ledger from store, falling back to an empty one, and
// returns a tracker owning it.
func Open(ctx context.Context, store storage.Store, opts ...Option) *Tracker {
	t := NewTracker(core.NewLedger(), store, opts...)
	t.ledger = LoadLedger(ctx, store, t.logger)
	observability.SetLedgerHours(t.ledger.Total())
	return t
}

// LoadLedger reads the stored ledger. It never fails: missing, corrupt or
// unreadable storage yields a fresh ledger with every cell at zero.
func LoadLedger(ctx context.Context, store storage.Store, logger *log.Logger) *core.Ledger {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentStorage)
	}
	l, err := store.Load(ctx)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Ledger loaded", "total_hours", l.Total())
		return l
	case errors.Is(err, storage.ErrNotFound):
		logger.InfoContext(ctx, "No saved ledger, starting empty")
	case errors.Is(err, storage.ErrCorrupt):
		logger.WarnContext(ctx, "Saved ledger is corrupt, starting empty",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeStorage).WithOperation(log.OpLoad).ToSlice()...)
	default:
		logger.ErrorContext(ctx, "Failed to read saved ledger, starting empty",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeStorage).WithOperation(log.OpLoad).ToSlice()...)
	}
	return core.NewLedger()
}

// Courses enumerates the fixed course set.
func (t *Tracker) Courses() []core.Course {
	return core.Courses()
}

// Weeks enumerates the fixed week range.
func (t *Tracker) Weeks() []core.Week {
	return core.Weeks()
}

// SubmitText is SubmitEntry for views that hand over raw selection text.
func (t *Tracker) SubmitText(ctx context.Context, course, week, raw string) Result {
	c, err := core.ParseCourse(course)
	if err != nil {
		return t.reject(ctx, ResultUnknownCourse, fmt.Sprintf("Unknown course %q.", course), course, 0, raw, err)
	}
	w, err := core.ParseWeek(week)
	if err != nil {
		return t.reject(ctx, ResultUnknownWeek, fmt.Sprintf("Unknown week %q.", week), course, 0, raw, err)
	}
	return t.SubmitEntry(ctx, c, w, raw)
}

// SubmitEntry adds raw hours to the course/week cell, then saves the ledger.
// Errors come back as a Result with a user-facing message.
func (t *Tracker) SubmitEntry(ctx context.Context, course core.Course, week core.Week, raw string) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	delta, err := t.ledger.AddHours(course, week, raw)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUnknownCourse):
			return t.reject(ctx, ResultUnknownCourse, fmt.Sprintf("Unknown course %q.", string(course)), string(course), int(week), raw, err)
		case errors.Is(err, core.ErrUnknownWeek):
			return t.reject(ctx, ResultUnknownWeek, fmt.Sprintf("Unknown week %d.", int(week)), string(course), int(week), raw, err)
		default:
			return t.reject(ctx, ResultValidation, invalidHoursMessage, string(course), int(week), raw, err)
		}
	}

	entry := t.entry(course, week, delta)
	observability.SetLedgerHours(t.ledger.Total())

	if err := t.save(ctx); err != nil {
		observability.RecordEntry(string(ResultIO))
		return Result{
			Kind:    ResultIO,
			Message: "Hours were added but could not be saved: " + err.Error(),
			Entry:   &entry,
		}
	}
	observability.RecordEntry(string(ResultOK))

	t.logger.InfoContext(ctx, "Study hours recorded",
		log.NewFields().WithEntry(string(course), int(week), raw).WithOperation(log.OpSubmit).ToSlice()...)

	t.publish(ctx, entry)

	return Result{
		OK:      true,
		Kind:    ResultOK,
		Message: fmt.Sprintf("Added %s hours to %s, week %d.", strconv.FormatFloat(delta, 'f', -1, 64), course, int(week)),
		Entry:   &entry,
	}
}

func (t *Tracker) entry(course core.Course, week core.Week, delta float64) core.Entry {
	courseTotal, _ := t.ledger.CourseTotal(course)
	weekTotal, _ := t.ledger.WeekTotal(week)
	return core.Entry{
		Course:      course,
		Week:        week,
		Hours:       delta,
		CellHours:   t.ledger.Hours(course, week),
		CourseTotal: courseTotal,
		WeekTotal:   weekTotal,
		RecordedAt:  t.now().UTC(),
	}
}

func (t *Tracker) reject(ctx context.Context, kind ResultKind, msg, course string, week int, raw string, err error) Result {
	observability.RecordEntry(string(kind))
	t.logger.WarnContext(ctx, "Study hours rejected",
		log.NewFields().
			WithEntry(course, week, raw).
			WithError(err).
			WithErrorType(log.ErrorTypeValidation).
			WithOperation(log.OpSubmit).
			ToSlice()...)
	return Result{Kind: kind, Message: msg}
}

func (t *Tracker) publish(ctx context.Context, e core.Entry) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.PublishEntry(ctx, e); err != nil {
		// The entry is saved; notification loss is not surfaced to the user.
		t.logger.ErrorContext(ctx, "Failed to publish entry",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeNetwork).WithOperation(log.OpPublish).ToSlice()...)
	}
}

// save must be called with t.mu held.
func (t *Tracker) save(ctx context.Context) error {
	err := t.store.Save(ctx, t.ledger)
	observability.RecordSave(err)
	if err != nil {
		t.logger.ErrorContext(ctx, "Failed to save ledger",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeStorage).WithOperation(log.OpSave).ToSlice()...)
	}
	return err
}

// Snapshot returns the aggregates for rendering.
func (t *Tracker) Snapshot() core.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Snapshot()
}

// Save persists the ledger outside of a submission.
func (t *Tracker) Save(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save(ctx)
}

// Shutdown performs the final save before the process exits.
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.save(ctx); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	t.logger.InfoContext(ctx, "Ledger saved on shutdown",
		log.FieldOperation, log.OpShutdown,
		"total_hours", t.ledger.Total())
	return nil
}
