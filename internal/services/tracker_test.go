package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytracker/internal/core"
	"studytracker/internal/log"
	"studytracker/internal/storage"
)

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (s *failingStore) Load(context.Context) (*core.Ledger, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return core.NewLedger(), nil
}

func (s *failingStore) Save(context.Context, *core.Ledger) error {
	s.saves++
	return s.saveErr
}

type recordingPublisher struct {
	mu      sync.Mutex
	entries []core.Entry
	err     error
}

func (p *recordingPublisher) PublishEntry(_ context.Context, e core.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	return p.err
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
}

func TestOpenFallsBackToEmptyLedger(t *testing.T) {
	ctx := context.Background()
	cases := map[string]storage.Store{
		"missing":    storage.NewMemoryStore(nil),
		"corrupt":    storage.NewMemoryStore([]byte(`{"Math": {"1": `)),
		"unreadable": &failingStore{loadErr: fmt.Errorf("%w: permission denied", storage.ErrIO)},
	}
	for name, store := range cases {
		t.Run(name, func(t *testing.T) {
			tr := Open(ctx, store, WithLogger(quietLogger()))
			snap := tr.Snapshot()
			for _, c := range core.Courses() {
				for _, w := range core.Weeks() {
					assert.Zero(t, snap.Hours(c, w))
				}
			}
			assert.Zero(t, snap.Total)
		})
	}
}

func TestOpenLoadsSavedLedger(t *testing.T) {
	store := storage.NewMemoryStore([]byte(`{"Math": {"1": 3.5}}`))
	tr := Open(context.Background(), store, WithLogger(quietLogger()))
	snap := tr.Snapshot()
	assert.Equal(t, 3.5, snap.Hours(core.Math, 1))
	assert.Equal(t, 3.5, snap.CourseTotals[core.Math])
}

func TestSubmitEntryAccumulatesAndSaves(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(nil)
	fixed := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	tr := Open(ctx, store, WithLogger(quietLogger()), WithClock(func() time.Time { return fixed }))

	res := tr.SubmitEntry(ctx, core.Math, 1, "2.0")
	require.True(t, res.OK, res.Message)
	res = tr.SubmitEntry(ctx, core.Math, 1, "1,5")
	require.True(t, res.OK, res.Message)
	assert.Equal(t, ResultOK, res.Kind)
	assert.Equal(t, "Added 1.5 hours to Math, week 1.", res.Message)

	require.NotNil(t, res.Entry)
	assert.Equal(t, core.Entry{
		Course:      core.Math,
		Week:        1,
		Hours:       1.5,
		CellHours:   3.5,
		CourseTotal: 3.5,
		WeekTotal:   3.5,
		RecordedAt:  fixed,
	}, *res.Entry)

	assert.Equal(t, 2, store.Saves())
	reloaded := Open(ctx, store, WithLogger(quietLogger()))
	assert.Equal(t, 3.5, reloaded.Snapshot().Hours(core.Math, 1))
}

func TestSubmitEntryValidation(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(nil)
	tr := Open(ctx, store, WithLogger(quietLogger()))
	require.True(t, tr.SubmitEntry(ctx, core.Physics, 3, "1").OK)
	before := tr.Snapshot()

	res := tr.SubmitEntry(ctx, core.Physics, 3, "abc")
	assert.False(t, res.OK)
	assert.Equal(t, ResultValidation, res.Kind)
	assert.Equal(t, "Please enter a valid number for hours.", res.Message)
	assert.Nil(t, res.Entry)

	assert.Equal(t, before, tr.Snapshot())
	assert.Equal(t, 1, store.Saves(), "rejected entries must not be saved")
}

func TestSubmitEntryUnknownCell(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	tr := NewTracker(core.NewLedger(), store, WithLogger(quietLogger()))

	res := tr.SubmitEntry(ctx, "Chemistry", 1, "1")
	assert.Equal(t, ResultUnknownCourse, res.Kind)
	res = tr.SubmitEntry(ctx, core.Math, 15, "1")
	assert.Equal(t, ResultUnknownWeek, res.Kind)
	assert.Zero(t, store.saves)
}

func TestSubmitText(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(core.NewLedger(), storage.NewMemoryStore(nil), WithLogger(quietLogger()))

	res := tr.SubmitText(ctx, "math", " 2 ", "0.5")
	require.True(t, res.OK, res.Message)
	assert.Equal(t, 0.5, tr.Snapshot().Hours(core.Math, 2))

	assert.Equal(t, ResultUnknownCourse, tr.SubmitText(ctx, "History", "2", "1").Kind)
	assert.Equal(t, ResultUnknownWeek, tr.SubmitText(ctx, "Math", "twenty", "1").Kind)
	assert.Equal(t, ResultValidation, tr.SubmitText(ctx, "Math", "2", "-1").Kind)
}

func TestSubmitEntrySaveFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{saveErr: fmt.Errorf("%w: disk full", storage.ErrIO)}
	tr := NewTracker(core.NewLedger(), store, WithLogger(quietLogger()))

	res := tr.SubmitEntry(ctx, core.Other, 4, "2")
	assert.False(t, res.OK)
	assert.Equal(t, ResultIO, res.Kind)
	assert.Contains(t, res.Message, "could not be saved")
	require.NotNil(t, res.Entry)
	assert.Equal(t, 2.0, tr.Snapshot().Hours(core.Other, 4))

	err := tr.Shutdown(ctx)
	require.ErrorIs(t, err, storage.ErrIO)
	assert.Equal(t, 2, store.saves)
}

func TestSubmitEntryOverflowKeepsLedgerSavable(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(nil)
	tr := Open(ctx, store, WithLogger(quietLogger()))

	require.True(t, tr.SubmitEntry(ctx, core.Math, 1, "1e308").OK)

	res := tr.SubmitEntry(ctx, core.Math, 1, "1e308")
	assert.False(t, res.OK)
	assert.Equal(t, ResultValidation, res.Kind)
	assert.Nil(t, res.Entry)
	assert.Equal(t, 1e308, tr.Snapshot().Hours(core.Math, 1))

	res = tr.SubmitEntry(ctx, core.Physics, 2, "3")
	require.True(t, res.OK, res.Message)
	require.NoError(t, tr.Shutdown(ctx))

	reloaded := Open(ctx, store, WithLogger(quietLogger()))
	snap := reloaded.Snapshot()
	assert.Equal(t, 3.0, snap.Hours(core.Physics, 2))
	assert.Equal(t, 1e308, snap.Hours(core.Math, 1))
}

func TestOpenKeepsNonNumericWeekKeys(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore([]byte(`{"Math": {"1": 2, "01": 5, "future": 9}}`))
	tr := Open(ctx, store, WithLogger(quietLogger()))

	assert.Equal(t, 2.0, tr.Snapshot().Hours(core.Math, 1))
	require.True(t, tr.SubmitEntry(ctx, core.Math, 1, "1").OK)

	back, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.0, back.Hours(core.Math, 1))
	assert.Equal(t, []string{"Math/01", "Math/future"}, back.RawKeys())
}

func TestSubmitEntryPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	store := storage.NewMemoryStore(nil)
	tr := NewTracker(core.NewLedger(), store, WithLogger(quietLogger()), WithPublisher(pub))

	require.True(t, tr.SubmitEntry(ctx, core.Engineering, 5, "3").OK)
	tr.SubmitEntry(ctx, core.Engineering, 5, "x")
	require.Len(t, pub.entries, 1)
	assert.Equal(t, core.Engineering, pub.entries[0].Course)
	assert.Equal(t, 3.0, pub.entries[0].WeekTotal)

	// Publisher failures never fail the submission.
	pub.err = errors.New("broker down")
	assert.True(t, tr.SubmitEntry(ctx, core.Engineering, 5, "1").OK)
	assert.Equal(t, 2, store.Saves())
}

func TestShutdownSaves(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(nil)
	l := core.NewLedger()
	require.NoError(t, l.Add(core.Physics, 2, 4))
	tr := NewTracker(l, store, WithLogger(quietLogger()))

	require.NoError(t, tr.Shutdown(ctx))
	back, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, l.Equal(back))
}

func TestSubmitEntryConcurrentCallsSerialize(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(core.NewLedger(), storage.NewMemoryStore(nil), WithLogger(quietLogger()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.SubmitEntry(ctx, core.Programming, 7, "0.5")
		}()
	}
	wg.Wait()
	assert.Equal(t, 25.0, tr.Snapshot().CourseTotals[core.Programming])
}
