package rating

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arko-chat/nativekit/internal/models"
	"github.com/arko-chat/nativekit/internal/prefs"
)

type fakePopup struct {
	shown []models.PopupRequest
}

func (f *fakePopup) Show(req models.PopupRequest) error {
	f.shown = append(f.shown, req)
	return nil
}

type fakeScheduler struct {
	delays  []time.Duration
	actions []func()
}

func (f *fakeScheduler) ScheduleAfter(d time.Duration, action func()) {
	f.delays = append(f.delays, d)
	f.actions = append(f.actions, action)
}

type fixture struct {
	policy    *Policy
	store     prefs.Store
	popup     *fakePopup
	scheduler *fakeScheduler
	opened    []string
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     prefs.NewMemoryStore(),
		popup:     &fakePopup{},
		scheduler: &fakeScheduler{},
		now:       time.Unix(1000, 0),
	}
	opts := DefaultOptions()
	opts.AppName = "Blocks"
	opts.StoreURL = "market://details?id=com.example.blocks"
	f.policy = New(f.store, f.popup, f.scheduler, opts,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time { return f.now }),
		WithURLOpener(func(url string) error {
			f.opened = append(f.opened, url)
			return nil
		}),
	)
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func TestElapsedAccumulatesAcrossReads(t *testing.T) {
	f := newFixture(t)
	f.advance(90 * time.Second)
	assert.Equal(t, 90*time.Second, f.policy.Elapsed())

	f.advance(10 * time.Second)
	assert.Equal(t, 100*time.Second, f.policy.Elapsed())
	assert.Equal(t, 100.0, prefs.FloatOr(f.store, KeyElapsed, 0))
}

func TestShouldShowThresholds(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, NotAskedYet, f.policy.State())

	f.advance(29 * time.Minute)
	assert.False(t, f.policy.ShouldShow())
	f.advance(2 * time.Minute)
	assert.True(t, f.policy.ShouldShow())

	require.NoError(t, f.store.SetInt(KeyState, int(Pending)))
	require.NoError(t, f.store.SetFloat(KeyElapsed, 0))
	f.policy.lastUpdate = f.now
	f.advance(45 * time.Minute)
	assert.False(t, f.policy.ShouldShow())
	f.advance(16 * time.Minute)
	assert.True(t, f.policy.ShouldShow())

	require.NoError(t, f.store.SetInt(KeyState, int(Declined)))
	assert.False(t, f.policy.ShouldShow())
	require.NoError(t, f.store.SetInt(KeyState, int(Done)))
	assert.False(t, f.policy.ShouldShow())
}

func TestShowBuildsDialog(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.policy.Show(0, nil, false))
	assert.Empty(t, f.popup.shown, "too early to ask")

	require.NoError(t, f.policy.Show(0, nil, true))
	require.Len(t, f.popup.shown, 1)
	req := f.popup.shown[0]
	assert.Equal(t, "Do you like this game?", req.Title)
	assert.Contains(t, req.Message, "If you enjoy using Blocks")
	assert.Equal(t, []string{"Rate\nBlocks", "Remind me later", "No, thanks"}, req.Buttons)
}

func TestAnswers(t *testing.T) {
	cases := []struct {
		index  int
		state  State
		opened bool
	}{
		{ButtonRate, Done, true},
		{ButtonLater, Pending, false},
		{ButtonNo, Declined, false},
		{models.Dismissed, Pending, false},
	}
	for _, tc := range cases {
		f := newFixture(t)
		f.advance(time.Hour)
		closed := false
		require.NoError(t, f.policy.Show(0, func() { closed = true }, false))
		require.Len(t, f.popup.shown, 1)

		f.popup.shown[0].OnClose(tc.index)
		assert.True(t, closed)
		assert.Equal(t, tc.state, f.policy.State(), "index %d", tc.index)
		assert.Equal(t, tc.opened, len(f.opened) == 1, "index %d", tc.index)
		assert.Equal(t, 0.0, prefs.FloatOr(f.store, KeyElapsed, -1))
	}
}

func TestDelayedShowUsesScheduler(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.policy.Show(3*time.Second, nil, true))
	assert.Empty(t, f.popup.shown)
	require.Len(t, f.scheduler.actions, 1)
	assert.Equal(t, 3*time.Second, f.scheduler.delays[0])

	f.scheduler.actions[0]()
	assert.Len(t, f.popup.shown, 1)
}

func TestStateSurvivesNewPolicy(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.policy.Show(0, nil, true))
	f.popup.shown[0].OnClose(ButtonNo)

	again := New(f.store, f.popup, f.scheduler, DefaultOptions(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, Declined, again.State())
	assert.False(t, again.ShouldShow())
}
