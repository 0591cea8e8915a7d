package bridge

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arko-chat/nativekit/internal/dispatch"
	"github.com/arko-chat/nativekit/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingObserver struct {
	mu         sync.Mutex
	delivered  int
	duplicated int
}

func (o *countingObserver) CallbackDelivered(string) {
	o.mu.Lock()
	o.delivered++
	o.mu.Unlock()
}

func (o *countingObserver) CallbackDuplicated(string) {
	o.mu.Lock()
	o.duplicated++
	o.mu.Unlock()
}

func echo(req int, deliver func(int)) { deliver(req * 2) }

func TestSelectsNativeWhenPresent(t *testing.T) {
	d := dispatch.New(discardLogger())
	b := New[int, int]("x", StrategyFunc[int, int](echo), StrategyFunc[int, int](echo), d, discardLogger(), nil)
	assert.Equal(t, KindNative, b.Kind())
	assert.Equal(t, "x", b.Name())

	fb := New[int, int]("x", nil, StrategyFunc[int, int](echo), d, discardLogger(), nil)
	assert.Equal(t, KindFallback, fb.Kind())
}

func TestContinuationRunsOnlyWhenDrained(t *testing.T) {
	d := dispatch.New(discardLogger())
	b := New[int, int]("x", nil, StrategyFunc[int, int](echo), d, discardLogger(), nil)

	got := 0
	inDrain := false
	b.Call(21, func(v int) {
		got = v
		inDrain = d.InDrain()
	})
	assert.Equal(t, 0, got, "synchronous delivery must still be deferred")

	d.DrainPending()
	assert.Equal(t, 42, got)
	assert.True(t, inDrain)
}

func TestDeliveryFromForeignGoroutine(t *testing.T) {
	d := dispatch.New(discardLogger())
	var wg sync.WaitGroup
	native := StrategyFunc[int, int](func(req int, deliver func(int)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deliver(req + 1)
		}()
	})
	b := New[int, int]("x", native, nil, d, discardLogger(), nil)

	got := 0
	b.Call(1, func(v int) { got = v })
	wg.Wait()
	assert.Equal(t, 0, got)

	d.DrainPending()
	assert.Equal(t, 2, got)
}

func TestDuplicateDeliveryDropped(t *testing.T) {
	d := dispatch.New(discardLogger())
	obs := &countingObserver{}
	twice := StrategyFunc[int, int](func(req int, deliver func(int)) {
		deliver(1)
		deliver(2)
	})
	b := New[int, int]("x", twice, nil, d, discardLogger(), obs)

	var got []int
	b.Call(0, func(v int) { got = append(got, v) })
	d.DrainPending()

	assert.Equal(t, []int{1}, got)
	assert.Equal(t, 1, obs.delivered)
	assert.Equal(t, 1, obs.duplicated)
}

func TestUndeliveredCallStaysPending(t *testing.T) {
	d := dispatch.New(discardLogger())
	never := StrategyFunc[int, int](func(int, func(int)) {})
	b := New[int, int]("x", never, nil, d, discardLogger(), nil)

	called := false
	b.Call(0, func(int) { called = true })
	d.DrainPending()
	assert.False(t, called)
}

func TestForwardMarshalsPushes(t *testing.T) {
	d := dispatch.New(discardLogger())
	var seen []int
	handler := Forward(d, func(v int) {
		assert.True(t, d.InDrain())
		seen = append(seen, v)
	})

	done := make(chan struct{})
	go func() {
		handler(1)
		handler(2)
		close(done)
	}()
	<-done
	assert.Empty(t, seen)

	d.DrainPending()
	assert.Equal(t, []int{1, 2}, seen)
}

type recordingPopup struct {
	title, message, buttons string
	count                   int
	cb                      PopupCallback
}

func (r *recordingPopup) ShowPopup(title, message, buttons string, count int, cb PopupCallback) {
	r.title, r.message, r.buttons, r.count, r.cb = title, message, buttons, count, cb
}

func TestPopupStrategyJoinsButtons(t *testing.T) {
	backend := &recordingPopup{}
	s := PopupStrategy(backend)
	require.NotNil(t, s)

	got := -2
	s.Invoke(models.PopupRequest{
		Title:   "t",
		Message: "m",
		Buttons: []string{"Rate\nnow", "Later", "No"},
	}, func(i int) { got = i })

	assert.Equal(t, 3, backend.count)
	assert.Equal(t, []string{"Rate\nnow", "Later", "No"}, SplitButtons(backend.buttons, backend.count))

	backend.cb.PopupClosed(2)
	assert.Equal(t, 2, got)

	assert.Nil(t, PopupStrategy(nil))
}

type recordingSharing struct {
	image []byte
	size  int
	cb    SharingCallback
}

func (r *recordingSharing) Share(_, _ string, image []byte, size int, cb SharingCallback) {
	r.image, r.size, r.cb = image, size, cb
}

func TestSharingStrategyPassesEmptyBuffer(t *testing.T) {
	backend := &recordingSharing{}
	s := SharingStrategy(backend)

	var res models.ShareResult
	s.Invoke(models.SharePayload{Text: "hi"}, func(r models.ShareResult) { res = r })
	require.NotNil(t, backend.image)
	assert.Empty(t, backend.image)
	assert.Equal(t, 0, backend.size)

	backend.cb.SharingFinished("mail", true)
	assert.Equal(t, models.ShareResult{Destination: "mail", Completed: true}, res)
}

func TestButtonRoleMapping(t *testing.T) {
	assert.Equal(t, 0, ButtonIndex(RolePositive, 3))
	assert.Equal(t, 1, ButtonIndex(RoleNeutral, 3))
	assert.Equal(t, 2, ButtonIndex(RoleNegative, 3))
	assert.Equal(t, 1, ButtonIndex(RoleNegative, 2))
	assert.Equal(t, 0, ButtonIndex(RoleNegative, 1))

	for count := 1; count <= 3; count++ {
		for i := range count {
			role, ok := ButtonRoleFor(i, count)
			require.True(t, ok)
			assert.Equal(t, i, ButtonIndex(role, count), "count=%d index=%d", count, i)
		}
	}
}

func TestRegistrySeal(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Popup()
	assert.False(t, ok)

	require.NoError(t, r.RegisterPopup(&recordingPopup{}))
	_, ok = r.Popup()
	assert.True(t, ok)

	assert.False(t, r.Sealed())
	r.Seal()
	assert.True(t, r.Sealed())
	assert.ErrorIs(t, r.RegisterSharing(&recordingSharing{}), ErrSealed)
	_, ok = r.Sharing()
	assert.False(t, ok)
}
