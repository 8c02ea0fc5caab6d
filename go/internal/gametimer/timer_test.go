package gametimer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michalkopec1981/saper-gra/go/internal/events"
)

type chanBus struct {
	ch chan events.Event
}

func newChanBus() *chanBus {
	return &chanBus{ch: make(chan events.Event, 32)}
}

func (b *chanBus) Publish(_ context.Context, ev events.Event) error {
	b.ch <- ev
	return nil
}

func (b *chanBus) next(t *testing.T) events.Event {
	t.Helper()
	select {
	case ev := <-b.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

func timeLeft(t *testing.T, ev events.Event) float64 {
	t.Helper()
	var payload events.TimerPayload
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	return payload.TimeLeft
}

func startTimer(t *testing.T) (*Timer, *chanBus, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	bus := newChanBus()
	timer := New(clock, bus)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = timer.Run(ctx)
	}()
	// Wait for the run loop to arm its ticker before advancing the clock.
	clock.BlockUntil(1)
	return timer, bus, clock
}

func TestTimerStartAndTick(t *testing.T) {
	timer, bus, clock := startTimer(t)
	ctx := context.Background()

	snap, err := timer.Start(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, snap.TimeLeft)
	assert.True(t, snap.Running)

	started := bus.next(t)
	assert.Equal(t, events.TypeTimerStarted, started.Type)
	assert.Equal(t, 3.0, timeLeft(t, started))

	clock.Advance(time.Second)
	tick := bus.next(t)
	assert.Equal(t, events.TypeTimerTick, tick.Type)
	assert.Equal(t, 2.0, timeLeft(t, tick))

	clock.Advance(time.Second)
	tick = bus.next(t)
	assert.Equal(t, events.TypeTimerTick, tick.Type)
	assert.Equal(t, 1.0, timeLeft(t, tick))
}

func TestTimerFinishes(t *testing.T) {
	timer, bus, clock := startTimer(t)
	ctx := context.Background()

	_, err := timer.Start(ctx, 1)
	require.NoError(t, err)
	bus.next(t) // timer_started

	clock.Advance(time.Second)
	finished := bus.next(t)
	assert.Equal(t, events.TypeTimerFinished, finished.Type)
	finalTick := bus.next(t)
	assert.Equal(t, events.TypeTimerTick, finalTick.Type)
	assert.Equal(t, 0.0, timeLeft(t, finalTick))

	snap, err := timer.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Running)
	assert.Equal(t, 0.0, snap.TimeLeft)
}

func TestTimerPauseAndResume(t *testing.T) {
	timer, bus, clock := startTimer(t)
	ctx := context.Background()

	_, err := timer.Start(ctx, 10)
	require.NoError(t, err)
	bus.next(t) // timer_started

	clock.Advance(time.Second)
	bus.next(t) // tick 9

	snap, err := timer.PauseToggle(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Running)
	assert.Equal(t, 9.0, snap.TimeLeft)

	paused := bus.next(t)
	assert.Equal(t, events.TypeTimerPaused, paused.Type)
	assert.Equal(t, 9.0, timeLeft(t, paused))

	// A paused timer must not lose time while the clock moves on. The
	// next published event has to be the resume, not a tick.
	clock.Advance(5 * time.Second)
	snap, err = timer.PauseToggle(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Running)
	assert.Equal(t, 9.0, snap.TimeLeft)

	resumed := bus.next(t)
	assert.Equal(t, events.TypeTimerStarted, resumed.Type)
	assert.Equal(t, 9.0, timeLeft(t, resumed))

	// A ticker fire queued during the pause may still be in flight and
	// republish 9.0 right after the resume. Skip it if it shows up.
	clock.Advance(time.Second)
	tick := bus.next(t)
	assert.Equal(t, events.TypeTimerTick, tick.Type)
	if timeLeft(t, tick) == 9.0 {
		tick = bus.next(t)
		assert.Equal(t, events.TypeTimerTick, tick.Type)
	}
	assert.Equal(t, 8.0, timeLeft(t, tick))
}

func TestTimerReset(t *testing.T) {
	timer, bus, _ := startTimer(t)
	ctx := context.Background()

	_, err := timer.Start(ctx, 30)
	require.NoError(t, err)
	bus.next(t) // timer_started

	snap, err := timer.Reset(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Running)
	assert.Equal(t, 0.0, snap.TimeLeft)

	reset := bus.next(t)
	assert.Equal(t, events.TypeTimerReset, reset.Type)
	assert.Empty(t, reset.Data)
}

func TestTimerSendRespectsContext(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := New(clock, newChanBus())

	// Run loop never started, so the command can only fail via ctx.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := timer.Start(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}
