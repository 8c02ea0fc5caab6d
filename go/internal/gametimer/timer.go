package gametimer

import (
	"context"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/michalkopec1981/saper-gra/go/internal/events"
)

// Snapshot is a point-in-time view of the countdown.
type Snapshot struct {
	TimeLeft float64 `json:"time_left"`
	Running  bool    `json:"is_running"`
}

// Timer is the process-wide game countdown. A single goroutine (Run)
// owns the state; Start/PauseToggle/Reset/Snapshot serialize through
// its command channel, so concurrent HTTP requests and the 1 Hz tick
// can never race on a read-modify-write.
type Timer struct {
	clock clockwork.Clock
	bus   events.Bus
	cmdCh chan command
}

type cmdKind int

const (
	cmdStart cmdKind = iota + 1
	cmdPauseToggle
	cmdReset
	cmdSnapshot
)

type command struct {
	kind    cmdKind
	seconds float64
	resp    chan Snapshot
}

// New creates a timer. Run must be started before any command is issued.
func New(clock clockwork.Clock, bus events.Bus) *Timer {
	return &Timer{
		clock: clock,
		bus:   bus,
		cmdCh: make(chan command),
	}
}

// Run owns the timer state and ticks once per second until ctx is done.
func (t *Timer) Run(ctx context.Context) error {
	log.Info().Msg("game timer started")

	var (
		timeLeft float64
		running  bool
		endTime  time.Time
	)

	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("game timer shutting down")
			return nil

		case cmd := <-t.cmdCh:
			switch cmd.kind {
			case cmdStart:
				timeLeft = cmd.seconds
				running = true
				endTime = t.clock.Now().Add(time.Duration(cmd.seconds * float64(time.Second)))
				t.publish(ctx, events.TypeTimerStarted, events.TimerPayload{TimeLeft: timeLeft})

			case cmdPauseToggle:
				if running {
					timeLeft = endTime.Sub(t.clock.Now()).Seconds()
					running = false
					t.publish(ctx, events.TypeTimerPaused, events.TimerPayload{TimeLeft: timeLeft})
				} else {
					endTime = t.clock.Now().Add(time.Duration(timeLeft * float64(time.Second)))
					running = true
					t.publish(ctx, events.TypeTimerStarted, events.TimerPayload{TimeLeft: timeLeft})
				}

			case cmdReset:
				timeLeft = 0
				running = false
				endTime = time.Time{}
				t.publish(ctx, events.TypeTimerReset, nil)

			case cmdSnapshot:
				// read only
			}
			cmd.resp <- Snapshot{TimeLeft: timeLeft, Running: running}

		case <-ticker.Chan():
			if !running || endTime.IsZero() {
				continue
			}
			now := t.clock.Now()
			if !now.Before(endTime) {
				timeLeft = 0
				running = false
				t.publish(ctx, events.TypeTimerFinished, nil)
			} else {
				timeLeft = endTime.Sub(now).Seconds()
			}
			t.publish(ctx, events.TypeTimerTick, events.TimerPayload{TimeLeft: round1(timeLeft)})
		}
	}
}

// Start arms the countdown for the given number of seconds.
func (t *Timer) Start(ctx context.Context, seconds float64) (Snapshot, error) {
	return t.send(ctx, command{kind: cmdStart, seconds: seconds})
}

// PauseToggle freezes a running timer or resumes a paused one.
// Pause and resume share one endpoint, so this is a toggle.
func (t *Timer) PauseToggle(ctx context.Context) (Snapshot, error) {
	return t.send(ctx, command{kind: cmdPauseToggle})
}

// Reset stops the countdown and zeroes the remaining time.
func (t *Timer) Reset(ctx context.Context) (Snapshot, error) {
	return t.send(ctx, command{kind: cmdReset})
}

// Snapshot reads the current state without mutating it.
func (t *Timer) Snapshot(ctx context.Context) (Snapshot, error) {
	return t.send(ctx, command{kind: cmdSnapshot})
}

func (t *Timer) send(ctx context.Context, cmd command) (Snapshot, error) {
	cmd.resp = make(chan Snapshot, 1)
	select {
	case t.cmdCh <- cmd:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-cmd.resp:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (t *Timer) publish(ctx context.Context, typ events.Type, payload any) {
	ev, err := events.New(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to build timer event")
		return
	}
	if err := t.bus.Publish(ctx, ev); err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to publish timer event")
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
