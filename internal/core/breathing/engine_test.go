package breathing

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"boxbreath/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, phaseSeconds int, limit *time.Duration) (*Engine, <-chan Event) {
	t.Helper()
	engine := New(model.NewSessionConfig(phaseSeconds, limit), Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return engine, engine.Subscribe(1024)
}

func limitOf(d time.Duration) *time.Duration {
	return &d
}

func drain(ch <-chan Event) []Event {
	var events []Event
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, event)
		default:
			return events
		}
	}
}

func phaseChanges(events []Event) []Phase {
	var phases []Phase
	for _, event := range events {
		if event.Type == EventPhaseChange {
			phases = append(phases, event.Phase)
		}
	}
	return phases
}

func countType(events []Event, eventType EventType) int {
	count := 0
	for _, event := range events {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

func TestEngineClampsPhaseDuration(t *testing.T) {
	for _, seconds := range []int{-1, 0, 2, 3, 4, 5, 6, 7, 60} {
		engine := New(model.SessionConfig{PhaseSeconds: seconds}, Options{})
		got := engine.Config().PhaseSeconds
		assert.GreaterOrEqual(t, got, model.MinPhaseSeconds)
		assert.LessOrEqual(t, got, model.MaxPhaseSeconds)
		assert.Equal(t, time.Duration(got)*time.Second, engine.Snapshot().PhaseRemaining)
	}
}

func TestEngineStart(t *testing.T) {
	engine, events := newTestEngine(t, 4, nil)
	require.NoError(t, engine.Start())

	snapshot := engine.Snapshot()
	assert.True(t, snapshot.Running)
	assert.Equal(t, PhaseInhale, snapshot.Phase)
	assert.Equal(t, 4*time.Second, snapshot.PhaseRemaining)
	assert.Zero(t, snapshot.Elapsed)
	assert.False(t, snapshot.Ending)

	emitted := drain(events)
	require.Len(t, emitted, 1)
	assert.Equal(t, EventPhaseChange, emitted[0].Type)
	assert.Equal(t, PhaseInhale, emitted[0].Phase)
	assert.Equal(t, engine.ID(), emitted[0].Session)
}

func TestEngineDoubleStartIsReportedNoop(t *testing.T) {
	engine, events := newTestEngine(t, 4, nil)
	require.NoError(t, engine.Start())
	engine.Tick(time.Second)
	drain(events)

	err := engine.Start()
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Empty(t, drain(events))
	assert.Equal(t, time.Second, engine.Snapshot().Elapsed)
}

func TestEngineOneSecondTicks(t *testing.T) {
	engine, events := newTestEngine(t, 4, nil)
	require.NoError(t, engine.Start())
	drain(events)

	for i := 1; i <= 5; i++ {
		assert.Equal(t, TickUpdated, engine.Tick(time.Second))
		emitted := drain(events)
		if i == 4 {
			assert.Equal(t, []Phase{PhaseHold}, phaseChanges(emitted), "tick %d", i)
		} else {
			assert.Empty(t, phaseChanges(emitted), "tick %d", i)
		}
		assert.Equal(t, 1, countType(emitted, EventDisplay), "tick %d", i)
	}

	snapshot := engine.Snapshot()
	assert.Equal(t, PhaseHold, snapshot.Phase)
	assert.Equal(t, 3*time.Second, snapshot.PhaseRemaining)
	assert.Equal(t, 5*time.Second, snapshot.Elapsed)
}

func TestEngineCyclesPhasesWithoutLimit(t *testing.T) {
	engine, events := newTestEngine(t, 3, nil)
	require.NoError(t, engine.Start())

	deltas := []time.Duration{
		700 * time.Millisecond, 1300 * time.Millisecond, 90 * time.Millisecond,
		2 * time.Second, 450 * time.Millisecond, 2900 * time.Millisecond,
	}
	var total time.Duration
	for round := 0; round < 10; round++ {
		for _, delta := range deltas {
			require.Equal(t, TickUpdated, engine.Tick(delta))
			total += delta
			assert.Equal(t, total, engine.Snapshot().Elapsed)
		}
	}

	phases := phaseChanges(drain(events))
	require.NotEmpty(t, phases)
	for i, phase := range phases {
		assert.Equal(t, Phases[i%len(Phases)], phase, "transition %d", i)
	}
	// 74.4s of 3s phases: 24 transitions plus the start.
	assert.Len(t, phases, 25)
}

func TestEngineCarriesOvershoot(t *testing.T) {
	engine, events := newTestEngine(t, 4, nil)
	require.NoError(t, engine.Start())

	engine.Tick(4300 * time.Millisecond)
	snapshot := engine.Snapshot()
	assert.Equal(t, PhaseHold, snapshot.Phase)
	assert.Equal(t, 3700*time.Millisecond, snapshot.PhaseRemaining)

	engine.Tick(3800 * time.Millisecond)
	snapshot = engine.Snapshot()
	assert.Equal(t, PhaseExhale, snapshot.Phase)
	assert.Equal(t, 3900*time.Millisecond, snapshot.PhaseRemaining)
	assert.Equal(t, 8100*time.Millisecond, snapshot.Elapsed)

	assert.Equal(t, []Phase{PhaseInhale, PhaseHold, PhaseExhale}, phaseChanges(drain(events)))
}

func TestEngineLargeDeltaCatchesUpOnePhasePerTick(t *testing.T) {
	engine, events := newTestEngine(t, 4, nil)
	require.NoError(t, engine.Start())
	drain(events)

	assert.Equal(t, TickUpdated, engine.Tick(10*time.Second))
	snapshot := engine.Snapshot()
	assert.Equal(t, PhaseHold, snapshot.Phase)
	assert.Equal(t, -2*time.Second, snapshot.PhaseRemaining)
	assert.Equal(t, 0, snapshot.Display.Countdown)

	assert.Equal(t, TickUpdated, engine.Tick(time.Second))
	snapshot = engine.Snapshot()
	assert.Equal(t, PhaseExhale, snapshot.Phase)
	assert.Equal(t, time.Second, snapshot.PhaseRemaining)
	assert.Equal(t, 11*time.Second, snapshot.Elapsed)

	assert.Equal(t, []Phase{PhaseHold, PhaseExhale}, phaseChanges(drain(events)))
}

func TestEngineNonPositiveDeltaIsNoop(t *testing.T) {
	engine, events := newTestEngine(t, 4, nil)
	require.NoError(t, engine.Start())
	engine.Tick(1500 * time.Millisecond)
	before := engine.Snapshot()
	drain(events)

	assert.Equal(t, TickUpdated, engine.Tick(0))
	assert.Equal(t, TickUpdated, engine.Tick(-3*time.Second))

	after := engine.Snapshot()
	assert.Equal(t, before.Elapsed, after.Elapsed)
	assert.Equal(t, before.PhaseRemaining, after.PhaseRemaining)
	emitted := drain(events)
	assert.Equal(t, 2, countType(emitted, EventDisplay))
	assert.Empty(t, phaseChanges(emitted))
}

func TestEngineTimeLimit(t *testing.T) {
	tests := []struct {
		name        string
		limit       time.Duration
		stopAtTick  int
		endingAfter int
		phases      []Phase
	}{
		{
			name:        "reached mid hold winds down through exhale",
			limit:       5 * time.Second,
			stopAtTick:  12,
			endingAfter: 5,
			phases:      []Phase{PhaseInhale, PhaseHold, PhaseExhale},
		},
		{name: "reached mid inhale", limit: 2 * time.Second, stopAtTick: 12, endingAfter: 2},
		{name: "reached mid exhale", limit: 10 * time.Second, stopAtTick: 12, endingAfter: 10},
		{name: "reached exactly at end of exhale", limit: 12 * time.Second, stopAtTick: 12},
		{name: "reached during wait", limit: 13 * time.Second, stopAtTick: 13},
		{name: "reached at end of wait", limit: 16 * time.Second, stopAtTick: 16},
		{name: "zero limit expires on first tick", limit: 0, stopAtTick: 12, endingAfter: 1},
		{name: "negative limit expires on first tick", limit: -time.Minute, stopAtTick: 12, endingAfter: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, events := newTestEngine(t, 4, limitOf(tt.limit))
			require.NoError(t, engine.Start())

			stoppedAt := 0
			for tick := 1; tick <= 40; tick++ {
				outcome := engine.Tick(time.Second)
				if outcome == TickStopped {
					stoppedAt = tick
					break
				}
				snapshot := engine.Snapshot()
				if tt.endingAfter > 0 && tick >= tt.endingAfter {
					assert.True(t, snapshot.Ending, "tick %d", tick)
				} else {
					assert.False(t, snapshot.Ending, "tick %d", tick)
				}
				assert.True(t, snapshot.Running)
			}

			assert.Equal(t, tt.stopAtTick, stoppedAt)
			assert.False(t, engine.Running())
			assert.Equal(t, StopCompleted, engine.Reason())
			assert.Equal(t, time.Duration(tt.stopAtTick)*time.Second, engine.Snapshot().Elapsed)

			emitted := drain(events)
			require.NotEmpty(t, emitted)
			assert.Equal(t, 1, countType(emitted, EventFinished))
			last := emitted[len(emitted)-1]
			assert.Equal(t, EventFinished, last.Type)
			assert.Equal(t, StopCompleted, last.Reason)
			if tt.phases != nil {
				assert.Equal(t, tt.phases, phaseChanges(emitted))
			}
		})
	}
}

func TestEngineNeverStopsMidInhaleOrHold(t *testing.T) {
	engine, events := newTestEngine(t, 5, limitOf(time.Second))
	require.NoError(t, engine.Start())

	var lastPhase Phase
	for engine.Tick(250*time.Millisecond) == TickUpdated {
		lastPhase = engine.Snapshot().Phase
	}
	assert.Contains(t, []Phase{PhaseExhale, PhaseWait}, lastPhase)

	emitted := drain(events)
	finished := emitted[len(emitted)-1]
	assert.Equal(t, EventFinished, finished.Type)
	assert.Contains(t, []Phase{PhaseExhale, PhaseWait}, finished.Phase)
}

func TestEngineStopIsIdempotent(t *testing.T) {
	engine, events := newTestEngine(t, 4, nil)
	require.NoError(t, engine.Start())
	engine.Tick(time.Second)

	engine.Stop()
	engine.Stop()

	emitted := drain(events)
	assert.Equal(t, 1, countType(emitted, EventFinished))
	assert.Equal(t, StopCancelled, emitted[len(emitted)-1].Reason)

	_, open := <-events
	assert.False(t, open, "observer channel should be closed after stop")

	assert.Equal(t, TickStopped, engine.Tick(time.Second))
	assert.Equal(t, time.Second, engine.Snapshot().Elapsed)
}

func TestEngineStopBeforeStart(t *testing.T) {
	engine, events := newTestEngine(t, 4, nil)
	engine.Stop()

	assert.Empty(t, drain(events))
	assert.ErrorIs(t, engine.Start(), ErrSessionOver)
	assert.Equal(t, TickStopped, engine.Tick(time.Second))
	assert.False(t, engine.Running())
	assert.Equal(t, StopCancelled, engine.Reason())

	_, open := <-engine.Subscribe(1)
	assert.False(t, open)
}

func TestEngineStartAfterCompletion(t *testing.T) {
	engine, _ := newTestEngine(t, 3, limitOf(0))
	require.NoError(t, engine.Start())
	for engine.Tick(time.Second) == TickUpdated {
	}
	assert.ErrorIs(t, engine.Start(), ErrSessionOver)
}

func TestTickOutcomeString(t *testing.T) {
	assert.Equal(t, "updated", TickUpdated.String())
	assert.Equal(t, "stopped", TickStopped.String())
}
