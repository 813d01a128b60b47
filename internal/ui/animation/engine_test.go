package animation

import (
	"context"
	"sync"
	"testing"
	"time"

	"boxbreath/internal/core/breathing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scaleRecorder struct {
	mu     sync.Mutex
	values []float32
}

func (recorder *scaleRecorder) record(scale float32) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.values = append(recorder.values, scale)
}

func (recorder *scaleRecorder) snapshot() []float32 {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]float32(nil), recorder.values...)
}

func testConfig() Config {
	return Config{MinScale: 0.25, MaxScale: 1, FrameInterval: time.Millisecond}
}

func TestTargetScale(t *testing.T) {
	config := testConfig()
	assert.Equal(t, config.MaxScale, TargetScale(config, breathing.PhaseInhale))
	assert.Equal(t, config.MaxScale, TargetScale(config, breathing.PhaseHold))
	assert.Equal(t, config.MinScale, TargetScale(config, breathing.PhaseExhale))
	assert.Equal(t, config.MinScale, TargetScale(config, breathing.PhaseWait))
}

func TestEngineInhaleGrowsMonotonically(t *testing.T) {
	recorder := &scaleRecorder{}
	engine := New(testConfig(), recorder.record)

	engine.StartPhase(context.Background(), breathing.PhaseInhale, 40*time.Millisecond)
	require.Eventually(t, func() bool { return engine.Scale() == 1 }, time.Second, time.Millisecond)

	values := recorder.snapshot()
	require.NotEmpty(t, values)
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1])
	}
	assert.Equal(t, float32(1), values[len(values)-1])
}

func TestEngineHoldKeepsSize(t *testing.T) {
	recorder := &scaleRecorder{}
	engine := New(testConfig(), recorder.record)

	engine.StartPhase(context.Background(), breathing.PhaseInhale, 0)
	require.Eventually(t, func() bool { return engine.Scale() == 1 }, time.Second, time.Millisecond)

	engine.StartPhase(context.Background(), breathing.PhaseHold, 30*time.Millisecond)
	require.Eventually(t, func() bool { return len(recorder.snapshot()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []float32{1, 1}, recorder.snapshot())
}

func TestEngineStopHaltsTransition(t *testing.T) {
	recorder := &scaleRecorder{}
	engine := New(testConfig(), recorder.record)

	engine.StartPhase(context.Background(), breathing.PhaseInhale, time.Hour)
	require.Eventually(t, func() bool { return len(recorder.snapshot()) > 0 }, time.Second, time.Millisecond)
	engine.Stop()

	time.Sleep(20 * time.Millisecond)
	settled := len(recorder.snapshot())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, len(recorder.snapshot()))
	assert.Less(t, engine.Scale(), float32(1))
}

func TestEngineReset(t *testing.T) {
	engine := New(testConfig(), nil)
	engine.StartPhase(context.Background(), breathing.PhaseInhale, 0)
	require.Eventually(t, func() bool { return engine.Scale() == 1 }, time.Second, time.Millisecond)

	engine.Reset()
	assert.Equal(t, float32(0.25), engine.Scale())
}

func TestStyleFor(t *testing.T) {
	for _, phase := range breathing.Phases {
		style := StyleFor(phase)
		assert.NotEmpty(t, style.Label)
		assert.Len(t, style.Hex, 7)
	}
	assert.Equal(t, "mystery", StyleFor(breathing.Phase("mystery")).Label)
}

func TestEaseInOutBounds(t *testing.T) {
	assert.Equal(t, float32(0), easeInOut(0))
	assert.Equal(t, float32(0.5), easeInOut(0.5))
	assert.Equal(t, float32(1), easeInOut(1))
}
