package socket

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingTicker struct {
	ticks atomic.Int64
}

func (c *countingTicker) Tick() error {
	c.ticks.Add(1)
	return nil
}

func TestPumpDrivesTicks(t *testing.T) {
	ticker := &countingTicker{}
	pump := NewPump(ticker, time.Millisecond, zaptest.NewLogger(t))

	pump.Start()
	require.Eventually(t, func() bool { return ticker.ticks.Load() >= 5 }, time.Second, time.Millisecond)
	pump.Stop()

	settled := ticker.ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, ticker.ticks.Load(), "pump kept ticking after Stop")
}

func TestPumpStartStopIdempotent(t *testing.T) {
	ticker := &countingTicker{}
	pump := NewPump(ticker, time.Millisecond, zaptest.NewLogger(t))

	pump.Start()
	pump.Start()
	pump.Stop()
	pump.Stop()

	// Restart works after a stop.
	pump.Start()
	require.Eventually(t, func() bool { return ticker.ticks.Load() > 0 }, time.Second, time.Millisecond)
	pump.Stop()
}
