package socket

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ticker is anything pumped by a Pump. *Socket satisfies it.
type Ticker interface {
	Tick() error
}

// Pump drives a Ticker at a fixed interval from its own goroutine. Programs
// with their own main loop can skip the Pump and call Tick directly.
type Pump struct {
	ticker   Ticker
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewPump builds a pump. The interval is how often Tick runs; 16ms gives
// frame-rate dispatch latency.
//
// Precondition: interval must be positive.
func NewPump(ticker Ticker, interval time.Duration, logger *zap.Logger) *Pump {
	return &Pump{
		ticker:   ticker,
		interval: interval,
		logger:   logger.Named("pump"),
	}
}

// Start launches the pump goroutine. Starting a running pump is a no-op.
func (p *Pump) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stop, p.done)
	p.logger.Debug("started", zap.Duration("interval", p.interval))
}

func (p *Pump) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := p.ticker.Tick(); err != nil {
				p.logger.Error("tick failed", zap.Error(err))
			}
		}
	}
}

// Stop halts the pump and waits for the goroutine to exit. Stopping a
// stopped pump is a no-op.
func (p *Pump) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	stop, done := p.stop, p.done
	p.mu.Unlock()

	close(stop)
	<-done
	p.logger.Debug("stopped")
}
