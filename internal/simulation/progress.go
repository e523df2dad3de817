package simulation

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StartProgress logs completed/total trials, throughput and ETA every interval
// until the returned stop function is called.
func StartProgress(logger *zap.Logger, total int64, counter *atomic.Int64, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Second
	}
	start := time.Now()
	tk := time.NewTicker(interval)
	quit := make(chan struct{})

	go func() {
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				done := counter.Load()
				elapsed := time.Since(start).Seconds()
				speed := float64(done) / (elapsed + 1e-9)
				eta := float64(total-done) / (speed + 1e-9)
				logger.Info("progress",
					zap.Int64("done", done),
					zap.Int64("total", total),
					zap.Float64("percent", 100*float64(done)/float64(total)),
					zap.Float64("trials_per_sec", speed),
					zap.Float64("eta_sec", eta),
				)
			case <-quit:
				return
			}
		}
	}()

	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			close(quit)
		}
	}
}
