package simulation

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartProgress_LogsUntilStopped(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	counter := &atomic.Int64{}
	counter.Store(50)

	stop := StartProgress(zap.New(core), 100, counter, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for logs.FilterMessage("progress").Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no progress entry logged")
		}
		time.Sleep(time.Millisecond)
	}
	stop()
	stop() // second call is a no-op

	entry := logs.FilterMessage("progress").All()[0]
	fields := entry.ContextMap()
	if fields["done"] != int64(50) {
		t.Errorf("expected done=50, got %v", fields["done"])
	}
	if fields["total"] != int64(100) {
		t.Errorf("expected total=100, got %v", fields["total"])
	}
	if fields["percent"] != 50.0 {
		t.Errorf("expected percent=50, got %v", fields["percent"])
	}
}
