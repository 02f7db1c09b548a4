package downloader

import (
	"context"
	"testing"
	"time"

	"github.com/mbarden/gopull/internal/domain"
)

func TestMonitorSignalsCompletionAfterLastWorker(t *testing.T) {
	svc := newTestService(t, nil)
	state := domain.NewTransferState()
	state.WorkerStarted()
	state.WorkerStarted()

	go svc.monitor(context.Background(), state, 1000)

	// Completion must not fire while workers are active.
	select {
	case <-state.Done():
		t.Fatal("completion signal fired with active workers")
	case <-time.After(50 * time.Millisecond):
	}

	state.AddBytes(500)
	state.WorkerDone()
	state.AddBytes(500)
	state.WorkerDone()

	select {
	case <-state.Done():
	case <-time.After(time.Second):
		t.Fatal("completion signal never fired after workers finished")
	}
}

func TestMonitorStopsOnContextCancel(t *testing.T) {
	svc := newTestService(t, nil)
	state := domain.NewTransferState()
	state.WorkerStarted()

	ctx, cancel := context.WithCancel(context.Background())
	go svc.monitor(ctx, state, 1000)
	cancel()

	// The worker never finishes; a cancelled monitor must not signal.
	select {
	case <-state.Done():
		t.Fatal("completion signal fired after cancellation")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRenderProgressGuardsUnknownTotal(t *testing.T) {
	svc := newTestService(t, nil)

	// Must not divide by zero for unknown (-1) or empty (0) totals.
	svc.renderProgress(1234, 100, 0, 2)
	svc.renderProgress(1234, 100, -1, 2)
	svc.renderProgress(1234, 100, 4096, 2)
}
