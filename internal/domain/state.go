package domain

import (
	"sync"
	"sync/atomic"
)

// TransferState is the shared mutable state of one running session. It is
// built by the orchestrator and handed to every worker and the monitor;
// nothing here is ambient or global. The byte counter only grows, the active
// counter goes from N to 0 with exactly one decrement per worker, and the
// completion channel closes exactly once.
type TransferState struct {
	downloaded atomic.Int64
	active     atomic.Int32

	done     chan struct{}
	doneOnce sync.Once

	failErr  atomic.Pointer[error]
	failOnce sync.Once
}

func NewTransferState() *TransferState {
	return &TransferState{
		done: make(chan struct{}),
	}
}

// AddBytes records n more bytes written and flushed to segment storage.
func (st *TransferState) AddBytes(n int64) {
	st.downloaded.Add(n)
}

func (st *TransferState) Downloaded() int64 {
	return st.downloaded.Load()
}

// WorkerStarted registers a new active worker. Called before the worker
// goroutine is spawned so the monitor can never observe a zero count while
// spawning is still in progress.
func (st *TransferState) WorkerStarted() {
	st.active.Add(1)
}

// WorkerDone is the worker's single decrement, no matter how many attempts
// it retried internally.
func (st *TransferState) WorkerDone() {
	st.active.Add(-1)
}

func (st *TransferState) ActiveWorkers() int32 {
	return st.active.Load()
}

// SignalComplete fires the completion signal. Safe to call more than once;
// only the first call closes the channel.
func (st *TransferState) SignalComplete() {
	st.doneOnce.Do(func() {
		close(st.done)
	})
}

// Done returns the channel the orchestrator blocks on.
func (st *TransferState) Done() <-chan struct{} {
	return st.done
}

// Fail records a permanent per-segment failure. Only the first error is
// kept; workers still decrement normally so the session unblocks.
func (st *TransferState) Fail(err error) {
	st.failOnce.Do(func() {
		st.failErr.Store(&err)
	})
}

// Err returns the recorded permanent failure, if any.
func (st *TransferState) Err() error {
	if p := st.failErr.Load(); p != nil {
		return *p
	}
	return nil
}
