package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/mbarden/gopull/internal/app"
	"github.com/mbarden/gopull/internal/domain"
	"github.com/mbarden/gopull/internal/infra/logger"
	"github.com/segmentio/ksuid"
)

// QueueManager serializes queued transfers: one download session runs at a
// time, status transitions are persisted through the store, and a queued or
// running item can be cancelled by ID.
type QueueManager struct {
	mu         sync.RWMutex
	downloader app.Downloader
	store      app.Store
	logger     *logger.Logger
	queue      []*domain.QueueItem
	activeItem *domain.QueueItem

	newJobChan chan struct{}
}

// NewQueueManager initializes a QueueManager.
// If loadExisting is true, pending items are loaded from the database;
// CLI mode passes false to skip the lookup.
func NewQueueManager(appCtx *app.Context, loadExisting bool) *QueueManager {
	var active []*domain.QueueItem
	var err error

	if loadExisting {
		// Only get "active" queue items (not completed / failed)
		active, err = appCtx.Store.GetActiveQueueItems()
		if err != nil {
			active = make([]*domain.QueueItem, 0)
		}
	}

	return &QueueManager{
		downloader: appCtx.Downloader,
		store:      appCtx.Store,
		logger:     appCtx.Logger,
		queue:      active,
		newJobChan: make(chan struct{}, 1),
	}
}

// Add creates a new domain.QueueItem and notifies the processing loop.
func (m *QueueManager) Add(job *domain.TransferJob, name string) (*domain.QueueItem, error) {
	item := &domain.QueueItem{
		ID:     ksuid.New().String(),
		Name:   name,
		Job:    job,
		Status: domain.StatusPending,
	}

	if err := m.store.SaveQueueItem(item); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.queue = append(m.queue, item)
	m.mu.Unlock()

	// Signal the Start() loop that there is work to do
	select {
	case m.newJobChan <- struct{}{}:
	default:
		// Signal already pending, no need to block
	}

	return item, nil
}

func (m *QueueManager) Start(ctx context.Context) {
	for {
		var next *domain.QueueItem

		m.mu.RLock()
		for _, itm := range m.queue {
			if itm.Status == domain.StatusDownloading {
				// A "downloading" item survived a restart; segment storage
				// is transient, so the transfer simply starts over.
				itm.Status = domain.StatusPending
				next = itm
				break
			}

			if itm.Status == domain.StatusPending {
				next = itm
				break
			}
		}
		m.mu.RUnlock()

		if next == nil {
			select {
			case <-m.newJobChan:
				continue
			case <-ctx.Done():
				return
			}
		}

		m.mu.Lock()
		m.activeItem = next
		jobCtx, cancel := context.WithCancel(ctx)
		next.CancelFunc = cancel
		m.mu.Unlock()

		m.updateStatus(next, domain.StatusDownloading)
		jobErr := m.downloader.Download(jobCtx, next)

		m.finalizeJob(next, jobErr)
		cancel()

		if ctx.Err() != nil {
			return
		}
	}
}

// GetActiveItem allows the UI to see what's currently running
func (m *QueueManager) GetActiveItem() *domain.QueueItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeItem
}

// GetItem searches the queue for a specific ID.
// Returns the item and 'true' if found, nil and 'false' otherwise.
func (m *QueueManager) GetItem(id string) (*domain.QueueItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Get from live cache
	for _, item := range m.queue {
		if item.ID == id {
			return item, true
		}
	}

	// Get from DB as a fallback
	item, err := m.store.GetQueueItem(id)
	if err == nil && item != nil {
		return item, true
	}

	return nil, false
}

// GetAllItems returns a copy of the current queue slice.
func (m *QueueManager) GetAllItems() []*domain.QueueItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent the caller from modifying the internal slice
	items := make([]*domain.QueueItem, len(m.queue))
	copy(items, m.queue)
	return items
}

func (m *QueueManager) Cancel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.queue {
		if item.ID == id {
			if item.Status == domain.StatusCompleted || item.Status == domain.StatusFailed {
				return false
			}

			if item.CancelFunc != nil {
				item.CancelFunc()
			}

			return true
		}
	}
	return false
}

// updateStatus changes the status and saves to DB immediately
func (m *QueueManager) updateStatus(item *domain.QueueItem, status domain.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.Status = status
	_ = m.store.SaveQueueItem(item)
}

func (m *QueueManager) finalizeJob(item *domain.QueueItem, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		item.Status = domain.StatusFailed
		if errors.Is(err, context.Canceled) {
			item.Error = "Cancelled by user"
		} else {
			item.Error = err.Error()
		}
		m.logger.Error("Transfer %s failed: %v", item.ID, err)
	} else {
		item.Status = domain.StatusCompleted
	}
	item.BytesWritten = item.Downloaded()

	// Persist the final outcome
	_ = m.store.SaveQueueItem(item)

	m.activeItem = nil
	m.removeFromLiveQueue(item.ID)
}

// removeFromLiveQueue keeps the active slice small by removing finished items
func (m *QueueManager) removeFromLiveQueue(id string) {
	for i, itm := range m.queue {
		if itm.ID == id {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			break
		}
	}
}
