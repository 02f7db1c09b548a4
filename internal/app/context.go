package app

import (
	"context"

	"github.com/mbarden/gopull/internal/domain"
	"github.com/mbarden/gopull/internal/infra/config"
	"github.com/mbarden/gopull/internal/infra/logger"
)

type Downloader interface {
	// This allows the engine to run transfers without importing the
	// downloader package.
	Download(ctx context.Context, item *domain.QueueItem) error
}

type Store interface {
	SaveQueueItem(item *domain.QueueItem) error
	GetQueueItem(id string) (*domain.QueueItem, error)
	GetQueueItems() ([]*domain.QueueItem, error)
	GetActiveQueueItems() ([]*domain.QueueItem, error)
	Close() error
}

type Queue interface {
	// This allows the API controllers to drive the queue without importing
	// the engine package.
	Add(job *domain.TransferJob, name string) (*domain.QueueItem, error)
	GetAllItems() []*domain.QueueItem
	GetItem(id string) (*domain.QueueItem, bool)
	Cancel(id string) bool
}

// Context holds the core environment and shared resources for gopull.
// It acts as the "Single Source of Truth" for the application state.
type Context struct {
	Config *config.Config
	Logger *logger.Logger

	// High-level interfaces for services to use
	Store      Store
	Downloader Downloader
	Queue      Queue
}

// NewContext initializes the base environment.
func NewContext(cfg *config.Config, log *logger.Logger) *Context {
	return &Context{
		Config: cfg,
		Logger: log,
	}
}
