package downloader

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mbarden/gopull/internal/domain"
	"github.com/mbarden/gopull/internal/infra/config"
	"github.com/mbarden/gopull/internal/infra/logger"
)

const copyChunkSize = 32 * 1024

var bufferPool = sync.Pool{
	New: func() interface{} {
		return make([]byte, copyChunkSize)
	},
}

// Service is the transfer orchestrator: it probes the server, splits the
// file across segment workers, runs the progress monitor and merges the
// segment storage into the final artifact.
type Service struct {
	cfg    *config.Config
	logger *logger.Logger
	client *http.Client
	writer *FileWriter
	retry  RetryPolicy
}

func NewService(cfg *config.Config, log *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: log,
		client: newClient(cfg.Download.Timeout()),
		writer: NewFileWriter(),
		retry:  policyFromConfig(&cfg.Download),
	}
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: timeout,
			}).DialContext,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// httpClient returns the shared client unless the job carries its own
// per-request timeout.
func (s *Service) httpClient(job *domain.TransferJob) *http.Client {
	if job.Timeout <= 0 || job.Timeout == s.cfg.Download.Timeout() {
		return s.client
	}
	return newClient(job.Timeout)
}

// Download runs one transfer session from probe to merged artifact. Only
// merge failures, exhausted retry budgets and an interrupted wait surface as
// errors; per-attempt failures are retried inside the workers.
func (s *Service) Download(ctx context.Context, item *domain.QueueItem) error {
	job := item.Job
	defer s.writer.CloseAll()

	if dir := filepath.Dir(job.Dest); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}
	}

	start := time.Now()
	item.StartedAt = start

	client := s.httpClient(job)

	capability, err := s.probe(ctx, client, job.URL)
	if err != nil {
		return err
	}
	if capability.SizeKnown() {
		item.TotalBytes = capability.Size
	}

	workers := job.Workers
	if workers <= 0 {
		workers = s.cfg.Download.Workers
	}

	multi := capability.AcceptsRanges &&
		workers > 1 &&
		capability.SizeKnown() &&
		capability.Size >= s.cfg.Download.MinSplitSize

	var segments []domain.Segment
	if multi {
		segments = domain.Partition(capability.Size, workers)
	} else {
		segments = []domain.Segment{{Index: 0, Start: 0, End: capability.Size - 1}}
	}

	s.logger.Info("Starting download: %s (%d bytes, %d segment(s))",
		item.Name, capability.Size, len(segments))

	state := domain.NewTransferState()
	item.State = state

	for _, seg := range segments {
		state.WorkerStarted()
		go s.downloadSegment(ctx, client, job, seg, capability.SizeKnown(), state)
	}
	go s.monitor(ctx, state, capability.Size)

	select {
	case <-state.Done():
	case <-ctx.Done():
	}
	// The completion signal can also fire right as the context ends; a
	// cancelled session never merges.
	if ctx.Err() != nil {
		return fmt.Errorf("download aborted: %w", ctx.Err())
	}

	if err := state.Err(); err != nil {
		return err
	}

	if err := s.finalize(job.Dest, segments, multi); err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	elapsed := time.Since(start)
	item.BytesWritten = state.Downloaded()
	s.reportSummary(item.Name, item.BytesWritten, elapsed)
	return nil
}

func (s *Service) reportSummary(name string, bytes int64, elapsed time.Duration) {
	seconds := elapsed.Seconds()
	if seconds < 0.001 {
		seconds = 0.001
	}
	s.logger.Info("Finished %s: %.3f s, average speed %d KB/s",
		name, seconds, int64(float64(bytes)/seconds)>>10)
}

// segmentPath is the temporary storage path for one segment of dest.
func segmentPath(dest string, index int) string {
	return fmt.Sprintf("%s.%d.part", dest, index)
}
