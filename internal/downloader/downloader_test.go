package downloader

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/mbarden/gopull/internal/domain"
	"github.com/mbarden/gopull/internal/infra/config"
	"github.com/mbarden/gopull/internal/infra/logger"
	"github.com/segmentio/ksuid"
)

func newTestService(t *testing.T, mutate func(*config.DownloadConfig)) *Service {
	t.Helper()

	cfg := &config.Config{
		Download: config.DownloadConfig{
			Workers:            4,
			TimeoutSeconds:     5,
			MinSplitSize:       1,
			ProgressIntervalMS: 10,
			RetryMaxDelayMS:    100,
		},
	}
	if mutate != nil {
		mutate(&cfg.Download)
	}

	log, err := logger.New("", logger.LevelError, false)
	if err != nil {
		t.Fatal(err)
	}
	return NewService(cfg, log)
}

func newTestItem(url, dest string, workers int) *domain.QueueItem {
	return &domain.QueueItem{
		ID:     ksuid.New().String(),
		Name:   domain.DeriveName(url),
		Status: domain.StatusPending,
		Job: &domain.TransferJob{
			URL:     url,
			Dest:    dest,
			Workers: workers,
		},
	}
}

// testContent builds a deterministic byte pattern so merge mistakes show up
// as content differences, not just size differences.
func testContent(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*31 + 7)
	}
	return b
}

func parseRangeHeader(h string, total int64) (start, end int64, ok bool) {
	h = strings.TrimPrefix(h, "bytes=")
	parts := strings.SplitN(h, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	end = total - 1
	if parts[1] != "" {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, false
		}
	}
	return start, end, true
}

// serveRange is a handler honoring byte-range requests the way a well
// behaved static file server does.
func serveRange(content []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := parseRangeHeader(r.Header.Get("Range"), int64(len(content)))
		if !ok || r.Header.Get("Range") == "" {
			w.Header().Set("Content-Length", strconv.Itoa(len(content)))
			w.WriteHeader(http.StatusOK)
			w.Write(content)
			return
		}

		body := content[start : end+1]
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(content)))
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(body)
	}
}

// serveFull ignores range semantics entirely: always a 200 with the whole
// payload, like servers without partial-content support.
func serveFull(content []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.WriteHeader(http.StatusOK)
		w.Write(content)
	}
}
