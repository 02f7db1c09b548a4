package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
)

// TestSegmentRetryConvergence drops the connection halfway through the
// first K segment attempts. The worker must converge by re-requesting only
// the remaining suffix, ending with the exact byte range on disk.
func TestSegmentRetryConvergence(t *testing.T) {
	content := testContent(64 << 10)
	const failures = 3

	var segmentRequests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := parseRangeHeader(r.Header.Get("Range"), int64(len(content)))
		if !ok {
			t.Errorf("missing range header in %q", r.Header.Get("Range"))
			return
		}

		// Sized segment requests always carry an explicit end offset; only
		// the probe asks for "bytes=0-".
		probe := r.Header.Get("Range") == "bytes=0-"
		body := content[start : end+1]
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusPartialContent)

		if probe {
			w.Write(body)
			return
		}

		if segmentRequests.Add(1) <= failures && len(body) > 1 {
			// Declared the full length, deliver only half: the client sees
			// an unexpected EOF mid-body.
			w.Write(body[:len(body)/2])
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "converge.bin")
	svc := newTestService(t, nil)
	item := newTestItem(srv.URL, dest, 1)

	if err := svc.Download(context.Background(), item); err != nil {
		t.Fatalf("Download: %v", err)
	}

	assertArtifact(t, dest, content)

	if got := segmentRequests.Load(); got != failures+1 {
		t.Fatalf("segment attempts = %d, want %d", got, failures+1)
	}
	if got := item.State.Downloaded(); got != int64(len(content)) {
		t.Fatalf("aggregate counter = %d, want %d (duplicate or missing bytes)", got, len(content))
	}
}

// TestSegmentContentLengthMismatchRetried covers the range-inconsistency
// path: a response declaring the wrong length fails the attempt before any
// byte is consumed, and the next attempt starts from the same offset.
func TestSegmentContentLengthMismatchRetried(t *testing.T) {
	content := testContent(32 << 10)

	var segmentRequests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, end, _ := parseRangeHeader(r.Header.Get("Range"), int64(len(content)))
		body := content[start : end+1]

		if r.Header.Get("Range") != "bytes=0-" && segmentRequests.Add(1) == 1 {
			// Lie about the length; the worker must reject this attempt
			// without touching its storage.
			w.Header().Set("Content-Length", strconv.Itoa(len(body)+9))
			w.WriteHeader(http.StatusPartialContent)
			w.Write(body)
			return
		}

		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(body)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "mismatch.bin")
	svc := newTestService(t, nil)
	item := newTestItem(srv.URL, dest, 1)

	if err := svc.Download(context.Background(), item); err != nil {
		t.Fatalf("Download: %v", err)
	}

	assertArtifact(t, dest, content)

	if got := segmentRequests.Load(); got != 2 {
		t.Fatalf("segment attempts = %d, want 2", got)
	}
}
