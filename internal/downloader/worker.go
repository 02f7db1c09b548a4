package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mbarden/gopull/internal/domain"
)

// downloadSegment owns exactly one segment: it re-attempts the remaining
// byte span until it is fully on disk, then decrements the active-worker
// counter exactly once. sized is false only for servers that did not report
// a content length, in which case the lone segment streams until EOF.
func (s *Service) downloadSegment(ctx context.Context, client *http.Client, job *domain.TransferJob, seg domain.Segment, sized bool, state *domain.TransferState) {
	defer state.WorkerDone()

	path := segmentPath(job.Dest, seg.Index)
	cur := seg.Start

	attempt := 0
	for {
		err := s.runAttempt(ctx, client, job.URL, seg, sized, &cur, path, state)
		if err == nil {
			s.logger.Info("Downloaded segment %d", seg.Index+1)
			return
		}
		if ctx.Err() != nil {
			return
		}

		attempt++
		s.logger.Warn("Segment %d: attempt %d failed: %v", seg.Index+1, attempt, err)

		if !s.retry.Allow(attempt) {
			state.Fail(fmt.Errorf("%w: segment %d gave up after %d attempts: %v",
				domain.ErrSegmentFailed, seg.Index+1, attempt, err))
			return
		}
		if err := s.retry.Wait(ctx, attempt); err != nil {
			return
		}
	}
}

// runAttempt requests the still-missing suffix [*cur, seg.End] and streams
// it into the segment storage, advancing *cur and the aggregate counter as
// each chunk lands on disk. Bytes flushed by an earlier attempt are never
// re-requested.
func (s *Service) runAttempt(ctx context.Context, client *http.Client, url string, seg domain.Segment, sized bool, cur *int64, path string, state *domain.TransferState) error {
	if sized && *cur > seg.End {
		// Zero bytes left (empty file or a fully delivered prior attempt);
		// the merger still needs the storage to exist.
		return s.writer.Touch(path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if sized {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", *cur, seg.End))
	} else {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", *cur))
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if sized {
		want := seg.End - *cur + 1
		if resp.ContentLength != want {
			return fmt.Errorf("%w: declared %d, requested %d",
				domain.ErrRangeMismatch, resp.ContentLength, want)
		}
	}

	buf := bufferPool.Get().([]byte)
	defer bufferPool.Put(buf)

	for !sized || *cur <= seg.End {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if werr := s.writer.Append(path, buf[:n]); werr != nil {
				return werr
			}
			*cur += int64(n)
			state.AddBytes(int64(n))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}

	if sized && *cur <= seg.End {
		return domain.ErrShortBody
	}
	return nil
}
