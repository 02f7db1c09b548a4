package downloader

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mbarden/gopull/internal/domain"
)

// probe asks the server for "everything from byte 0" and inspects the
// answer: a 206 means the server honors range semantics and the transfer
// can be split. Transport-level failures are retried until a response is
// obtained; the probe only gives up when the session context ends.
func (s *Service) probe(ctx context.Context, client *http.Client, url string) (domain.Capability, error) {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			// A request that cannot even be built (bad URL) will never
			// succeed, no matter how often we retry.
			return domain.Capability{}, fmt.Errorf("invalid request: %w", err)
		}
		req.Header.Set("Range", "bytes=0-")

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return domain.Capability{}, ctx.Err()
			}
			s.logger.Warn("Probe: retrying after connection problem: %v", err)
			continue
		}

		capability := domain.Capability{
			Size:          resp.ContentLength,
			AcceptsRanges: resp.StatusCode == http.StatusPartialContent,
		}
		resp.Body.Close()

		if capability.AcceptsRanges {
			s.logger.Info("Server supports resumable range downloads")
		} else {
			s.logger.Info("Server does not support range downloads, using a single connection")
		}
		return capability, nil
	}
}
