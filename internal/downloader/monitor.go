package downloader

import (
	"context"
	"time"

	"github.com/mbarden/gopull/internal/domain"
)

// monitor samples the aggregate byte counter at a fixed interval, reports
// instantaneous throughput, and fires the completion signal once the
// active-worker counter has dropped to zero. The check runs after the
// report so the last progress line reflects the final state.
func (s *Service) monitor(ctx context.Context, state *domain.TransferState, total int64) {
	ticker := time.NewTicker(s.cfg.Download.ProgressInterval())
	defer ticker.Stop()

	var prev int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := state.Downloaded()
			delta := cur - prev
			prev = cur

			s.renderProgress(cur, delta, total, state.ActiveWorkers())

			if state.ActiveWorkers() == 0 {
				state.SignalComplete()
				return
			}
		}
	}
}

func (s *Service) renderProgress(cur, delta, total int64, active int32) {
	interval := s.cfg.Download.ProgressInterval().Seconds()
	if interval <= 0 {
		interval = 1
	}
	speedKB := int64(float64(delta)/interval) >> 10

	if total > 0 {
		percent := float64(cur) / float64(total) * 100
		s.logger.Progress("Speed: %d KB/s | Downloaded: %d KB (%.2f%%) | Workers: %d    ",
			speedKB, cur>>10, percent, active)
		return
	}
	// Total size unknown (or zero): percentage would divide by zero.
	s.logger.Progress("Speed: %d KB/s | Downloaded: %d KB | Workers: %d    ",
		speedKB, cur>>10, active)
}
