package downloader

import (
	"fmt"
	"io"
	"os"

	"github.com/mbarden/gopull/internal/domain"
)

// finalize turns the segment storage into the final artifact. Multi-segment
// runs concatenate the parts in index order; a single-segment run just
// renames its lone part over the destination. Any I/O error here is fatal
// for the session.
func (s *Service) finalize(dest string, segments []domain.Segment, multi bool) error {
	// Release our handles so the files can be read, renamed and removed.
	for _, seg := range segments {
		path := segmentPath(dest, seg.Index)
		if err := s.writer.CloseFile(path); err != nil {
			s.logger.Warn("Failed to close %s: %v", path, err)
		}
	}

	if !multi {
		return os.Rename(segmentPath(dest, 0), dest)
	}
	return s.merge(dest, segments)
}

func (s *Service) merge(dest string, segments []domain.Segment) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	for _, seg := range segments {
		if err := s.appendAndCleanup(segmentPath(dest, seg.Index), out); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) appendAndCleanup(srcPath string, dst io.Writer) error {
	src, err := os.Open(srcPath)
	if err != nil {
		// If a segment is missing, the whole artifact is unusable.
		return fmt.Errorf("missing segment file %s: %w", srcPath, err)
	}

	_, err = io.Copy(dst, src)
	src.Close() // Close before removing

	if err != nil {
		return err
	}

	// Drop the temp segment immediately to free space.
	return os.Remove(srcPath)
}
