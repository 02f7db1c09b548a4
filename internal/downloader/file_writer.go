package downloader

import (
	"fmt"
	"os"
	"sync"
)

// FileWriter keeps the open segment storage handles for one session. Each
// path has exactly one writing worker; sinks are append-only and created on
// first use, so a retried attempt naturally continues after whatever a
// prior attempt already flushed.
type FileWriter struct {
	mu    sync.Mutex
	files map[string]*os.File
}

func NewFileWriter() *FileWriter {
	return &FileWriter{
		files: make(map[string]*os.File),
	}
}

// Append writes data to the end of the sink at path, opening it first if
// this is the segment's first successful write.
func (fw *FileWriter) Append(path string, data []byte) error {
	f, err := fw.getOrCreateFile(path)
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	return err
}

// Touch ensures the sink exists without writing anything. Needed for
// zero-length segments so the merger finds a file to consume.
func (fw *FileWriter) Touch(path string) error {
	_, err := fw.getOrCreateFile(path)
	return err
}

func (fw *FileWriter) getOrCreateFile(path string) (*os.File, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	f, ok := fw.files[path]
	if ok {
		return f, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open segment file: %w", err)
	}
	fw.files[path] = f
	return f, nil
}

func (fw *FileWriter) CloseAll() {
	fw.mu.Lock()
	// Iterate over keys because CloseFile modifies the map.
	paths := make([]string, 0, len(fw.files))
	for path := range fw.files {
		paths = append(paths, path)
	}
	fw.mu.Unlock()

	for _, path := range paths {
		_ = fw.CloseFile(path) // Ignore error on global cleanup
	}
}

func (fw *FileWriter) CloseFile(path string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	f, ok := fw.files[path]
	if !ok {
		return nil // Already closed or never opened
	}

	f.Sync()
	err := f.Close()

	delete(fw.files, path)

	return err
}
