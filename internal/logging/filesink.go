package logging

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileSink is a size-rotated JSON log file.
type FileSink struct {
	mu   sync.Mutex
	file *lumberjack.Logger
}

// NewFileSink opens (lazily) a rotating log file at path, creating its directory.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	return &FileSink{
		file: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		},
	}, nil
}

// Write implements io.Writer for zerolog.
func (s *FileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Write(p)
}

// Filename returns the path of the active log file.
func (s *FileSink) Filename() string {
	return s.file.Filename
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
