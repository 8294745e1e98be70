// Package logging configures logrus for the CLI, the TUI and the server.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// New returns a logger writing text records to out at level.
func New(level string, out io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return logger, nil
}

// NewJSON returns a logger writing JSON records, used by the server.
func NewJSON(level string, out io.Writer) (*log.Logger, error) {
	logger, err := New(level, out)
	if err != nil {
		return nil, err
	}
	logger.SetFormatter(&log.JSONFormatter{})
	return logger, nil
}

// NewFile returns a logger appending to path. The TUI uses it so the
// alternate screen is never written to.
func NewFile(level, path string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger, err := New(level, f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}
