// Package logutil provides logging utilities.
package logutil

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu      sync.Mutex
	out     io.Writer = io.Discard
	loggers []*log.Logger
	logFile *os.File
)

// GetLogger gets a logger with the given prefix. Loggers write nowhere until
// SetOutput or SetOutputFile is called.
func GetLogger(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	logger := log.New(out, prefix, log.LstdFlags)
	loggers = append(loggers, logger)
	return logger
}

// SetOutput redirects the output of all loggers obtained with GetLogger to
// the new io.Writer.
func SetOutput(newout io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = newout
	for _, logger := range loggers {
		logger.SetOutput(out)
	}
}

// SetOutputFile redirects the output of all loggers to the file at the given
// path, creating parent directories as needed. An empty path discards logs.
func SetOutputFile(path string) error {
	if path == "" {
		SetOutput(io.Discard)
		closeLogFile()
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	SetOutput(file)
	closeLogFile()
	mu.Lock()
	logFile = file
	mu.Unlock()
	return nil
}

// Close releases the log file opened by SetOutputFile, if any.
func Close() {
	SetOutput(io.Discard)
	closeLogFile()
}

func closeLogFile() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
