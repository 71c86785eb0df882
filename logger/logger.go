// Package logger configures the process-wide github.com/rs/zerolog logger.
// Grounded on sidedotdev-sidekick/logger/logger.go: a package-level logger,
// level from an environment variable, an async writer so log calls never
// block the caller, and a daily-rotating file under the XDG state
// directory.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	envLevel = "VEX_LOG_LEVEL"

	logFilePrefix   = "vex-"
	logFileSuffix   = ".log"
	maxLogFileCount = 7
)

// Init configures the package-level zerolog logger for the rest of the
// process. withFile routes output to a daily-rotating file under the XDG
// state dir instead of stderr — the cli package sets this when no --prompt
// is given, i.e. when the tui frontend owns the terminal, so log lines
// don't corrupt the rendered screen.
func Init(withFile bool) {
	level := LevelFromEnv()

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if withFile {
		if dir, err := StateDir(); err == nil {
			if fw, err := newDailyRotatingLogWriter(dir); err == nil {
				output = fw
			}
		}
	}

	log.Logger = zerolog.New(newAsyncWriter(output, 1024)).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// LevelFromEnv reads VEX_LOG_LEVEL (a zerolog level name: trace, debug,
// info, warn, error) and defaults to info when unset or unparseable.
func LevelFromEnv() zerolog.Level {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(envLevel)))
	if raw == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// StateDir returns (creating if needed) the XDG state directory vex writes
// its log files to.
func StateDir() (string, error) {
	dir := filepath.Join(xdg.StateHome, "vex")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create vex state directory: %w", err)
	}
	return dir, nil
}

// asyncWriter performs writes in a background goroutine so a log call never
// blocks the caller on I/O.
type asyncWriter struct {
	ch     chan []byte
	writer io.Writer
}

func newAsyncWriter(w io.Writer, bufSize int) *asyncWriter {
	aw := &asyncWriter{ch: make(chan []byte, bufSize), writer: w}
	go aw.drain()
	return aw
}

func (aw *asyncWriter) drain() {
	for p := range aw.ch {
		aw.writer.Write(p) //nolint:errcheck
	}
}

func (aw *asyncWriter) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	select {
	case aw.ch <- buf:
	default:
		// drop the line rather than block the caller when the buffer is full.
	}
	return len(p), nil
}

type dailyRotatingLogWriter struct {
	mu          sync.Mutex
	stateDir    string
	currentDate string
	file        *os.File
}

func newDailyRotatingLogWriter(stateDir string) (*dailyRotatingLogWriter, error) {
	w := &dailyRotatingLogWriter{stateDir: stateDir}
	if err := w.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *dailyRotatingLogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rotateIfNeeded(); err != nil {
		return 0, err
	}
	return w.file.Write(p)
}

func (w *dailyRotatingLogWriter) rotateIfNeeded() error {
	today := time.Now().Format("2006-01-02")
	if w.currentDate == today && w.file != nil {
		return nil
	}
	if w.file != nil {
		w.file.Close()
	}

	name := logFilePrefix + today + logFileSuffix
	file, err := os.OpenFile(filepath.Join(w.stateDir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	w.file = file
	w.currentDate = today
	cleanupOldLogFiles(w.stateDir)
	return nil
}

func cleanupOldLogFiles(stateDir string) {
	entries, err := os.ReadDir(stateDir)
	if err != nil {
		return
	}

	var logFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, logFilePrefix) && strings.HasSuffix(name, logFileSuffix) {
			logFiles = append(logFiles, name)
		}
	}
	if len(logFiles) <= maxLogFileCount {
		return
	}

	sort.Strings(logFiles)
	for i := 0; i < len(logFiles)-maxLogFileCount; i++ {
		os.Remove(filepath.Join(stateDir, logFiles[i]))
	}
}
