package engine

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"vex/logger"
)

// payloadLogger writes outbound request bodies and raw stream chunks to a
// dedicated file when Options.DebugPayload is set. Each entry is written
// synchronously through a zerolog logger on the opened file, so it is in the
// file as soon as the logging call returns; unlike logger.go's async writer,
// the I/O happens on the caller's goroutine.
//
// A nil *payloadLogger is valid and every method on it is a no-op, so
// callers never need to check Opts.DebugPayload themselves.
type payloadLogger struct {
	log zerolog.Logger
}

// newPayloadLogger opens path for append (falling back to
// <state dir>/api-debug.log when path is empty) and returns a logger
// writing to it, or nil if the file can't be opened.
func newPayloadLogger(path string) *payloadLogger {
	if path == "" {
		dir, err := logger.StateDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(dir, "api-debug.log")
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return &payloadLogger{log: zerolog.New(f).With().Timestamp().Logger()}
}

// logRequest records one outbound request body before it's sent.
func (p *payloadLogger) logRequest(endpoint string, body []byte) {
	if p == nil {
		return
	}
	p.log.Debug().Str("endpoint", endpoint).RawJSON("body", body).Msg("request")
}

// logFrame records one raw chunk read off the response body, before it's
// handed to the stream parser.
func (p *payloadLogger) logFrame(chunk []byte) {
	if p == nil {
		return
	}
	p.log.Debug().Str("chunk", string(chunk)).Msg("frame")
}
