// Package stream implements the Stream Frame Parser (C1): it consumes raw
// byte chunks from one HTTP stream and yields ordered, unified
// chat.StreamEvent values regardless of whether the upstream speaks the
// Anthropic messages wire protocol or the OpenAI chat-completions wire
// protocol.
//
// Framing and the two-protocol decode/fallback strategy are grounded on
// the bufio.Scanner-based SSE line splitting in
// 111bedcb_thushan-olla__internal-adapter-translator-anthropic-streaming.go.go
// and the content-block modeling in
// 486f9108_schmitthub-clawker__internal-cmd-loop-shared-stream.go.go.
package stream

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"vex/chat"
)

// maxBufferedBytes is the buffer-overflow threshold (spec.md §4.1): if more
// than this many bytes accumulate without a complete frame, the stream
// fails. Sized the same as the scanner buffer in the grounding file above,
// which exists for the same reason (a single tool-argument delta can be
// large).
const maxBufferedBytes = 1 << 20 // 1 MiB

// ErrBufferOverflow is returned by Process when the accumulated,
// still-incomplete frame exceeds maxBufferedBytes.
var ErrBufferOverflow = fmt.Errorf("stream: frame exceeded %d bytes without a terminator", maxBufferedBytes)

// Parser is a stateful SSE-frame parser. It is not safe for concurrent use;
// the turn engine drains one HTTP stream through one Parser at a time.
type Parser struct {
	buf   []byte
	openai openaiState
}

// NewParser returns a fresh Parser with an empty buffer.
func NewParser() *Parser {
	return &Parser{openai: newOpenaiState()}
}

// Process appends chunk to the internal buffer, extracts as many complete
// SSE frames as are available, and returns the ordered StreamEvents they
// decode to. It is stateful across calls.
func (p *Parser) Process(chunk []byte) ([]chat.StreamEvent, error) {
	p.buf = append(p.buf, chunk...)

	var events []chat.StreamEvent
	for {
		frame, rest, ok := splitNextFrame(p.buf)
		if !ok {
			if len(p.buf) > maxBufferedBytes {
				return events, ErrBufferOverflow
			}
			break
		}
		p.buf = rest

		evs, done, err := p.decodeFrame(frame)
		if err != nil {
			// FrameParse errors are logged and non-fatal (spec.md §7): the
			// frame is dropped, the stream continues.
			log.Trace().Err(err).Str("frame", frame).Msg("stream: dropping unparsable SSE frame")
			continue
		}
		events = append(events, evs...)
		if done {
			events = append(events, p.openai.closeAllOpenToolBlocks()...)
		}
	}
	return events, nil
}

// splitNextFrame extracts the next "\n\n"- or "\r\n\r\n"-delimited frame
// from buf, returning (frame, remainder, true) if one is complete, or
// ("", buf, false) if more data is needed.
func splitNextFrame(buf []byte) (string, []byte, bool) {
	idxLF := bytes.Index(buf, []byte("\n\n"))
	idxCRLF := bytes.Index(buf, []byte("\r\n\r\n"))

	switch {
	case idxLF < 0 && idxCRLF < 0:
		return "", buf, false
	case idxCRLF >= 0 && (idxLF < 0 || idxCRLF <= idxLF):
		return string(buf[:idxCRLF]), buf[idxCRLF+4:], true
	default:
		return string(buf[:idxLF]), buf[idxLF+2:], true
	}
}

// decodeFrame parses one SSE frame's `event:`/`data:` lines and decodes the
// payload into zero or more unified StreamEvents. done is true when the
// frame carried the OpenAI `[DONE]` sentinel.
func (p *Parser) decodeFrame(frame string) (events []chat.StreamEvent, done bool, err error) {
	var eventType string
	var dataLines []string

	for _, rawLine := range strings.Split(frame, "\n") {
		line := strings.TrimSuffix(rawLine, "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ":"):
			continue
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if len(dataLines) == 0 {
		return nil, false, nil
	}
	data := strings.Join(dataLines, "\n")

	if data == "[DONE]" {
		return nil, true, nil
	}

	if evs, ok := decodeAnthropicFrame(eventType, data); ok {
		return evs, false, nil
	}

	evs, err := p.openai.decodeChunk(data)
	if err != nil {
		return nil, false, err
	}
	return evs, false, nil
}
