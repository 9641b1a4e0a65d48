package server

import (
	"context"
	"fmt"
	"io"
	"iter"
	"time"
	"unicode/utf16"

	"github.com/mikeboe/research-stream/pkg/research"
)

// EventType is the "type" field of a streamed event.
type EventType string

const (
	EventLog    EventType = "log"
	EventReport EventType = "report"
	// EventDone terminates the stream and is sent as the literal [DONE].
	EventDone EventType = "done"
)

// DefaultPacing is the pause between consecutive log events of one stage.
const DefaultPacing = 100 * time.Millisecond

// Event is a single unit of the outbound stream.
type Event struct {
	Type    EventType `json:"type"`
	Content string    `json:"content"`
}

var doneFrame = []byte("data: [DONE]\n\n")

// Encode returns the SSE frame for e. Existing clients expect the payload with
// ", " and ": " separators and every non-ASCII rune escaped as \uXXXX.
func (e Event) Encode() []byte {
	if e.Type == EventDone {
		return doneFrame
	}
	buf := make([]byte, 0, len(e.Content)+48)
	buf = append(buf, `data: {"type": `...)
	buf = appendASCIIString(buf, string(e.Type))
	buf = append(buf, `, "content": `...)
	buf = appendASCIIString(buf, e.Content)
	buf = append(buf, "}\n\n"...)
	return buf
}

// WriteEvent writes the SSE frame for ev to w.
func WriteEvent(w io.Writer, ev Event) error {
	_, err := w.Write(ev.Encode())
	return err
}

// Events turns pipeline outputs into transport events: one log event per log
// line, a report event when the stage produced a non-empty report, and a
// single done event once the outputs are exhausted. A pipeline error becomes
// a "System Error" log event followed by done.
func Events(ctx context.Context, outputs iter.Seq2[research.NodeOutput, error], pacing time.Duration) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for out, err := range outputs {
			if err != nil {
				if !yield(Event{Type: EventLog, Content: fmt.Sprintf("System Error: %s", err)}) {
					return
				}
				break
			}

			for i, line := range out.Update.Logs {
				if i > 0 && !pause(ctx, pacing) {
					return
				}
				if !yield(Event{Type: EventLog, Content: line}) {
					return
				}
			}

			if out.Update.HasReport() {
				if !yield(Event{Type: EventReport, Content: *out.Update.FinalReport}) {
					return
				}
			}
		}

		// nobody is listening any more
		if ctx.Err() != nil {
			return
		}
		yield(Event{Type: EventDone})
	}
}

func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func appendASCIIString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, `\"`...)
		case '\\':
			buf = append(buf, `\\`...)
		case '\n':
			buf = append(buf, `\n`...)
		case '\r':
			buf = append(buf, `\r`...)
		case '\t':
			buf = append(buf, `\t`...)
		case '\b':
			buf = append(buf, `\b`...)
		case '\f':
			buf = append(buf, `\f`...)
		default:
			switch {
			case r >= 0x20 && r < 0x7f:
				buf = append(buf, byte(r))
			case r < 0x10000:
				buf = fmt.Appendf(buf, `\u%04x`, r)
			default:
				hi, lo := utf16.EncodeRune(r)
				buf = fmt.Appendf(buf, `\u%04x\u%04x`, hi, lo)
			}
		}
	}
	return append(buf, '"')
}
