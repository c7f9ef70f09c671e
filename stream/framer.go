// Package stream implements the incremental record framing used by the chat
// backend's response stream.
//
// The wire format is line-oriented: within a record, a line starting with
// "event:" names the event and a line starting with "data:" carries the
// payload text; a blank line terminates the record. Records arrive over an
// HTTP response body in arbitrary chunks, so the framer carries partial
// lines and partial records across Feed calls.
package stream

import "strings"

// Record is one framed unit of the stream: an event name plus the payload
// text of the record's final data: line.
type Record struct {
	Event string
	Data  string
}

// Framer converts arbitrarily chunked response text into Records. The zero
// value is not usable; create one with NewFramer per stream.
type Framer struct {
	// carry holds the unterminated tail of the previous chunk.
	carry string

	// In-progress record state. Within a record the last event:/data: line
	// wins; multi-line data is not concatenated.
	event string
	data  string
}

func NewFramer() *Framer {
	return &Framer{}
}

// Feed consumes one chunk of response text and returns the records whose
// blank-line terminators arrived in this chunk, in order. Chunk boundaries
// may fall anywhere, including mid-line or inside a \r\n pair.
func (f *Framer) Feed(chunk string) []Record {
	buf := f.carry + chunk

	// A trailing \r may be the first half of a \r\n split across chunks;
	// hold it back until the next chunk resolves it.
	pendingCR := strings.HasSuffix(buf, "\r")
	if pendingCR {
		buf = buf[:len(buf)-1]
	}

	buf = strings.ReplaceAll(buf, "\r\n", "\n")
	buf = strings.ReplaceAll(buf, "\r", "\n")

	lines := strings.Split(buf, "\n")
	tail := lines[len(lines)-1]
	if pendingCR {
		tail += "\r"
	}
	f.carry = tail

	var records []Record
	for _, line := range lines[:len(lines)-1] {
		switch {
		case strings.HasPrefix(line, "event:"):
			f.event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			f.data = strings.TrimSpace(line[len("data:"):])
		case line == "":
			// A separator with no preceding event: line yields nothing.
			if f.event == "" {
				continue
			}
			records = append(records, Record{Event: f.event, Data: f.data})
			f.event = ""
			f.data = ""
		}
	}

	return records
}
