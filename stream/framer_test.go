package stream

import (
	"reflect"
	"testing"
)

func feedAll(f *Framer, chunks []string) []Record {
	var records []Record
	for _, chunk := range chunks {
		records = append(records, f.Feed(chunk)...)
	}
	return records
}

func TestFramerSingleChunk(t *testing.T) {
	input := "event: agent_start\ndata: {\"agent\":\"interface\"}\n\n" +
		"event: token\ndata: {\"text\":\"Hello\"}\n\n" +
		"event: done\ndata: {}\n\n"

	got := NewFramer().Feed(input)
	want := []Record{
		{Event: "agent_start", Data: `{"agent":"interface"}`},
		{Event: "token", Data: `{"text":"Hello"}`},
		{Event: "done", Data: "{}"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("records mismatch:\ngot  %v\nwant %v", got, want)
	}
}

func TestFramerChunkBoundaryInvariance(t *testing.T) {
	streams := map[string]string{
		"lf":       "event: token\ndata: {\"text\":\"A\"}\n\nevent: token\ndata: {\"text\":\"B\"}\n\n",
		"crlf":     "event: token\r\ndata: {\"text\":\"A\"}\r\n\r\nevent: done\r\n\r\n",
		"cr":       "event: token\rdata: {\"text\":\"A\"}\r\revent: done\r\r",
		"thoughts": "event: handoff\ndata: {\"from\":\"interface\",\"to\":\"scavenger\"}\n\nevent: tool_call\ndata: {\"agent\":\"scavenger\",\"tool\":\"doc_search\",\"query\":\"auth flow\"}\n\n",
	}

	for name, input := range streams {
		t.Run(name, func(t *testing.T) {
			want := NewFramer().Feed(input)
			if len(want) == 0 {
				t.Fatal("test stream produced no records")
			}

			// Every possible two-way split, including mid-line and inside
			// a \r\n pair.
			for i := 0; i <= len(input); i++ {
				got := feedAll(NewFramer(), []string{input[:i], input[i:]})
				if !reflect.DeepEqual(got, want) {
					t.Fatalf("split at %d: got %v, want %v", i, got, want)
				}
			}

			// Byte-at-a-time delivery.
			var chunks []string
			for i := 0; i < len(input); i++ {
				chunks = append(chunks, input[i:i+1])
			}
			if got := feedAll(NewFramer(), chunks); !reflect.DeepEqual(got, want) {
				t.Fatalf("byte-at-a-time: got %v, want %v", got, want)
			}
		})
	}
}

func TestFramerLastEventAndDataWins(t *testing.T) {
	input := "event: token\nevent: handoff\ndata: first\ndata: second\n\n"

	got := NewFramer().Feed(input)
	want := []Record{{Event: "handoff", Data: "second"}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFramerBlankLineWithoutEvent(t *testing.T) {
	input := "\n\ndata: orphan\n\nevent: token\ndata: {\"text\":\"A\"}\n\n"

	got := NewFramer().Feed(input)
	want := []Record{{Event: "token", Data: `{"text":"A"}`}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFramerPayloadlessRecord(t *testing.T) {
	got := NewFramer().Feed("event: done\n\n")
	want := []Record{{Event: "done", Data: ""}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFramerIgnoresUnrecognizedLines(t *testing.T) {
	input := ": keepalive\nid: 7\nretry: 100\nevent: token\ndata: {\"text\":\"A\"}\n\n"

	got := NewFramer().Feed(input)
	want := []Record{{Event: "token", Data: `{"text":"A"}`}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFramerHoldsIncompleteRecord(t *testing.T) {
	f := NewFramer()

	if got := f.Feed("event: token\ndata: {\"text\":\"A\"}\n"); len(got) != 0 {
		t.Fatalf("incomplete record flushed early: %v", got)
	}

	got := f.Feed("\n")
	want := []Record{{Event: "token", Data: `{"text":"A"}`}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFramerTrailingPartialLineNeverFlushes(t *testing.T) {
	f := NewFramer()
	if got := f.Feed("event: token\ndata: {\"text\":\"A\"}"); len(got) != 0 {
		t.Errorf("unterminated input flushed records: %v", got)
	}
}
