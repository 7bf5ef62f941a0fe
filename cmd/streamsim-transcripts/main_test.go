package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rmax-ai/streamsim/pkg/transcript"
)

func TestPrintTranscripts(t *testing.T) {
	opened := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	printTranscripts(&buf, []transcript.Transcript{
		{
			SessionID: "s-1",
			OpenedAt:  opened,
			ClosedAt:  opened.Add(90 * time.Second),
			Reason:    "remote_close",
			Entries: []transcript.Entry{
				{Seq: 1, Text: "Client connected to WebSocket for logs."},
				{Seq: 2, Text: "Triggering segment failure."},
			},
		},
	})

	out := buf.String()
	for _, want := range []string{"session s-1", "1m30s", "remote_close", "2 lines", "> Triggering segment failure.\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTranscripts_Empty(t *testing.T) {
	var buf bytes.Buffer
	printTranscripts(&buf, nil)
	if got := buf.String(); got != "No transcripts recorded.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := writeCSV(&buf, []transcript.Transcript{
		{SessionID: "s-1", Entries: []transcript.Entry{
			{Seq: 1, Text: "Playlist request count: 1", ReceivedAt: at},
			{Seq: 2, Text: "Delaying audio, segment 3", ReceivedAt: at.Add(time.Second)},
		}},
		{SessionID: "s-2", Entries: []transcript.Entry{}},
	})
	if err != nil {
		t.Fatalf("writeCSV() error = %v", err)
	}

	want := "session_id,seq,received_at,text\n" +
		"s-1,1,2026-10-01T12:00:00Z,Playlist request count: 1\n" +
		"s-1,2,2026-10-01T12:00:01Z,\"Delaying audio, segment 3\"\n"
	if got := buf.String(); got != want {
		t.Errorf("csv =\n%s\nwant\n%s", got, want)
	}
}
