package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rmax-ai/streamsim/pkg/config"
	"github.com/rmax-ai/streamsim/pkg/transcript"
)

func main() {
	config.LoadEnv(nil, config.EnvFiles...)

	var (
		limit   int
		format  string
		timeout = 5 * time.Second
	)
	cfg, err := config.LoadWith("streamsim-transcripts", os.Args[1:], func(fs *flag.FlagSet) {
		fs.IntVar(&limit, "limit", 10, "number of transcripts to list")
		fs.StringVar(&format, "format", "text", "output format: text|json|csv")
	})
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "streamsim-transcripts: %v\n", err)
		os.Exit(2)
	}
	if format != "text" && format != "json" && format != "csv" {
		fmt.Fprintf(os.Stderr, "streamsim-transcripts: unsupported format: %s\n", format)
		os.Exit(2)
	}
	if cfg.Transcripts == transcript.BackendOff {
		fmt.Fprintln(os.Stderr, "streamsim-transcripts: transcripts are off; set STREAMSIM_TRANSCRIPTS or -transcripts")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := transcript.Open(ctx, cfg.TranscriptOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "streamsim-transcripts: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	transcripts, err := store.Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "streamsim-transcripts: %v\n", err)
		os.Exit(1)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(transcripts)
	case "csv":
		err = writeCSV(os.Stdout, transcripts)
	default:
		printTranscripts(os.Stdout, transcripts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "streamsim-transcripts: %v\n", err)
		os.Exit(1)
	}
}

// writeCSV emits one row per log line.
func writeCSV(w io.Writer, transcripts []transcript.Transcript) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"session_id", "seq", "received_at", "text"}); err != nil {
		return err
	}
	for _, t := range transcripts {
		for _, e := range t.Entries {
			row := []string{t.SessionID, strconv.Itoa(e.Seq), e.ReceivedAt.UTC().Format(time.RFC3339Nano), e.Text}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func printTranscripts(w io.Writer, transcripts []transcript.Transcript) {
	if len(transcripts) == 0 {
		fmt.Fprintln(w, "No transcripts recorded.")
		return
	}
	for i, t := range transcripts {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "session %s  %s  %s  %s  %d lines\n",
			t.SessionID,
			t.OpenedAt.Local().Format(time.DateTime),
			t.ClosedAt.Sub(t.OpenedAt).Round(time.Second),
			t.Reason,
			len(t.Entries),
		)
		for _, e := range t.Entries {
			fmt.Fprintf(w, "> %s\n", e.Text)
		}
	}
}
