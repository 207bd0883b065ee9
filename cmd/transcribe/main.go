package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mediascribe/mediascribe/internal/config"
	"github.com/mediascribe/mediascribe/internal/transcription"
)

func main() {
	var (
		backend string
		model   string
		outPath string
		quiet   bool
	)
	flag.StringVar(&backend, "backend", "", "speech backend: openai or local (default from SPEECH_BACKEND)")
	flag.StringVar(&model, "model", "", "speech model name (default from SPEECH_MODEL)")
	flag.StringVar(&outPath, "output", "", "write the full result as JSON to this file")
	flag.BoolVar(&quiet, "quiet", false, "suppress the segment listing on stdout")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <audio-file>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	audioPath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}
	if backend != "" {
		cfg.Speech.Backend = backend
	}
	if model != "" {
		cfg.Speech.Model = model
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processor := transcription.NewProcessor(cfg)
	result, err := processor.Process(ctx, audioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if !quiet {
		for _, seg := range result.Segments {
			fmt.Printf("[%.2fs - %.2fs] %s: %s\n", seg.Start, seg.End, seg.Speaker, seg.Text)
		}
	}

	if outPath != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: marshal result: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error: write %s: %v\n", outPath, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	}
}
