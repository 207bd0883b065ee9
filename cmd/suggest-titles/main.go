package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mediascribe/mediascribe/internal/config"
	"github.com/mediascribe/mediascribe/internal/titles"
)

func main() {
	var (
		filePath string
		content  string
		num      int
		outPath  string
	)
	flag.StringVar(&filePath, "file", "", "read blog content from this file (\"-\" for stdin)")
	flag.StringVar(&content, "content", "", "blog content passed inline")
	flag.IntVar(&num, "num", 3, "number of titles to suggest")
	flag.StringVar(&outPath, "output", "", "write suggestions as JSON to this file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s -file post.md | -content \"...\" [flags]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	switch {
	case filePath == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: read stdin: %v\n", err)
			os.Exit(1)
		}
		content = string(data)
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: read %s: %v\n", filePath, err)
			os.Exit(1)
		}
		content = string(data)
	}
	if content == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generator := titles.NewGenerator(cfg.Titles)
	suggestions := generator.Suggest(ctx, content, num)

	for i, title := range suggestions {
		fmt.Printf("%d. %s\n", i+1, title)
	}

	if outPath != "" {
		data, err := json.MarshalIndent(map[string]interface{}{"suggestions": suggestions}, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: marshal suggestions: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error: write %s: %v\n", outPath, err)
			os.Exit(1)
		}
	}
}
