package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"truckmonitor/internal/config"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/logsink"
	"truckmonitor/internal/metrics"
	"truckmonitor/internal/pipeline"
	"truckmonitor/internal/service/ai"
	"truckmonitor/internal/service/report"
	"truckmonitor/internal/service/video"
)

// Runs the pipeline over one source without the HTTP server.
func main() {
	cfg := config.Load()
	source := flag.String("source", cfg.VideoSource, "Camera index, video file or still image")
	withReport := flag.Bool("report", false, "Render the PDF report when the run ends")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logs, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logs.Close()

	detector, err := ai.NewDetectorService(cfg, logs)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	defer detector.Close()

	frames, err := video.OpenSource(*source)
	if err != nil {
		log.Fatalf("Failed to open source: %v", err)
	}
	defer frames.Close()

	store := logsink.NewFileStore(cfg.LogStorePath)
	p, err := pipeline.NewFromConfig(cfg, detector, store, nil, metrics.New(), logs)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx, frames); err != nil {
		logs.Error("Run %s failed: %v", p.RunID(), err)
	}

	if *withReport {
		pages, err := report.GenerateFromStore(store.Path(), cfg.ReportPath, cfg.ReportTitle)
		if err != nil {
			logs.Error("Failed to generate report: %v", err)
			return
		}
		logs.Info("Report generated: %s (%d page(s))", cfg.ReportPath, pages)
	}
}
