package main

import (
	"flag"
	"fmt"
	"log"

	"truckmonitor/internal/config"
	"truckmonitor/internal/service/report"
)

// Renders the log store into a PDF report.
func main() {
	cfg := config.Load()
	storePath := flag.String("store", cfg.LogStorePath, "Log store to read")
	outPath := flag.String("out", cfg.ReportPath, "PDF file to write")
	title := flag.String("title", cfg.ReportTitle, "Report title")
	flag.Parse()

	pages, err := report.GenerateFromStore(*storePath, *outPath, *title)
	if err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}

	fmt.Printf("Report generated: %s (%d page(s))\n", *outPath, pages)
}
