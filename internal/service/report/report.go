// Package report renders the log store as a PDF document.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"truckmonitor/internal/logsink"

	"github.com/go-pdf/fpdf"
)

// DefaultTitle heads every report unless configured otherwise.
const DefaultTitle = "Truck Monitoring Report"

const (
	fontFamily = "Arial"
	fontSize   = 12
	lineHeight = 10
)

// Render writes a PDF with a centered title and one wrapped cell per line.
// It returns the number of pages.
func Render(w io.Writer, title string, lines []string) (int, error) {
	if title == "" {
		title = DefaultTitle
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)

	// Core fonts are cp1252; the degree sign in turn info needs translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.CellFormat(0, lineHeight, tr(title), "", 1, "C", false, 0, "")
	for _, line := range lines {
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("failed to render report: %w", err)
	}
	return pdf.PageCount(), nil
}

// GenerateFromStore renders every line of the log store at storePath into
// the PDF at reportPath.
func GenerateFromStore(storePath, reportPath, title string) (int, error) {
	lines, err := logsink.ReadLines(storePath)
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(reportPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(reportPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create report: %w", err)
	}

	pages, err := Render(f, title, lines)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close report: %w", closeErr)
	}
	return pages, err
}
