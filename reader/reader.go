// Package reader is the thin file-boundary shim for the pipeline: it turns
// input files into the in-memory forms the extractors consume (raw XML
// bytes, or an ordered slice of per-page text blocks).
package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DiagramXML reads a diagram interchange export as raw bytes.
func DiagramXML(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading diagram file: %w", err)
	}
	return data, nil
}

// PDFPages extracts plain text from a PDF, one string per page. Pages that
// fail text extraction yield an empty string rather than shifting later
// page indices, since callers address pages by position.
func PDFPages(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages, nil
}

// TextPages reads a plain-text file as a page sequence, split on form-feed
// characters. A file with no form feeds is a single page.
func TextPages(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}
	return strings.Split(string(data), "\f"), nil
}

// Pages dispatches on file extension: ".pdf" files go through the PDF text
// extractor, anything else is treated as pre-extracted plain text.
func Pages(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return PDFPages(path)
	}
	return TextPages(path)
}
