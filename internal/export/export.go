// Package export renders a page of submissions as CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"roadmap-admin/internal/model"

	"github.com/jung-kurt/gofpdf"
)

// Dataset is tabular export content; each row is keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

const (
	colStudent   = "Student"
	colRoadmap   = "Roadmap"
	colEvent     = "Event"
	colStatus    = "Status"
	colSubmitted = "Submitted"
	colPoints    = "Points"
)

// SubmissionHeaders are the columns of the submissions table.
var SubmissionHeaders = []string{colStudent, colRoadmap, colEvent, colStatus, colSubmitted, colPoints}

// SubmissionRow returns the table cells of s in SubmissionHeaders order.
func SubmissionRow(s model.Submission) []string {
	student := s.StudentName
	if student == "" {
		student = s.StudentID.String()
	}
	return []string{student, s.RoadmapTitle, s.EventTitle, string(s.Status), s.SubmittedLabel(), s.PointsLabel()}
}

func SubmissionsDataset(items []model.Submission) Dataset {
	ds := Dataset{Headers: append([]string(nil), SubmissionHeaders...), Rows: make([]map[string]string, 0, len(items))}
	for _, s := range items {
		cells := SubmissionRow(s)
		row := make(map[string]string, len(cells))
		for i, h := range SubmissionHeaders {
			row[h] = cells[i]
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

type CSVExporter struct{}

func NewCSVExporter() *CSVExporter { return &CSVExporter{} }

func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, h := range data.Headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

type PDFExporter struct{}

func NewPDFExporter() *PDFExporter { return &PDFExporter{} }

// Render lays the dataset out as a landscape A4 table under title, followed by footer.
func (e *PDFExporter) Render(data Dataset, title, footer string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for _, h := range data.Headers {
		pdf.CellFormat(colW, 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, h := range data.Headers {
			pdf.CellFormat(colW, 7, tr(fitCell(pdf, row[h], colW-2)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if footer != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, tr(footer), "", 1, "L", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func fitCell(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

// Page describes what is being exported, for the PDF heading and footer.
type Page struct {
	Items      []model.Submission
	Pagination model.Pagination
	// Filter is a human description of the query, e.g. "event 12, pending only".
	Filter string
}

// WriteFile renders page into path, choosing CSV or PDF from the extension.
func WriteFile(path string, page Page) error {
	ds := SubmissionsDataset(page.Items)
	var (
		b   []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		b, err = NewCSVExporter().Render(ds)
	case ".pdf":
		title := "Submissions"
		if page.Filter != "" {
			title += " (" + page.Filter + ")"
		}
		footer := fmt.Sprintf("Page %d of %d, %d submissions total", page.Pagination.CurrentPage, page.Pagination.TotalPages, page.Pagination.TotalCount)
		b, err = NewPDFExporter().Render(ds, title, footer)
	default:
		return fmt.Errorf("export: unsupported file type %q (want .csv or .pdf)", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}
