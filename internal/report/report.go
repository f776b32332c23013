// Package report persists the combined match results as a multi-sheet
// workbook.
package report

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"gradeflow/internal/batch"
)

// Sheet names in the generated workbook.
const (
	SheetFeedback = "Feedback"
	SheetScores   = "Scores"
	SheetCombined = "Combined"
)

// Writer builds xlsx report workbooks.
type Writer struct{}

// New creates a report Writer.
func New() *Writer {
	return &Writer{}
}

// Write persists three sheets: per-item feedback, per-item scores, and
// the full combined result set. Every processed item appears on each
// sheet, unmatched and degraded ones included.
func (w *Writer) Write(results []batch.Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, SheetFeedback, []string{"file_name", "student_name", "comment"}, results, func(r batch.Result) []interface{} {
		return []interface{}{r.FileName, r.StudentName, r.Comment}
	}); err != nil {
		return err
	}

	if err := writeSheet(f, SheetScores, []string{"file_name", "student_name", "score"}, results, func(r batch.Result) []interface{} {
		return []interface{}{r.FileName, r.StudentName, r.Score}
	}); err != nil {
		return err
	}

	combinedHeader := []string{"file_name", "student_name", "matched_name", "match_percentage", "match_status", "score", "comment", "comment_preview"}
	if err := writeSheet(f, SheetCombined, combinedHeader, results, func(r batch.Result) []interface{} {
		return []interface{}{r.FileName, r.StudentName, r.MatchedName, r.MatchPercentage, r.MatchStatus, r.Score, r.Comment, r.CommentPreview}
	}); err != nil {
		return err
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, header []string, results []batch.Result, row func(batch.Result) []interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &headerCells); err != nil {
		return fmt.Errorf("write sheet %s header: %w", name, err)
	}

	for i, r := range results {
		cell := "A" + strconv.Itoa(i+2)
		cells := row(r)
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return fmt.Errorf("write sheet %s row %d: %w", name, i+2, err)
		}
	}
	return nil
}
