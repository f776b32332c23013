// Package roster loads, mutates, and persists the class roster table.
// Column order, row order, and pre-existing cell text survive a
// load-mutate-save round trip untouched; only the two feedback columns
// are ever written.
package roster

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Column names the pipeline reads and writes.
const (
	ColumnFullName = "Full name"
	ColumnFeedback = "Feedback comments"
	ColumnGrade    = "Grade"
)

// utf8BOM is written on save so spreadsheet tools detect the encoding of
// the feedback text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is an ordered roster with a header row and data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Load reads a roster CSV. A leading UTF-8 BOM is tolerated. Rows shorter
// than the header are padded with empty cells so column indexes stay
// valid.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if bom, err := br.Peek(3); err == nil && string(bom) == string(utf8BOM) {
		br.Discard(3)
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("roster %s is empty", path)
	}

	header := records[0]
	rows := records[1:]
	for i, row := range rows {
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows[i] = row
	}

	return &Table{Header: header, Rows: rows}, nil
}

// ColumnIndex returns the position of a header column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

// EnsureColumn returns the index of the named column, appending it (with
// empty cells) when absent.
func (t *Table) EnsureColumn(name string) int {
	if idx, ok := t.ColumnIndex(name); ok {
		return idx
	}
	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	return len(t.Header) - 1
}

// FullNames returns the display names in roster order. Missing cells
// yield empty strings.
func (t *Table) FullNames() ([]string, error) {
	idx, ok := t.ColumnIndex(ColumnFullName)
	if !ok {
		return nil, fmt.Errorf("roster has no %q column", ColumnFullName)
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// SetFeedback writes the comment and grade cells of one row, creating
// the feedback columns on first use.
func (t *Table) SetFeedback(row int, comment, grade string) error {
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	fbIdx := t.EnsureColumn(ColumnFeedback)
	grIdx := t.EnsureColumn(ColumnGrade)
	t.Rows[row][fbIdx] = comment
	t.Rows[row][grIdx] = grade
	return nil
}

// Save writes the table as UTF-8 CSV with a BOM and every field quoted,
// so the feedback text renders correctly when opened in common
// spreadsheet tools.
func (t *Table) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create roster output: %w", err)
	}

	w := bufio.NewWriter(f)
	if _, err := w.Write(utf8BOM); err != nil {
		f.Close()
		return fmt.Errorf("write roster output: %w", err)
	}

	writeRecord(w, t.Header)
	for _, row := range t.Rows {
		writeRecord(w, row)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write roster output: %w", err)
	}
	return f.Close()
}

// writeRecord emits one CSV record with all fields quoted, CRLF
// terminated. encoding/csv only quotes when forced, and the original
// exports quote every field; downstream consumers rely on that shape.
func writeRecord(w *bufio.Writer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteString("\r\n")
}
