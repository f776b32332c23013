package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeRoster(t, "Full name,Email\nMaria Lopez,maria@example.com\nDiego Ramirez,diego@example.com\n")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table.Header) != 2 || table.Header[0] != "Full name" {
		t.Errorf("header = %v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}

	names, err := table.FullNames()
	if err != nil {
		t.Fatalf("FullNames: %v", err)
	}
	if names[0] != "Maria Lopez" || names[1] != "Diego Ramirez" {
		t.Errorf("names = %v", names)
	}
}

func TestLoadStripsBOM(t *testing.T) {
	path := writeRoster(t, "\xEF\xBB\xBFFull name\nMaria Lopez\n")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Header[0] != "Full name" {
		t.Errorf("header = %q, BOM not stripped", table.Header[0])
	}
}

func TestLoadPadsShortRows(t *testing.T) {
	path := writeRoster(t, "Full name,Email,Group\nMaria Lopez\n")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table.Rows[0]) != 3 {
		t.Errorf("row = %v, want 3 cells", table.Rows[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("Load succeeded on a missing file")
	}
}

func TestFullNamesRequiresColumn(t *testing.T) {
	path := writeRoster(t, "Name,Email\nMaria Lopez,m@example.com\n")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := table.FullNames(); err == nil {
		t.Fatal("FullNames succeeded without a Full name column")
	}
}

func TestSetFeedbackCreatesColumnsOnce(t *testing.T) {
	path := writeRoster(t, "Full name,Email\nMaria Lopez,m@example.com\nDiego Ramirez,d@example.com\n")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := table.SetFeedback(0, "Maria, good work.", "8.5"); err != nil {
		t.Fatalf("SetFeedback: %v", err)
	}
	if err := table.SetFeedback(1, "Diego, solid essay.", "7"); err != nil {
		t.Fatalf("SetFeedback: %v", err)
	}

	if len(table.Header) != 4 {
		t.Fatalf("header = %v, want 4 columns", table.Header)
	}
	if table.Header[2] != ColumnFeedback || table.Header[3] != ColumnGrade {
		t.Errorf("appended columns = %v", table.Header[2:])
	}
	if table.Rows[0][2] != "Maria, good work." || table.Rows[0][3] != "8.5" {
		t.Errorf("row 0 = %v", table.Rows[0])
	}

	if err := table.SetFeedback(2, "x", "1"); err == nil {
		t.Error("SetFeedback accepted an out-of-range row")
	}
}

func TestRoundTripPreservesOriginalCells(t *testing.T) {
	path := writeRoster(t, "Full name,Email,Group\n\"Lopez, Maria\",maria@example.com,A\nDiego Ramirez,diego@example.com,B\n")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := table.SetFeedback(1, "Diego, well done.", "9"); err != nil {
		t.Fatalf("SetFeedback: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.csv")
	if err := table.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	if len(reloaded.Rows) != len(table.Rows) {
		t.Fatalf("row count changed: %d != %d", len(reloaded.Rows), len(table.Rows))
	}
	for _, col := range []string{"Full name", "Email", "Group"} {
		origIdx, _ := table.ColumnIndex(col)
		newIdx, ok := reloaded.ColumnIndex(col)
		if !ok {
			t.Fatalf("column %q lost on round trip", col)
		}
		for i := range table.Rows {
			if reloaded.Rows[i][newIdx] != table.Rows[i][origIdx] {
				t.Errorf("cell [%d][%s] changed: %q != %q", i, col, reloaded.Rows[i][newIdx], table.Rows[i][origIdx])
			}
		}
	}

	if reloaded.Rows[0][2] != "" {
		t.Errorf("unmatched row got feedback: %q", reloaded.Rows[0][2])
	}
	if reloaded.Rows[1][2] != "Diego, well done." || reloaded.Rows[1][3] != "9" {
		t.Errorf("feedback cells = %v", reloaded.Rows[1][2:])
	}
}

func TestSaveWritesBOMAndQuotesAll(t *testing.T) {
	table := &Table{
		Header: []string{"Full name", "Grade"},
		Rows:   [][]string{{`Maria "Mia" Lopez`, "8"}},
	}

	out := filepath.Join(t.TempDir(), "out.csv")
	if err := table.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "\xEF\xBB\xBF") {
		t.Error("output missing UTF-8 BOM")
	}
	if !strings.Contains(content, `"Full name","Grade"`) {
		t.Errorf("header not fully quoted: %q", content)
	}
	if !strings.Contains(content, `"Maria ""Mia"" Lopez","8"`) {
		t.Errorf("fields not quote-escaped: %q", content)
	}
	if !strings.Contains(content, "\r\n") {
		t.Error("output missing CRLF line endings")
	}
}
