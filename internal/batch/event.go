// Package batch drives a bulk-grading run end to end: unpack the
// submission archive, grade each document, reconcile it with a roster
// row, and stream progress events while the roster and report artifacts
// are assembled.
package batch

// Event types emitted during a run.
const (
	EventProgress   = "progress"
	EventError      = "error"
	EventComplete   = "complete"
	EventFatalError = "fatal_error"
)

// Match statuses recorded on a Result.
const (
	StatusSuccess = "success"
	StatusNoMatch = "no_match"
)

// previewLength caps the comment preview carried on progress events.
const previewLength = 150

// Result is the outcome of reconciling one submission against the roster.
type Result struct {
	FileName        string `json:"file_name"`
	StudentName     string `json:"student_name"`
	MatchedName     string `json:"matched_name,omitempty"`
	MatchPercentage int    `json:"match_percentage"`
	MatchStatus     string `json:"match_status"`
	Score           string `json:"score"`
	Comment         string `json:"comment"`
	CommentPreview  string `json:"comment_preview"`
}

// Event is one unit of a run's output sequence. Fields are populated
// according to Type; consumers render one status line per event.
type Event struct {
	Type string `json:"type"`

	// progress
	Current    int     `json:"current,omitempty"`
	Percentage int     `json:"percentage,omitempty"`
	Result     *Result `json:"result,omitempty"`

	// progress and complete
	Total int `json:"total,omitempty"`

	// error
	File string `json:"file,omitempty"`

	// error and fatal_error
	Message string `json:"message,omitempty"`

	// complete
	CSVFilename   string `json:"csv_filename,omitempty"`
	ExcelFilename string `json:"excel_filename,omitempty"`
}

// preview truncates a comment for the live status line. Lengths count
// characters, not bytes, so multibyte comments are never cut mid-rune.
func preview(comment string) string {
	if runes := []rune(comment); len(runes) > previewLength {
		return string(runes[:previewLength]) + "..."
	}
	return comment
}
