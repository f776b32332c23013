package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"gradeflow/internal/archive"
	"gradeflow/internal/config"
	"gradeflow/internal/feedback"
	"gradeflow/internal/metrics"
	"gradeflow/internal/names"
	"gradeflow/internal/roster"
)

// eventBuffer smooths producer/consumer handoff; the consumer is expected
// to drain the channel to completion regardless of client connectivity.
const eventBuffer = 16

// TextExtractor reads a document file into plain text.
type TextExtractor interface {
	Text(path string) (string, error)
}

// FeedbackGenerator produces raw feedback for extracted document text.
// The instruction payload is opaque and passed through unmodified.
type FeedbackGenerator interface {
	Feedback(ctx context.Context, text string, instructions []byte) (string, error)
}

// ReportWriter persists the combined result set as a workbook.
type ReportWriter interface {
	Write(results []Result, path string) error
}

// Runner executes bulk-grading batches.
type Runner struct {
	cfg       config.Config
	store     *SessionStore
	extractor TextExtractor
	generator FeedbackGenerator
	reports   ReportWriter
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(cfg config.Config, store *SessionStore, extractor TextExtractor, generator FeedbackGenerator, reports ReportWriter, collector *metrics.Collector, logger *slog.Logger) *Runner {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		generator: generator,
		reports:   reports,
		metrics:   collector,
		logger:    logger,
	}
}

// Run starts the batch for a session and returns its event sequence. The
// sequence is one-shot and forward-only: for N submissions it carries
// exactly N progress/error events in submission order, then one complete
// event, or a single fatal_error if the run cannot proceed. The channel
// closes after the terminal event. The run always executes to completion
// once started; callers must drain the channel.
func (r *Runner) Run(ctx context.Context, sess *Session) <-chan Event {
	events := make(chan Event, eventBuffer)

	go func() {
		defer close(events)
		start := time.Now()
		if err := r.run(ctx, sess, events); err != nil {
			r.logger.Error("batch failed", "session_id", sess.ID, "error", err)
			events <- Event{Type: EventFatalError, Message: err.Error()}
			return
		}
		r.metrics.RecordTiming(metrics.OpRun, time.Since(start))
	}()

	return events
}

// run drives INIT -> UNPACKING -> ITERATING -> FINALIZING. Any returned
// error is fatal: the caller emits a single fatal_error event and no
// artifacts are persisted.
func (r *Runner) run(ctx context.Context, sess *Session, events chan<- Event) error {
	instrFile, ok := r.cfg.Tasks[sess.TaskType]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownTask, sess.TaskType)
	}
	instructions, err := os.ReadFile(instrFile)
	if err != nil {
		return fmt.Errorf("load task instructions: %w", err)
	}

	table, err := roster.Load(sess.RosterPath)
	if err != nil {
		return err
	}
	fullNames, err := table.FullNames()
	if err != nil {
		return err
	}

	dir, err := archive.Unpack(sess.ArchivePath)
	if err != nil {
		return err
	}
	// Extraction storage is released on every exit path, fatal included.
	defer os.RemoveAll(dir)

	files, err := archive.ListDocuments(dir)
	if err != nil {
		return err
	}
	total := len(files)
	r.logger.Info("batch started", "session_id", sess.ID, "task_type", sess.TaskType, "files", total)

	results := make([]Result, 0, total)
	for i, physical := range files {
		// The dirent name is the opaque key for disk access; the display
		// name is its NFC form. The two may differ byte-wise depending on
		// how the archive and the filesystem normalized the entry.
		display := norm.NFC.String(physical)

		result, err := r.processOne(ctx, dir, physical, display, table, fullNames, instructions)
		if err != nil {
			r.logger.Warn("submission failed", "session_id", sess.ID, "file", display, "error", err)
			events <- Event{Type: EventError, File: cleanFileName(display), Message: err.Error()}
			continue
		}

		results = append(results, result)
		events <- Event{
			Type:       EventProgress,
			Current:    i + 1,
			Total:      total,
			Percentage: (i + 1) * 100 / total,
			Result:     &result,
		}
	}

	if err := os.MkdirAll(r.cfg.UploadDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	ts := time.Now().Format("20060102150405")
	base := strings.TrimSuffix(filepath.Base(sess.RosterPath), filepath.Ext(sess.RosterPath))
	csvPath := filepath.Join(r.cfg.UploadDir, fmt.Sprintf("%s_with_feedback_%s.csv", base, ts))
	excelPath := filepath.Join(r.cfg.UploadDir, fmt.Sprintf("bulk_feedback_%s.xlsx", ts))

	if err := table.Save(csvPath); err != nil {
		return err
	}
	if err := r.reports.Write(results, excelPath); err != nil {
		return err
	}

	if r.store != nil {
		r.store.Complete(sess.ID, results, csvPath, excelPath)
	}
	r.logger.Info("batch complete", "session_id", sess.ID, "files", total, "csv", csvPath, "excel", excelPath)

	events <- Event{
		Type:          EventComplete,
		Total:         total,
		CSVFilename:   filepath.Base(csvPath),
		ExcelFilename: filepath.Base(excelPath),
	}
	return nil
}

// processOne grades a single submission and reconciles it with the
// roster. Extraction and generation failures degrade into a visible
// "Error:" comment rather than failing the item; only infrastructure
// failures (unresolvable file, roster write) return an error.
func (r *Runner) processOne(ctx context.Context, dir, physical, display string, table *roster.Table, fullNames []string, instructions []byte) (Result, error) {
	path, err := resolvePath(dir, physical, display)
	if err != nil {
		return Result{}, err
	}

	studentName := names.DisplayName(display)
	firstName := names.FirstNameFromFilename(display)

	comment, score, degraded := r.grade(ctx, path, firstName, instructions)

	start := time.Now()
	idx, confidence := names.Match(studentName, fullNames)
	r.metrics.RecordTiming(metrics.OpMatch, time.Since(start))

	result := Result{
		FileName:        cleanFileName(display),
		StudentName:     studentName,
		MatchPercentage: confidence,
		MatchStatus:     StatusNoMatch,
		Score:           score,
	}

	if idx != names.NoMatch {
		matchedName := fullNames[idx]
		if !degraded && comment != "" {
			// The roster name is authoritative for the salutation; the
			// filename-derived first name may be misspelled or corrupted.
			comment = feedback.Resalute(comment, names.FirstName(matchedName))
		}
		if err := table.SetFeedback(idx, comment, score); err != nil {
			return Result{}, err
		}
		result.MatchedName = matchedName
		result.MatchStatus = StatusSuccess
		r.logger.Info("matched", "student", studentName, "roster_name", matchedName, "confidence", confidence)
	} else {
		r.logger.Warn("no roster match", "student", studentName)
	}

	result.Comment = comment
	result.CommentPreview = preview(comment)
	return result, nil
}

// grade extracts the document text and generates the post-processed
// comment and score. Failures are converted into an "Error:" comment with
// an empty score; degraded reports whether that happened.
func (r *Runner) grade(ctx context.Context, path, firstName string, instructions []byte) (comment, score string, degraded bool) {
	start := time.Now()
	text, err := r.extractor.Text(path)
	r.metrics.RecordTiming(metrics.OpExtract, time.Since(start))

	var raw string
	if err == nil {
		genCtx := ctx
		if r.cfg.GenerateTimeout > 0 {
			var cancel context.CancelFunc
			genCtx, cancel = context.WithTimeout(ctx, r.cfg.GenerateTimeout)
			defer cancel()
		}
		start = time.Now()
		raw, err = r.generator.Feedback(genCtx, text, instructions)
		r.metrics.RecordTiming(metrics.OpGenerate, time.Since(start))
	}
	if err != nil {
		// Not retried: the item stays visible in every output with the
		// failure as its comment.
		return "Error: " + err.Error(), "", true
	}

	comment, score = feedback.Process(raw)
	if comment != "" {
		comment = feedback.Salute(comment, firstName)
	}
	return comment, score, false
}

// resolvePath finds the on-disk file for an archive entry. Directory
// listings and archive member names can round-trip through different
// Unicode normalization forms, so the physical name is tried first and
// the NFD/NFC variants of the display name after it.
func resolvePath(dir, physical, display string) (string, error) {
	candidates := []string{physical, norm.NFD.String(display), display}
	for _, name := range candidates {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("submission %s not found in extraction dir", display)
}

// cleanFileName strips corruption from an archive member name while
// keeping its extension.
func cleanFileName(display string) string {
	ext := filepath.Ext(display)
	return names.DisplayName(display) + ext
}
