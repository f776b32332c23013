package cli

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"gradeflow/internal/batch"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// eventMsg carries the next batch event; closed is true once the run
// has emitted its last event.
type eventMsg struct {
	event  batch.Event
	closed bool
}

// batchModel is the bubbletea model for a local grading run.
type batchModel struct {
	events <-chan batch.Event

	progress progress.Model
	theme    Theme

	current  int
	total    int
	last     *batch.Result
	errors   []string
	complete *batch.Event
	fatal    string
	done     bool
	quitting bool
}

// newBatchModel creates a model fed by a run's event channel.
func newBatchModel(events <-chan batch.Event) batchModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return batchModel{
		events:   events,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (wait for the first event).
func (m batchModel) Init() tea.Cmd {
	return tea.Batch(
		m.nextEvent(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case eventMsg:
		if msg.closed {
			m.done = true
			return m, tea.Quit
		}

		switch msg.event.Type {
		case batch.EventProgress:
			m.current = msg.event.Current
			m.total = msg.event.Total
			m.last = msg.event.Result
		case batch.EventError:
			m.errors = append(m.errors, fmt.Sprintf("%s: %s", msg.event.File, msg.event.Message))
		case batch.EventComplete:
			ev := msg.event
			m.complete = &ev
		case batch.EventFatalError:
			m.fatal = msg.event.Message
			m.done = true
			return m, tea.Quit
		}

		return m, m.nextEvent()

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m batchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m batchModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	if m.total == 0 {
		return "Unpacking submissions...\n"
	}

	pct := float64(m.current) / float64(m.total)

	status := m.theme.statusStyle().Render("[grading]")
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d files", m.current, m.total)

	var lastLine string
	if m.last != nil {
		lastLine = fmt.Sprintf("%s -> %s (%d%%)", m.last.FileName, m.last.MatchedName, m.last.MatchPercentage)
		if m.last.MatchStatus == batch.StatusNoMatch {
			lastLine = m.theme.errorStyle().Render(m.last.FileName + " -> no roster match")
		}
	}

	hint := m.theme.hintStyle().Render("Press Ctrl+C to abort the display (grading finishes in background)")

	return fmt.Sprintf("%s %s %s\n%s\n%s\n", status, progressBar, counts, lastLine, hint)
}

// finalView renders the completion message.
func (m batchModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nGrading continues, artifacts will be written when it finishes.\n")
	}

	if m.fatal != "" {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Batch failed: %s\n", m.fatal))
	}

	var output string
	output += m.theme.completedStyle().Render("✓ Completed") + "\n\n"
	if m.complete != nil {
		output += fmt.Sprintf("  Files graded: %d\n", m.complete.Total)
		output += fmt.Sprintf("  Roster:       %s\n", m.complete.CSVFilename)
		output += fmt.Sprintf("  Report:       %s\n", m.complete.ExcelFilename)
	}
	if len(m.errors) > 0 {
		output += m.theme.errorStyle().Render(fmt.Sprintf("\nWarnings (%d):\n", len(m.errors)))
		for _, e := range m.errors {
			output += fmt.Sprintf("  • %s\n", e)
		}
	}
	return output
}

// nextEvent blocks on the run's event channel from a command goroutine
// so Update() never blocks.
func (m batchModel) nextEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventMsg{closed: true}
		}
		return eventMsg{event: ev}
	}
}

// runBatchProgress runs the interactive progress UI over a local run.
// The event channel is always drained so the runner finishes and writes
// its artifacts even if the user quits the display early.
func runBatchProgress(events <-chan batch.Event) error {
	model := newBatchModel(events)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()

	// Drain whatever the UI did not consume.
	var fatal string
	for ev := range events {
		if ev.Type == batch.EventFatalError {
			fatal = ev.Message
		}
	}

	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}
	if fatal != "" {
		return fmt.Errorf("%s", fatal)
	}
	if m, ok := finalModel.(batchModel); ok && m.fatal != "" {
		return fmt.Errorf("%s", m.fatal)
	}
	return nil
}
