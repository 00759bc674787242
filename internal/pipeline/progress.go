// ABOUTME: Encode progress display: bubbletea TUI on a terminal, log lines otherwise
package pipeline

import (
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/jadujoel/scode/internal/logging"
)

// Reporter receives one call per completed source job, in whatever
// order workers finish them.
type Reporter interface {
	Advance(sourceName string, err error)
}

// NewReporter returns a bubbletea TUI reporter when stdout is a
// terminal and noTUI is false, otherwise a plain streaming logger.
func NewReporter(total int, noTUI bool, logger *logging.Logger) (Reporter, func()) {
	if noTUI || !isatty.IsTerminal(os.Stdout.Fd()) {
		return &streamReporter{logger: logger, total: total}, func() {}
	}

	model := &progressModel{total: total, startTime: time.Now()}
	program := tea.NewProgram(model)
	go program.Run()
	return &tuiReporter{program: program}, func() { program.Send(doneMsg{}) }
}

// streamReporter is the --no-tui / non-interactive fallback: one
// log.Printf-style line per completed source.
type streamReporter struct {
	mu      sync.Mutex
	logger  *logging.Logger
	total   int
	done    int
}

func (r *streamReporter) Advance(sourceName string, err error) {
	r.mu.Lock()
	r.done++
	done, total := r.done, r.total
	r.mu.Unlock()

	if err != nil {
		r.logger.Errorf("[%d/%d] %s: %v", done, total, sourceName, err)
		return
	}
	r.logger.Infof("[%d/%d] %s", done, total, sourceName)
}

type tuiReporter struct {
	program *tea.Program
}

func (r *tuiReporter) Advance(sourceName string, err error) {
	r.program.Send(advanceMsg{sourceName: sourceName, err: err})
}

type advanceMsg struct {
	sourceName string
	err        error
}

type doneMsg struct{}

type progressModel struct {
	total     int
	done      int
	failed    int
	current   string
	startTime time.Time
	quitting  bool
}

func (m *progressModel) Init() tea.Cmd { return nil }

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	case advanceMsg:
		m.done++
		m.current = msg.sourceName
		if msg.err != nil {
			m.failed++
		}
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *progressModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	width := 30
	filled := int(pct * float64(width))
	bar := barStyle.Render(repeat("#", filled)) + repeat(" ", width-filled)

	elapsed := time.Since(m.startTime).Round(time.Second)
	line := fmt.Sprintf("%s [%s] %d/%d  %s  %s", titleStyle.Render("encoding"), bar, m.done, m.total, m.current, elapsed)
	if m.failed > 0 {
		line += "  " + failStyle.Render(fmt.Sprintf("%d failed", m.failed))
	}
	return line + "\n"
}

func repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
