package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	coreapp "blueprints/internal/core/app"
	"blueprints/internal/core/ports"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	flaggedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type moduleStatus int

const (
	statusPending moduleStatus = iota
	statusGenerating
	statusOK
	statusFlagged
)

type moduleRow struct {
	name     string
	status   moduleStatus
	attempts int
}

type progressMsg coreapp.ProgressEvent

type doneMsg struct {
	result ports.ProjectResult
	err    error
}

type model struct {
	root     string
	spinner  spinner.Model
	rows     []moduleRow
	total    int
	started  time.Time
	finished bool
	result   ports.ProjectResult
	err      error
	cancel   func()
}

func initialModel(root string, cancel func()) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle
	return model{
		root:    root,
		spinner: sp,
		started: time.Now(),
		cancel:  cancel,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.finished {
				m.cancel()
			}
			return m, tea.Quit
		}

	case progressMsg:
		m = m.applyProgress(coreapp.ProgressEvent(msg))
		return m, nil

	case doneMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) applyProgress(ev coreapp.ProgressEvent) model {
	m.total = ev.Total

	idx := -1
	for i, row := range m.rows {
		if row.name == ev.Module {
			idx = i
			break
		}
	}
	if idx == -1 {
		m.rows = append(m.rows, moduleRow{name: ev.Module, status: statusGenerating})
		idx = len(m.rows) - 1
	}

	if ev.Done {
		m.rows[idx].attempts = ev.Attempts
		if ev.Flagged {
			m.rows[idx].status = statusFlagged
		} else {
			m.rows[idx].status = statusOK
		}
	} else {
		m.rows[idx].status = statusGenerating
	}
	return m
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Generating project from %s", m.root)))
	b.WriteString("\n\n")

	for _, row := range m.rows {
		switch row.status {
		case statusGenerating:
			b.WriteString(fmt.Sprintf("  %s %s\n", m.spinner.View(), row.name))
		case statusOK:
			b.WriteString(fmt.Sprintf("  %s %s (attempts=%d)\n", okStyle.Render("✓"), row.name, row.attempts))
		case statusFlagged:
			b.WriteString(fmt.Sprintf("  %s %s (attempts=%d, flagged)\n", flaggedStyle.Render("!"), row.name, row.attempts))
		default:
			b.WriteString(fmt.Sprintf("    %s\n", statusStyle.Render(row.name)))
		}
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("Failed: %v", m.err)))
	case m.finished:
		b.WriteString(okStyle.Render(fmt.Sprintf("Done: %d modules in %s",
			len(m.result.Modules), m.result.Duration.Round(time.Millisecond))))
	default:
		b.WriteString(statusStyle.Render(fmt.Sprintf("%d/%d modules, %s elapsed (q to cancel)",
			doneCount(m.rows), m.total, time.Since(m.started).Round(time.Second))))
	}
	b.WriteString("\n")

	return docStyle.Render(b.String())
}

func doneCount(rows []moduleRow) int {
	n := 0
	for _, row := range rows {
		if row.status == statusOK || row.status == statusFlagged {
			n++
		}
	}
	return n
}
