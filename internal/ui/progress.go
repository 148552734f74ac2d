package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"leo/internal/driver"
)

const (
	statusWidth  = 9
	elapsedWidth = 9
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	files   []fileState
	index   map[string]int
	width   int
	done    bool
}

type fileState struct {
	path    string
	stage   driver.Stage
	status  driver.Status
	elapsed time.Duration
	err     string
}

// label is the word shown in the status column.
func (f fileState) label() string {
	switch f.status {
	case driver.StatusWorking:
		switch f.stage {
		case driver.StageLoad:
			return "loading"
		case driver.StageRun:
			return "running"
		}
	case driver.StatusDone, driver.StatusError:
		return f.status.String()
	}
	return "queued"
}

// fraction is how far the file has come, from 0 to 1.
func (f fileState) fraction() float64 {
	switch {
	case f.status.Finished():
		return 1
	case f.status == driver.StatusWorking && f.stage == driver.StageRun:
		return 0.6
	case f.status == driver.StatusWorking:
		return 0.2
	}
	return 0
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the progress of
// a multi-file run. It quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		files:   make([]fileState, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, path := range files {
		m.files[i] = fileState{path: path, status: driver.StatusQueued}
		m.index[path] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.listen())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// apply records ev and returns the command animating the bar. Events for
// unknown files are ignored.
func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	i, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	f := &m.files[i]
	f.stage, f.status = ev.Stage, ev.Status
	if ev.Elapsed > 0 {
		f.elapsed += ev.Elapsed
	}
	if ev.Err != nil {
		f.err = firstLine(ev.Err.Error())
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.files) == 0 {
		return 0
	}
	total := 0.0
	for _, f := range m.files {
		total += f.fraction()
	}
	return total / float64(len(m.files))
}

func (m *progressModel) counts() (finished, failed int) {
	for _, f := range m.files {
		if f.status.Finished() {
			finished++
		}
		if f.status == driver.StatusError {
			failed++
		}
	}
	return finished, failed
}

func (m *progressModel) View() string {
	if len(m.files) == 0 {
		return ""
	}
	finished, failed := m.counts()
	header := fmt.Sprintf("%s %d/%d", m.title, finished, len(m.files))
	if failed > 0 {
		header += fmt.Sprintf(", %d failed", failed)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-elapsedWidth-6, 20)
	for _, f := range m.files {
		status := statusStyle(f.status).Render(fmt.Sprintf("%*s", statusWidth, f.label()))
		elapsed := strings.Repeat(" ", elapsedWidth)
		if f.elapsed > 0 {
			elapsed = fmt.Sprintf("%*s", elapsedWidth, f.elapsed.Round(time.Millisecond))
		}
		fmt.Fprintf(&b, "  %s %s %s\n", status, faintStyle.Render(elapsed), truncate(f.path, nameWidth))
		if f.err != "" {
			fmt.Fprintf(&b, "  %*s %s\n", statusWidth+elapsedWidth+1, "", errorStyle.Render(truncate(f.err, nameWidth)))
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func statusStyle(status driver.Status) lipgloss.Style {
	switch status {
	case driver.StatusDone:
		return doneStyle
	case driver.StatusError:
		return errorStyle
	case driver.StatusWorking:
		return workingStyle
	default:
		return idleStyle
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
