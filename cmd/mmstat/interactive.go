package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yombunker/kotlin-native/cleaner"
	"github.com/yombunker/kotlin-native/mm"
	"github.com/yombunker/kotlin-native/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateConfigure modelState = iota
	stateRunning
	stateStopped
)

type statsModel struct {
	err          error
	workload     *workload
	retain       int
	cleanerEvery int
	threadsInput textinput.Model
	spin         spinner.Model
	state        modelState
	snap         statsSnapshot
}

type statsSnapshot struct {
	status    runtime.GlobalRuntimeStatus
	alive     int32
	live      int64
	allocs    int64
	releases  int64
	reclaimed int64
	frames    int64
	scheduled int64
	executed  int64
	pending   int
}

type tickMsg time.Time

type runDoneMsg struct {
	err error
}

func newStatsModel(threads, retain, cleanerEvery int) *statsModel {
	ti := textinput.New()
	ti.Prompt = "mutator threads: "
	ti.SetValue(strconv.Itoa(threads))
	ti.Width = 8
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = valueStyle

	return &statsModel{
		threadsInput: ti,
		spin:         sp,
		retain:       retain,
		cleanerEvery: cleanerEvery,
		state:        stateConfigure,
	}
}

func (m *statsModel) Init() tea.Cmd {
	return textinput.Blink
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *statsModel) startWorkload() tea.Cmd {
	threads, err := strconv.Atoi(strings.TrimSpace(m.threadsInput.Value()))
	if err != nil || threads < 1 {
		m.err = fmt.Errorf("invalid thread count %q", m.threadsInput.Value())
		return nil
	}
	m.err = nil
	m.workload = newWorkload(threads, m.retain, m.cleanerEvery)
	m.workload.start()
	m.state = stateRunning
	w := m.workload
	waitDone := func() tea.Msg {
		w.wait()
		return runDoneMsg{err: w.err()}
	}
	return tea.Batch(m.spin.Tick, tick(), waitDone)
}

func (m *statsModel) refresh() {
	m.snap = statsSnapshot{
		status:    runtime.GlobalStatus(),
		alive:     runtime.AliveRuntimesCount(),
		live:      mm.LiveObjects(),
		scheduled: cleaner.ScheduledTotal(),
		executed:  cleaner.ExecutedTotal(),
		pending:   cleaner.Pending(),
	}
	if w := m.workload; w != nil {
		m.snap.allocs = w.allocs.Load()
		m.snap.releases = w.releases.Load()
		m.snap.reclaimed = w.reclaimed.Load()
		m.snap.frames = w.frames.Load()
	}
}

func (m *statsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.workload != nil {
				m.workload.halt()
				m.workload.wait()
			}
			return m, tea.Quit

		case "enter":
			switch m.state {
			case stateConfigure, stateStopped:
				return m, m.startWorkload()
			}

		case "s":
			if m.state == stateRunning {
				m.workload.halt()
			}

		case "c":
			if m.state == stateRunning && m.err == nil {
				if err := cleaner.Schedule(func() {}); err != nil {
					m.err = err
				}
			}

		case "d":
			if m.state == stateStopped {
				runtime.Destroy()
				m.refresh()
				return m, tea.Quit
			}
		}

	case tickMsg:
		if m.state == stateRunning {
			m.refresh()
			return m, tick()
		}

	case runDoneMsg:
		m.err = msg.err
		m.state = stateStopped
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.state == stateRunning {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	}

	if m.state == stateConfigure {
		var cmd tea.Cmd
		m.threadsInput, cmd = m.threadsInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *statsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mmstat"))
	b.WriteString(" memory model: " + valueStyle.Render(memoryModelName()))
	b.WriteString("\n\n")

	switch m.state {
	case stateConfigure:
		b.WriteString(m.threadsInput.View())
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(warnStyle.Render(m.err.Error()))
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("enter start • q quit"))

	case stateRunning:
		b.WriteString(m.spin.View())
		b.WriteString(" mutators running\n\n")
		m.writeStats(&b)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("s stop • c schedule cleaner • q quit"))

	case stateStopped:
		b.WriteString("mutators stopped\n\n")
		m.writeStats(&b)
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(warnStyle.Render("Error: " + m.err.Error()))
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("enter run again • d destroy & quit • q quit"))
	}

	return b.String()
}

func (m *statsModel) writeStats(b *strings.Builder) {
	row := func(label string, value any) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", label)))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%v", value)))
		b.WriteString("\n")
	}
	row("global status", m.snap.status)
	row("alive runtimes", m.snap.alive)
	row("live objects", m.snap.live)
	row("allocations", m.snap.allocs)
	row("releases", m.snap.releases)
	row("reclaimed", m.snap.reclaimed)
	row("frames", m.snap.frames)
	row("cleaners", fmt.Sprintf("%d scheduled, %d executed, %d pending",
		m.snap.scheduled, m.snap.executed, m.snap.pending))
}

func runInteractive(threads, retain, cleanerEvery int) error {
	// The TUI thread owns a runtime so the destroy key can work here.
	runtime.EnsureInitialized()
	p := tea.NewProgram(newStatsModel(threads, retain, cleanerEvery), tea.WithAltScreen())
	_, err := p.Run()
	if runtime.GlobalStatus() == runtime.GlobalRunning {
		runtime.DeinitIfNeeded()
	}
	return err
}
