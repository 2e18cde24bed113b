// Package tui holds the terminal presentation helpers: a spinner shown while
// the model is working and the lipgloss styles for console output.
package tui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// IsTTY reports whether stdout is an interactive terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Spinner animates a message until Stop. Outside a terminal it prints the
// message once.
type Spinner struct {
	program   *tea.Program
	done      chan struct{}
	startTime time.Time
	isTTY     bool
	out       io.Writer
}

type spinnerModel struct {
	spinner  spinner.Model
	text     string
	finished bool
}

type stopMsg struct{}

// NewSpinner returns a spinner writing to out. Animation is enabled only
// when tty is true.
func NewSpinner(out io.Writer, tty bool) *Spinner {
	return &Spinner{out: out, isTTY: tty}
}

// Start shows message.
func (s *Spinner) Start(message string) {
	s.startTime = time.Now()
	if !s.isTTY {
		fmt.Fprintf(s.out, "⏺ %s\n", message)
		return
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	s.done = make(chan struct{})
	s.program = tea.NewProgram(
		spinnerModel{spinner: sp, text: message},
		tea.WithOutput(s.out),
		tea.WithInput(nil),
	)
	go func() {
		defer close(s.done)
		if _, err := s.program.Run(); err != nil {
			slog.Debug("spinner stopped", "error", err)
		}
	}()
}

// Stop ends the animation and returns the elapsed time. It is safe to call
// on a spinner that never started.
func (s *Spinner) Stop() time.Duration {
	elapsed := time.Since(s.startTime)
	if s.program == nil {
		return elapsed
	}
	s.program.Send(stopMsg{})
	<-s.done
	s.program = nil
	return elapsed
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.finished = true
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() string {
	if m.finished {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), m.text)
}
