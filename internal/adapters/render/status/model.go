package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bnema/blum-farm-cli/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrUnexpectedModel = errors.New("unexpected final bubbletea model type")

// FetchFunc loads the statuses to display.
type FetchFunc func(ctx context.Context) ([]application.AccountStatus, error)

type LiveOptions struct {
	// Label is shown next to the spinner while fetching.
	Label string
	// Progress receives the spinner frames. The rendered view is returned, not written.
	Progress   io.Writer
	StaleAfter time.Duration
	Now        func() time.Time
}

type fetchedMsg struct {
	statuses []application.AccountStatus
	err      error
}

// model spins while the snapshot is fetched and renders it once the fetch returns.
type model struct {
	spinner spinner.Model
	label   string
	fetch   tea.Cmd
	opts    RenderOptions
	now     func() time.Time
	styles  styles

	done     bool
	err      error
	statuses []application.AccountStatus
	output   string
}

func newModel(ctx context.Context, fetch FetchFunc, opts LiveOptions) model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return model{
		spinner: s,
		label:   opts.Label,
		fetch: func() tea.Msg {
			statuses, err := fetch(ctx)
			return fetchedMsg{statuses: statuses, err: err}
		},
		opts:   RenderOptions{StaleAfter: opts.StaleAfter},
		now:    now,
		styles: newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case fetchedMsg:
		m.done = true
		m.err = msg.err
		m.statuses = msg.statuses
		if msg.err == nil {
			m.opts.Now = m.now()
			m.output = renderView(m.statuses, m.opts, m.styles)
		}
		return m, tea.Quit
	default:
		return m, nil
	}
}

// View is the progress line. It is cleared once the fetch is over.
func (m model) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// Live fetches the statuses behind a spinner and returns the rendered view together
// with the statuses it was drawn from.
func Live(ctx context.Context, fetch FetchFunc, opts LiveOptions) (string, []application.AccountStatus, error) {
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	p := tea.NewProgram(
		newModel(ctx, fetch, opts),
		tea.WithInput(nil),
		tea.WithOutput(progress),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", nil, err
	}

	final, ok := finalModel.(model)
	if !ok {
		return "", nil, fmt.Errorf("%w: %T", ErrUnexpectedModel, finalModel)
	}
	if final.err != nil {
		return "", nil, final.err
	}
	return final.output, final.statuses, nil
}
