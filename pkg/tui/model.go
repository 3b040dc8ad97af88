package tui

import (
	"time"

	"ftxwidget/pkg/config"
	"ftxwidget/pkg/store"
	"ftxwidget/pkg/widget"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Version is set by Start()
var Version = "dev"

// --- Messages ---

type clearStatusMsg struct{}
type countdownTickMsg time.Time

// Convert form fields
const (
	fieldFrom = iota
	fieldTo
	fieldQuantity
	fieldCount
)

// --- Model ---

type model struct {
	dispatch  widget.Dispatch
	sub       store.Subscriber
	state     *widget.State
	countdown widget.Countdown
	config    config.WidgetConfig

	width         int
	height        int
	spinner       spinner.Model
	statusMessage string

	marketIdx    int
	hideBalances bool

	convertInputs []textinput.Model
	focusIdx      int
	typing        bool
	formError     string
}

func initialModel(dispatch widget.Dispatch, sub store.Subscriber, state *widget.State, cfg config.WidgetConfig) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	cis := make([]textinput.Model, fieldCount)
	for i := range cis {
		cis[i] = textinput.New()
		cis[i].Width = 20
		cis[i].CharLimit = 24
	}
	cis[fieldFrom].Placeholder = "From (e.g. USD)"
	cis[fieldTo].Placeholder = "To (e.g. BTC)"
	cis[fieldQuantity].Placeholder = "Quantity"

	if state == nil {
		state = widget.NewState()
	}

	return model{
		dispatch:      dispatch,
		sub:           sub,
		state:         state,
		countdown:     widget.Countdown{}.Sync(state),
		config:        cfg,
		spinner:       s,
		hideBalances:  cfg.HideBalances,
		convertInputs: cis,
	}
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd

	if m.sub != nil {
		cmds = append(cmds, listenForStore(m.sub))
	}
	cmds = append(cmds, m.spinner.Tick)
	cmds = append(cmds, dispatchCmd(m.dispatch, widget.Initialize{}))
	cmds = append(cmds, countdownTick())
	return tea.Batch(cmds...)
}
