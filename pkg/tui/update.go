package tui

import (
	"time"

	"ftxwidget/pkg/store"
	"ftxwidget/pkg/widget"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case store.Event:
		if m.sub != nil {
			cmds = append(cmds, listenForStore(m.sub))
		}
		if msg.State != nil {
			m.state = msg.State
			m.countdown = m.countdown.Sync(m.state)
			if n := len(m.state.CurrencyNames); m.marketIdx >= n && n > 0 {
				m.marketIdx = n - 1
			}
		}
		if msg.Type == store.EventActionIgnored {
			break
		}
		switch msg.Action {
		case "cancelConversion":
			if m.statusMessage == "" {
				m.statusMessage = "Conversion cancelled"
				cmds = append(cmds, clearStatusAfter(3*time.Second))
			}
		case "conversionWasSuccessful":
			m.resetConvertForm()
		}

	case countdownTickMsg:
		var expired bool
		m.countdown, expired = m.countdown.Tick(m.state)
		if expired {
			m.statusMessage = "Quote expired"
			cmds = append(cmds,
				dispatchCmd(m.dispatch, widget.CancelConversion{Epoch: m.state.ConversionInProgress.Epoch, Expired: true}),
				clearStatusAfter(3*time.Second),
			)
		}
		cmds = append(cmds, countdownTick())

	case clearStatusMsg:
		m.statusMessage = ""

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.typing {
			return m.updateConvertForm(msg)
		}
		return m.updateKeys(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q":
		return m, tea.Quit
	case "b":
		m.hideBalances = !m.hideBalances
		return m, nil
	}

	if !m.state.HasInitialized {
		return m, nil
	}

	if m.state.IsConnected {
		switch key {
		case "1", "m":
			return m, dispatchCmd(m.dispatch, widget.OpenView{View: widget.ViewMarkets})
		case "2", "v":
			m.formError = ""
			return m, dispatchCmd(m.dispatch, widget.OpenView{View: widget.ViewConvert})
		case "3", "s":
			return m, dispatchCmd(m.dispatch, widget.OpenView{View: widget.ViewSummary})
		}
	}

	switch m.state.CurrentView {
	case widget.ViewOptIn:
		return m.updateOptIn(key)
	case widget.ViewMarkets:
		return m.updateMarkets(key)
	case widget.ViewConvert:
		return m.updateConvert(key)
	}
	return m, nil
}

func (m model) updateOptIn(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter", "c":
		m.statusMessage = "Opening the connect page..."
		return m, tea.Batch(dispatchCmd(m.dispatch, widget.StartConnect{}), clearStatusAfter(5*time.Second))
	case "1", "m":
		return m, dispatchCmd(m.dispatch, widget.OpenView{View: widget.ViewMarkets})
	}
	return m, nil
}

func (m model) updateMarkets(key string) (tea.Model, tea.Cmd) {
	if m.state.AssetDetail != nil {
		switch key {
		case "esc", "backspace", "left", "h":
			return m, dispatchCmd(m.dispatch, widget.HideAssetDetail{})
		}
		return m, nil
	}

	switch key {
	case "up", "k":
		if m.marketIdx > 0 {
			m.marketIdx--
		}
	case "down", "j":
		if m.marketIdx < len(m.state.CurrencyNames)-1 {
			m.marketIdx++
		}
	case "enter", "right", "l":
		if sym := m.selectedSymbol(); sym != "" {
			return m, dispatchCmd(m.dispatch, widget.ShowAssetDetail{Symbol: sym})
		}
	case "esc":
		if !m.state.IsConnected {
			return m, dispatchCmd(m.dispatch, widget.OpenView{View: widget.ViewOptIn})
		}
	}
	return m, nil
}

func (m model) updateConvert(key string) (tea.Model, tea.Cmd) {
	conv := m.state.ConversionInProgress
	if conv == nil {
		switch key {
		case "enter", "i", "tab":
			m.typing = true
			m.formError = ""
			m.focusIdx = fieldFrom
			cmd := m.focusInput()
			return m, cmd
		}
		return m, nil
	}

	switch {
	case conv.Complete:
		switch key {
		case "enter", "esc":
			return m, dispatchCmd(m.dispatch, widget.CloseConversion{})
		}
	case conv.IsSubmitting:
		// awaiting the exchange
	case conv.Quote == nil:
		if key == "esc" {
			return m, dispatchCmd(m.dispatch, widget.CancelConversion{Epoch: conv.Epoch})
		}
	default:
		switch key {
		case "enter", "y":
			return m, dispatchCmd(m.dispatch, widget.SubmitConversion{})
		case "esc", "n":
			return m, dispatchCmd(m.dispatch, widget.CancelConversion{Epoch: conv.Epoch})
		}
	}
	return m, nil
}

func (m model) updateConvertForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.typing = false
		m.blurInputs()
		return m, nil
	case "tab", "down":
		m.focusIdx = (m.focusIdx + 1) % fieldCount
		cmd := m.focusInput()
		return m, cmd
	case "shift+tab", "up":
		m.focusIdx = (m.focusIdx + fieldCount - 1) % fieldCount
		cmd := m.focusInput()
		return m, cmd
	case "enter":
		if m.focusIdx < fieldQuantity {
			m.focusIdx++
			cmd := m.focusInput()
			return m, cmd
		}
		preview, err := m.buildPreview()
		if err != nil {
			m.formError = err.Error()
			return m, nil
		}
		m.formError = ""
		m.typing = false
		m.blurInputs()
		return m, dispatchCmd(m.dispatch, preview)
	}

	var cmd tea.Cmd
	m.convertInputs[m.focusIdx], cmd = m.convertInputs[m.focusIdx].Update(msg)
	return m, cmd
}

func (m *model) focusInput() tea.Cmd {
	m.blurInputs()
	return m.convertInputs[m.focusIdx].Focus()
}

func (m *model) blurInputs() {
	for i := range m.convertInputs {
		m.convertInputs[i].Blur()
	}
}

func (m *model) resetConvertForm() {
	for i := range m.convertInputs {
		m.convertInputs[i].Reset()
	}
	m.focusIdx = fieldFrom
	m.formError = ""
}
