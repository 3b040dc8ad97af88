package tui

import (
	"fmt"
	"strings"

	"ftxwidget/pkg/utils"
	"ftxwidget/pkg/widget"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

func (m model) View() string {
	if !m.state.HasInitialized {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			fmt.Sprintf("%s Loading markets and balances...", m.spinner.View()))
	}

	var body, footer string
	switch m.state.CurrentView {
	case widget.ViewOptIn:
		body, footer = m.viewOptIn()
	case widget.ViewMarkets:
		if m.state.AssetDetail != nil {
			body, footer = m.viewAssetDetail()
		} else {
			body, footer = m.viewMarkets()
		}
	case widget.ViewConvert:
		body, footer = m.viewConvert()
	case widget.ViewSummary:
		body, footer = m.viewSummary()
	}

	status := ""
	if m.statusMessage != "" {
		status = infoStyle.Render(m.statusMessage)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		"",
		body,
		"",
		status,
		subtleStyle.Render(footer+" • b: hide/show balances • q: quit"),
	)
}

func (m model) viewHeader() string {
	title := titleStyle.Render("FTX Widget " + Version)
	if !m.state.IsConnected {
		return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", subtleStyle.Render("not connected"))
	}

	tabs := []struct {
		view  widget.View
		label string
	}{
		{widget.ViewMarkets, "1 Markets"},
		{widget.ViewConvert, "2 Convert"},
		{widget.ViewSummary, "3 Summary"},
	}
	var rendered []string
	for _, t := range tabs {
		if t.view == m.state.CurrentView {
			rendered = append(rendered, activeTabStyle.Render(t.label))
		} else {
			rendered = append(rendered, subtleStyle.Render(t.label))
		}
	}
	total := "Balance " + m.displayUSD(m.state.BalanceTotal)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", strings.Join(rendered, "  "), "   ", total)
}

func (m model) viewOptIn() (string, string) {
	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Connect your FTX account"),
		"",
		"Link an account to see balances and convert between currencies.",
		"Market data is available without connecting.",
	)
	return boxStyle.Render(content), "enter/c: connect • m: browse markets"
}

func (m model) viewMarkets() (string, string) {
	if len(m.state.MarketData) == 0 {
		return errStyle.Render("No market data available."), "esc: back"
	}

	header := fmt.Sprintf("%-10s %14s %10s %16s", "Market", "Price", "24h", "Volume (USD)")
	rows := []string{tableHeaderStyle.Render(header)}

	visible := m.height - 10
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.marketIdx >= visible {
		start = m.marketIdx - visible + 1
	}
	end := start + visible
	if end > len(m.state.MarketData) {
		end = len(m.state.MarketData)
	}

	for i := start; i < end; i++ {
		t := m.state.MarketData[i]
		change := utils.FormatPercent(t.PercentChangeDay)
		if t.PercentChangeDay.IsNegative() {
			change = downStyle.Render(fmt.Sprintf("%10s", change))
		} else {
			change = upStyle.Render(fmt.Sprintf("%10s", change))
		}
		line := fmt.Sprintf("%-10s %14s %s %16s",
			utils.TruncateString(t.Symbol, 10),
			utils.FormatDecimal(t.Price, 4),
			change,
			utils.FormatDecimal(t.VolumeDay, 0),
		)
		if i == m.marketIdx {
			line = selectedStyle.Render(line)
		}
		rows = append(rows, " "+line)
	}

	footer := "↑/↓: select • enter: details"
	if m.state.IsConnected {
		footer += " • 2: convert • 3: summary"
	} else {
		footer += " • esc: back"
	}
	return boxStyle.Render(strings.Join(rows, "\n")), footer
}

func (m model) viewAssetDetail() (string, string) {
	d := m.state.AssetDetail
	header := titleStyle.Render(d.CurrencyName)

	stats := "No market data."
	if d.MarketData != nil {
		stats = fmt.Sprintf("Price %s   24h %s   Volume $%s",
			utils.FormatDecimal(d.MarketData.Price, 4),
			utils.FormatPercent(d.MarketData.PercentChangeDay),
			utils.FormatDecimal(d.MarketData.VolumeDay, 0),
		)
	}
	if amount, ok := m.availableBalance(d.CurrencyName); ok {
		stats += "\nHolding " + m.displayAmount(amount)
	}

	var graph string
	switch d.Chart.Status {
	case widget.ChartPending:
		graph = m.spinner.View() + " Loading chart..."
	case widget.ChartFailed:
		graph = errStyle.Render("Chart data unavailable.")
	case widget.ChartReady:
		closes := utils.Floats(chartCloses(d.Chart.Points))
		if len(closes) < 2 {
			graph = "Not enough data to draw graph."
			break
		}
		width := m.width - 16
		if width < 10 {
			width = 10
		}
		height := m.height - 14
		if height < 5 {
			height = 5
		}
		graph = asciigraph.Plot(closes,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption("7 day price (4h candles)"),
		)
	}

	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", stats, "", graph))
	return content, "esc: back to markets"
}

func (m model) viewConvert() (string, string) {
	conv := m.state.ConversionInProgress
	if conv == nil {
		return m.viewConvertForm()
	}

	summary := fmt.Sprintf("%s %s → %s", conv.Quantity.String(), conv.From, conv.To)

	switch {
	case conv.Complete:
		content := lipgloss.JoinVertical(lipgloss.Center,
			infoStyle.Render("Conversion complete"),
			"",
			summary,
		)
		return boxStyle.Render(content), "enter/esc: close"

	case conv.IsSubmitting:
		return boxStyle.Render(m.spinner.View() + " Submitting " + summary + "..."), ""

	case conv.Quote == nil:
		return boxStyle.Render(m.spinner.View() + " Requesting quote for " + summary + "..."), "esc: cancel"
	}

	q := conv.Quote
	lines := []string{
		titleStyle.Render("Confirm conversion"),
		"",
		summary,
		fmt.Sprintf("%-10s %s", "Price", utils.FormatDecimal(q.Price, 8)),
		fmt.Sprintf("%-10s %s %s", "Cost", utils.FormatDecimal(q.Cost, 8), conv.From),
		fmt.Sprintf("%-10s %s %s", "Receive", utils.FormatDecimal(q.Proceeds, 8), conv.To),
		"",
		infoStyle.Render(fmt.Sprintf("Confirm (%ds)", m.countdown.Remaining())),
	}
	return boxStyle.Render(strings.Join(lines, "\n")), "enter/y: confirm • esc/n: cancel"
}

func (m model) viewConvertForm() (string, string) {
	labels := []string{"From", "To", "Quantity"}
	var inputs []string
	for i, label := range labels {
		inputs = append(inputs, fmt.Sprintf("%-10s %s", label, m.convertInputs[i].View()))
	}

	from := strings.ToUpper(strings.TrimSpace(m.convertInputs[fieldFrom].Value()))
	if from != "" {
		amount, _ := m.availableBalance(from)
		available := m.displayAmount(amount)
		inputs = append(inputs, "", subtleStyle.Render(fmt.Sprintf("Available: %s %s", available, from)))
	}
	if m.formError != "" {
		inputs = append(inputs, "", errStyle.Render(m.formError))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Convert"), "", strings.Join(inputs, "\n"))
	if m.typing {
		return boxStyle.Render(content), "tab: next field • enter: preview • esc: stop editing"
	}
	return boxStyle.Render(content), "enter: edit • 1: markets • 3: summary"
}

func (m model) viewSummary() (string, string) {
	rows := m.balanceRows()
	if len(rows) == 0 {
		return subtleStyle.Render("No balances."), "1: markets • 2: convert"
	}

	header := fmt.Sprintf("%-8s %20s %16s", "Coin", "Amount", "Value")
	lines := []string{tableHeaderStyle.Render(header)}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf(" %-8s %20s %16s",
			r.Coin,
			m.displayAmount(r.Amount),
			m.displayUSD(r.Value),
		))
	}
	lines = append(lines, "", fmt.Sprintf(" %-8s %20s %16s", "Total", "", m.displayUSD(m.state.BalanceTotal)))
	return boxStyle.Render(strings.Join(lines, "\n")), "1: markets • 2: convert"
}
