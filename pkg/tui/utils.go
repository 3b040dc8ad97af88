package tui

import (
	"fmt"
	"os/exec"
	"runtime"

	"ftxwidget/pkg/utils"

	"github.com/atotto/clipboard"
	"github.com/shopspring/decimal"
)

func (m model) displayAmount(d decimal.Decimal) string {
	return utils.Mask(utils.FormatDecimal(d, int32(m.config.TokenDecimals)), m.hideBalances)
}

func (m model) displayUSD(d *decimal.Decimal) string {
	return utils.Mask(utils.FormatUSD(d, int32(m.config.FiatDecimals)), m.hideBalances)
}

// openBrowser opens the specified URL in the default browser.
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default: // "linux", "freebsd", "openbsd", "netbsd"
		cmd = "xdg-open"
	}
	args = append(args, url)
	return exec.Command(cmd, args...).Start()
}

// BrowserNavigator opens connect URLs in the system browser and falls back
// to copying them to the clipboard.
type BrowserNavigator struct{}

func (BrowserNavigator) Navigate(url string) error {
	if err := openBrowser(url); err == nil {
		return nil
	}
	if err := clipboard.WriteAll(url); err != nil {
		return fmt.Errorf("could not open browser or copy %s: %w", url, err)
	}
	return nil
}
