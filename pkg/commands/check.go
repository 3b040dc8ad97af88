package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"ftxwidget/pkg/config"
	"ftxwidget/pkg/ftx"
	"ftxwidget/pkg/logger"
	"ftxwidget/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var checkJSON bool

var errCheckFailed = errors.New("configuration check failed")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and probe the exchange",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output check results as JSON")
}

// prober is the part of the exchange client the check exercises.
type prober interface {
	HasCredentials() bool
	GetFuturesData(ctx context.Context) ([]models.FuturesTicker, error)
	GetAccountBalances(ctx context.Context) (map[string]decimal.Decimal, bool, error)
}

var _ prober = (*ftx.Client)(nil)

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, path, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	client := ftx.NewClient(cfg, logger.WithComponent(logger.Discard(), "ftx"))
	report := checkConfig(ctx, cfg, path, client)

	out := cmd.OutOrStdout()
	if checkJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printReport(out, report)
	}

	if !report.ValidStructure {
		return errCheckFailed
	}
	for _, p := range report.Probes {
		if p.Status != "ok" {
			return errCheckFailed
		}
	}
	return nil
}

// checkConfig validates cfg and, when it is structurally valid, probes the
// public and signed endpoints.
func checkConfig(ctx context.Context, cfg config.Config, path string, ex prober) models.CheckReport {
	report := models.CheckReport{
		ConfigPath:     path,
		BaseURL:        cfg.Exchange.BaseURL,
		HasCredentials: ex.HasCredentials(),
	}
	report.StructureErrors = cfg.Validate()
	report.ValidStructure = len(report.StructureErrors) == 0
	if !report.ValidStructure {
		return report
	}

	report.Probes = append(report.Probes, probe("futures", func() error {
		tickers, err := ex.GetFuturesData(ctx)
		report.MarketCount = len(tickers)
		return err
	}))

	if !report.HasCredentials {
		return report
	}
	report.Probes = append(report.Probes, probe("balances", func() error {
		_, authInvalid, err := ex.GetAccountBalances(ctx)
		if err != nil {
			return err
		}
		if authInvalid {
			return errors.New("credentials rejected")
		}
		report.Authenticated = true
		return nil
	}))
	return report
}

func probe(name string, fn func() error) models.ProbeResult {
	start := time.Now()
	err := fn()
	result := models.ProbeResult{
		Name:    name,
		Status:  "ok",
		Latency: time.Since(start).Round(time.Millisecond).String(),
	}
	if err != nil {
		result.Status = "error"
		result.Error = err.Error()
	}
	return result
}

func printReport(w io.Writer, report models.CheckReport) {
	fmt.Fprintf(w, "Testing configuration at: %s\n", report.ConfigPath)
	if !report.ValidStructure {
		for _, e := range report.StructureErrors {
			fmt.Fprintf(w, "Error: %s\n", e)
		}
		return
	}

	fmt.Fprintf(w, "Exchange: %s\n", report.BaseURL)
	if !report.HasCredentials {
		fmt.Fprintln(w, "No API credentials configured, balances and conversions are unavailable.")
	}
	for _, p := range report.Probes {
		if p.Status == "ok" {
			fmt.Fprintf(w, "  %-10s OK (%s)\n", p.Name, p.Latency)
		} else {
			fmt.Fprintf(w, "  %-10s Failed: %s\n", p.Name, p.Error)
		}
	}
	fmt.Fprintf(w, "Found %d perpetual markets.\n", report.MarketCount)
	if report.Authenticated {
		fmt.Fprintln(w, "Credentials verified.")
	}
}
