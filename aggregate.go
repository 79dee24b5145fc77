package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	budget "tryognik-dashboard/internal/budget/domain"
	"tryognik-dashboard/internal/budget/infrastructure/ledgerfile"
	budgetinterfaces "tryognik-dashboard/internal/budget/interfaces"
)

var (
	flagLedgerFile   string
	flagLedgerFormat string
	flagNow          string
	flagOutFormat    string
	flagOutPath      string
	flagReportTitle  string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate a ledger file and print the snapshot or render a report",
	RunE:  runAggregate,
}

func init() {
	aggregateCmd.Flags().StringVarP(&flagLedgerFile, "file", "f", "", "ledger file (csv or xlsx)")
	aggregateCmd.Flags().StringVar(&flagLedgerFormat, "ledger-format", "", "ledger format: csv or xlsx (default from file extension)")
	aggregateCmd.Flags().StringVar(&flagNow, "now", "", "reference time, RFC3339 or YYYY-MM-DD (default current time)")
	aggregateCmd.Flags().StringVar(&flagOutFormat, "format", "json", "output format: json, pdf or xlsx")
	aggregateCmd.Flags().StringVarP(&flagOutPath, "out", "o", "", "output path (default stdout for json)")
	aggregateCmd.Flags().StringVar(&flagReportTitle, "title", budgetinterfaces.DefaultReportTitle, "report title for pdf and xlsx")
	_ = aggregateCmd.MarkFlagRequired("file")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	now, err := parseNow(flagNow, time.Now())
	if err != nil {
		return err
	}
	format, err := resolveLedgerFormat(flagLedgerFormat, flagLedgerFile)
	if err != nil {
		return err
	}

	f, err := os.Open(flagLedgerFile)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	pub, err := aggregateLedger(f, format, filepath.Base(flagLedgerFile), now)
	if err != nil {
		return err
	}

	data, err := renderAggregate(pub, flagOutFormat, flagReportTitle, now)
	if err != nil {
		return err
	}
	if flagOutPath == "" {
		if flagOutFormat != "json" {
			return fmt.Errorf("--out is required for %s output", flagOutFormat)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(flagOutPath, data, 0o644)
}

func aggregateLedger(r io.Reader, format ledgerfile.Format, filename string, now time.Time) (budget.Publication, error) {
	rows, err := ledgerfile.Decode(format, r)
	if err != nil {
		return budget.Publication{}, err
	}
	snapshot := budget.Aggregate(rows, now)
	return budget.NewPublication(snapshot, budget.SourceCLI, filename, len(rows), now), nil
}

func renderAggregate(pub budget.Publication, format, title string, now time.Time) ([]byte, error) {
	input := budgetinterfaces.ReportInput{
		Title:       title,
		GeneratedAt: now,
		Snapshot:    pub.Snapshot,
		Source:      pub.Source,
		Filename:    pub.Filename,
	}
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(map[string]any{
			"metrics":       pub.Snapshot,
			"snapshot_hash": pub.Digest,
			"rows":          pub.RowCount,
		}, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "pdf":
		return budgetinterfaces.BuildInvestorReportPDF(input)
	case "xlsx":
		return budgetinterfaces.BuildInvestorReportXLSX(input)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func resolveLedgerFormat(explicit, filename string) (ledgerfile.Format, error) {
	if explicit != "" {
		return ledgerfile.ParseFormat(explicit)
	}
	return ledgerfile.FormatFromFilename(filename, ""), nil
}

// parseNow accepts RFC3339 or a bare date (midnight UTC). Empty means fallback.
func parseNow(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: want RFC3339 or YYYY-MM-DD", value)
	}
	return t, nil
}
