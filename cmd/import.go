package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jjenkins/prazos/internal/service"
	"github.com/jjenkins/prazos/internal/store"
)

var (
	importDir   string
	importForce bool
	importYears []int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import holidays and deadline types into PostgreSQL",
	Long: `Import loads the YAML seed (holidays, moving holiday rules, the forensic
recess and deadline types) into PostgreSQL. Seed files whose checksum did not
change since the last import are skipped.

With --year the official national holidays of that year are fetched from
BrasilAPI and the ones not yet known are stored as one-off holidays.

Examples:
  # Import the embedded seed
  ./prazos import

  # Import a local seed directory, even if unchanged
  ./prazos import --dir ./seed --force

  # Also import the official national holidays of 2026
  ./prazos import --year 2026`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importDir, "dir", "", "Seed directory (defaults to PRAZOS_SEED_DIR, then the embedded seed)")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Import seed files even if unchanged")
	importCmd.Flags().IntSliceVar(&importYears, "year", nil, "Fetch official national holidays for these years")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to database")
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		return err
	}

	dir := importDir
	if dir == "" {
		dir = cfg.SeedDir
	}

	holidayStore := store.NewHolidayStore(db)
	importer := service.NewImporter(
		service.NewParser(),
		store.NewTemplateStore(db),
		holidayStore,
		service.NewHolidayClient(cfg.HolidayAPIURL),
		logger,
	)
	out := cmd.OutOrStdout()

	stats, err := importer.ImportSeed(ctx, dir, importForce)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("import cancelled")
		}
		return fmt.Errorf("seed import failed: %w", err)
	}
	importer.PrintSummary(out, stats)
	failed := stats.Failed

	for _, year := range importYears {
		yearStats, err := importer.ImportNationalHolidays(ctx, year)
		if err != nil {
			return fmt.Errorf("holiday import for %d failed: %w", year, err)
		}
		fmt.Fprintf(out, "\nNational holidays %d:", year)
		importer.PrintSummary(out, yearStats)
		failed += yearStats.Failed
	}

	summary, err := service.NewMetricsService(db).CalculateAndStore(ctx)
	if err != nil {
		logger.Warn("failed to calculate audit metrics", "error", err)
	} else {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "=== Audit Log ===")
		fmt.Fprintf(out, "Calculations:     %d\n", summary.TotalCalculations)
		fmt.Fprintf(out, "Doubled:          %d\n", summary.Doubled)
		fmt.Fprintf(out, "Rolled forward:   %d\n", summary.RolledForward)
		fmt.Fprintf(out, "Incomplete data:  %d (%.1f%%)\n", summary.Incomplete, summary.IncompleteRate*100)
		if summary.TopDeadlineType != "" {
			fmt.Fprintf(out, "Most used type:   %s (%d)\n", summary.TopDeadlineType, summary.TopDeadlineTypeCount)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d entries failed to import", failed)
	}
	return nil
}
