package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jjenkins/prazos/internal/calendar"
	"github.com/jjenkins/prazos/internal/config"
	"github.com/jjenkins/prazos/internal/logging"
	"github.com/jjenkins/prazos/internal/metrics"
	"github.com/jjenkins/prazos/internal/service"
	"github.com/jjenkins/prazos/internal/store"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "prazos",
	Short: "Calculadora de prazos processuais da Defensoria Pública",
	Long: `Calculates legal deadlines for the public defender's office: reading time,
doubled deadlines, business or calendar day counting, national, state and
municipal holidays, the forensic recess and roll-forward to the next
business day.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger = logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// services is what the commands that calculate deadlines share
type services struct {
	db        *sql.DB
	registry  *calendar.Registry
	templates *service.TemplateRegistry
	engine    *service.DeadlineEngine
}

func (s *services) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// newServices loads the catalog from the configured source and builds the
// engine. reg may be nil.
func newServices(ctx context.Context, reg prometheus.Registerer) (*services, error) {
	svc := &services{}

	var cat *service.Catalog
	switch cfg.Source {
	case config.SourcePostgres:
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		svc.db = db
		if err := store.Migrate(ctx, db); err != nil {
			svc.Close()
			return nil, err
		}
		cat, err = service.LoadStoreCatalog(ctx, store.NewHolidayStore(db), store.NewTemplateStore(db))
		if err != nil {
			svc.Close()
			return nil, err
		}
	default:
		var err error
		cat, err = service.LoadSeedCatalog(service.NewParser(), cfg.SeedDir)
		if err != nil {
			return nil, err
		}
	}

	registry, err := calendar.NewRegistry(cat.Holidays, calendar.NewYearCache())
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("invalid holiday data: %w", err)
	}
	templates, err := service.NewTemplateRegistry(cat.DeadlineTypes)
	if err != nil {
		svc.Close()
		return nil, err
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	svc.registry = registry
	svc.templates = templates
	svc.engine = service.NewDeadlineEngine(registry, templates, m, logger)

	logger.Info("catalog loaded",
		"source", cfg.Source,
		"deadline_types", templates.Len(),
		"fixed_holidays", len(cat.Holidays.Fixed),
		"fingerprint", registry.Fingerprint())

	return svc, nil
}
