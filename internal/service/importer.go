package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jjenkins/prazos/internal/calendar"
	"github.com/jjenkins/prazos/internal/model"
	"github.com/jjenkins/prazos/seed"
)

// TemplateWriter persists deadline types
type TemplateWriter interface {
	Upsert(ctx context.Context, t *model.DeadlineType) (bool, error)
}

// HolidayWriter persists holiday data and remembers imported seed checksums
type HolidayWriter interface {
	UpsertFixed(ctx context.Context, h *model.FixedHoliday) (bool, error)
	UpsertMoving(ctx context.Context, m *model.MovingHolidayRule) (bool, error)
	UpsertRecess(ctx context.Context, r *model.RecessPeriod) (bool, error)
	AddCoverage(ctx context.Context, j model.Jurisdiction) error
	LoadConfig(ctx context.Context) (model.HolidayConfig, error)
	SeedChecksum(ctx context.Context, fileName string) (string, error)
	SaveSeedChecksum(ctx context.Context, fileName, checksum string) error
}

// HolidayFetcher fetches the official national holidays of a year
type HolidayFetcher interface {
	FetchHolidays(ctx context.Context, year int) ([]PublicHoliday, error)
}

// ImportStats tracks import statistics
type ImportStats struct {
	Files     int
	Skipped   int
	Total     int
	Inserted  int
	Updated   int
	Unchanged int
	Failed    int
}

func (s *ImportStats) record(inserted bool, err error) {
	switch {
	case err != nil:
		s.Failed++
	case inserted:
		s.Inserted++
	default:
		s.Updated++
	}
}

// Importer loads seed files and official holiday lists into the database
type Importer struct {
	parser    *Parser
	templates TemplateWriter
	holidays  HolidayWriter
	client    HolidayFetcher
	logger    *slog.Logger
}

// NewImporter creates a new Importer. client may be nil when only seed
// imports are needed.
func NewImporter(parser *Parser, templates TemplateWriter, holidays HolidayWriter, client HolidayFetcher, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		parser:    parser,
		templates: templates,
		holidays:  holidays,
		client:    client,
		logger:    logger,
	}
}

// ImportSeed imports the holiday and deadline type seed files from dir (the
// embedded defaults when dir is empty). Files whose checksum matches the last
// import are skipped unless force is set.
func (i *Importer) ImportSeed(ctx context.Context, dir string, force bool) (*ImportStats, error) {
	stats := &ImportStats{}

	for _, name := range []string{seed.HolidaysFile, seed.DeadlineTypesFile} {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		content, err := seed.Read(dir, name)
		if err != nil {
			return stats, err
		}
		stats.Files++

		var checksum string
		var importFile func() (failed int, err error)
		switch name {
		case seed.HolidaysFile:
			hs, err := i.parser.ParseHolidays(content)
			if err != nil {
				return stats, fmt.Errorf("failed to parse %s: %w", name, err)
			}
			checksum = hs.Checksum
			importFile = func() (int, error) { return i.importHolidays(ctx, &hs.Config, stats) }
		case seed.DeadlineTypesFile:
			ds, err := i.parser.ParseDeadlineTypes(content)
			if err != nil {
				return stats, fmt.Errorf("failed to parse %s: %w", name, err)
			}
			checksum = ds.Checksum
			importFile = func() (int, error) { return i.importDeadlineTypes(ctx, ds.Types, stats) }
		}

		previous, err := i.holidays.SeedChecksum(ctx, name)
		if err != nil {
			return stats, err
		}
		if !force && previous == checksum {
			i.logger.Info("seed file unchanged, skipping", "file", name, "checksum", checksum)
			stats.Skipped++
			continue
		}

		i.logger.Info("importing seed file", "file", name)
		failed, err := importFile()
		if err != nil {
			return stats, err
		}
		if failed > 0 {
			i.logger.Warn("seed file imported with failures, checksum not recorded", "file", name, "failed", failed)
			continue
		}
		if err := i.holidays.SaveSeedChecksum(ctx, name, checksum); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (i *Importer) importHolidays(ctx context.Context, cfg *model.HolidayConfig, stats *ImportStats) (int, error) {
	before := stats.Failed

	for idx := range cfg.Fixed {
		h := &cfg.Fixed[idx]
		stats.Total++
		inserted, err := i.holidays.UpsertFixed(ctx, h)
		if err != nil {
			i.logger.Error("failed to import holiday", "name", h.Name, "error", err)
		}
		stats.record(inserted, err)
	}
	for idx := range cfg.Moving {
		m := &cfg.Moving[idx]
		stats.Total++
		inserted, err := i.holidays.UpsertMoving(ctx, m)
		if err != nil {
			i.logger.Error("failed to import moving holiday", "name", m.Name, "error", err)
		}
		stats.record(inserted, err)
	}
	for idx := range cfg.Recess {
		r := &cfg.Recess[idx]
		stats.Total++
		inserted, err := i.holidays.UpsertRecess(ctx, r)
		if err != nil {
			i.logger.Error("failed to import recess", "name", r.Name, "error", err)
		}
		stats.record(inserted, err)
	}
	for _, j := range cfg.Coverage {
		if err := i.holidays.AddCoverage(ctx, j); err != nil {
			i.logger.Error("failed to import coverage", "jurisdiction", j.String(), "error", err)
			stats.Failed++
		}
	}

	if err := ctx.Err(); err != nil {
		return stats.Failed - before, err
	}
	return stats.Failed - before, nil
}

func (i *Importer) importDeadlineTypes(ctx context.Context, types []model.DeadlineType, stats *ImportStats) (int, error) {
	before := stats.Failed

	for idx := range types {
		t := &types[idx]
		stats.Total++
		inserted, err := i.templates.Upsert(ctx, t)
		if err != nil {
			i.logger.Error("failed to import deadline type", "code", t.Code, "error", err)
		}
		stats.record(inserted, err)
	}

	if err := ctx.Err(); err != nil {
		return stats.Failed - before, err
	}
	return stats.Failed - before, nil
}

// ImportNationalHolidays fetches the official national holidays of year and
// stores the ones the registry does not already know as one-off holidays of
// that year (decreed closures, new laws not yet in the seed).
func (i *Importer) ImportNationalHolidays(ctx context.Context, year int) (*ImportStats, error) {
	if i.client == nil {
		return nil, fmt.Errorf("no holiday API client configured")
	}
	stats := &ImportStats{}

	i.logger.Info("fetching national holidays", "year", year)
	published, err := i.client.FetchHolidays(ctx, year)
	if err != nil {
		return nil, err
	}

	cfg, err := i.holidays.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	registry, err := calendar.NewRegistry(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}

	for _, p := range published {
		if p.Type != "" && p.Type != "national" {
			continue
		}
		stats.Total++

		// an empty jurisdiction only sees national holidays and the recess
		if registry.IsHoliday(p.Date, model.Jurisdiction{}) {
			stats.Unchanged++
			continue
		}

		h := &model.FixedHoliday{
			Name:  p.Name,
			Month: p.Date.Month(),
			Day:   p.Date.Day(),
			Year:  year,
			Scope: model.ScopeNational,
		}
		inserted, err := i.holidays.UpsertFixed(ctx, h)
		if err != nil {
			i.logger.Error("failed to import holiday", "name", p.Name, "date", p.Date.Format(model.DateLayout), "error", err)
		} else {
			i.logger.Info("imported one-off national holiday", "name", p.Name, "date", p.Date.Format(model.DateLayout))
		}
		stats.record(inserted, err)
	}

	return stats, nil
}

// PrintSummary prints the import statistics
func (i *Importer) PrintSummary(w io.Writer, stats *ImportStats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Import Summary ===")
	fmt.Fprintf(w, "Files:           %d (%d unchanged)\n", stats.Files, stats.Skipped)
	fmt.Fprintf(w, "Entries:         %d\n", stats.Total)
	fmt.Fprintf(w, "Inserted:        %d\n", stats.Inserted)
	fmt.Fprintf(w, "Updated:         %d\n", stats.Updated)
	fmt.Fprintf(w, "Already known:   %d\n", stats.Unchanged)
	fmt.Fprintf(w, "Failed:          %d\n", stats.Failed)

	if stats.Total > 0 {
		successRate := float64(stats.Total-stats.Failed) / float64(stats.Total) * 100
		fmt.Fprintf(w, "Success rate:    %.1f%%\n", successRate)
	}
}
