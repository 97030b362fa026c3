package service

import (
	"context"
	"fmt"

	"github.com/jjenkins/prazos/internal/model"
	"github.com/jjenkins/prazos/seed"
)

// Catalog is the holiday and deadline type data a deployment runs with
type Catalog struct {
	Holidays      model.HolidayConfig
	DeadlineTypes []model.DeadlineType
}

// HolidaySource loads the holiday configuration
type HolidaySource interface {
	LoadConfig(ctx context.Context) (model.HolidayConfig, error)
}

// DeadlineTypeSource loads every deadline type
type DeadlineTypeSource interface {
	GetAll(ctx context.Context) ([]model.DeadlineType, error)
}

// LoadSeedCatalog reads the catalog from the seed files in dir, or from the
// embedded defaults when dir is empty
func LoadSeedCatalog(parser *Parser, dir string) (*Catalog, error) {
	content, err := seed.Read(dir, seed.HolidaysFile)
	if err != nil {
		return nil, err
	}
	hs, err := parser.ParseHolidays(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", seed.HolidaysFile, err)
	}

	content, err = seed.Read(dir, seed.DeadlineTypesFile)
	if err != nil {
		return nil, err
	}
	ds, err := parser.ParseDeadlineTypes(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", seed.DeadlineTypesFile, err)
	}

	return &Catalog{Holidays: hs.Config, DeadlineTypes: ds.Types}, nil
}

// LoadStoreCatalog reads the catalog from the database
func LoadStoreCatalog(ctx context.Context, holidays HolidaySource, types DeadlineTypeSource) (*Catalog, error) {
	cfg, err := holidays.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	dts, err := types.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(dts) == 0 {
		return nil, fmt.Errorf("no deadline types in the database, run the import command first")
	}
	return &Catalog{Holidays: cfg, DeadlineTypes: dts}, nil
}
