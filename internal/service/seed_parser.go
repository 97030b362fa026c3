package service

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jjenkins/prazos/internal/model"
)

// HolidaySeed is a parsed holiday seed file
type HolidaySeed struct {
	Config   model.HolidayConfig
	Checksum string
}

// DeadlineTypeSeed is a parsed deadline type seed file
type DeadlineTypeSeed struct {
	Types    []model.DeadlineType
	Checksum string
}

type holidayFile struct {
	National  []fixedEntry    `yaml:"national"`
	Moving    []movingEntry   `yaml:"moving"`
	Recess    []recessEntry   `yaml:"recess"`
	State     []fixedEntry    `yaml:"state"`
	Municipal []fixedEntry    `yaml:"municipal"`
	Coverage  []coverageEntry `yaml:"coverage"`
}

type fixedEntry struct {
	Name         string `yaml:"name"`
	Date         string `yaml:"date"`
	Year         int    `yaml:"year"`
	State        string `yaml:"state"`
	Municipality string `yaml:"municipality"`
}

type movingEntry struct {
	Name             string `yaml:"name"`
	OffsetFromEaster int    `yaml:"offset_from_easter"`
}

type recessEntry struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type coverageEntry struct {
	State        string `yaml:"state"`
	Municipality string `yaml:"municipality"`
}

type deadlineTypeFile struct {
	DeadlineTypes []deadlineTypeEntry `yaml:"deadline_types"`
}

type deadlineTypeEntry struct {
	Code                     string `yaml:"code"`
	Name                     string `yaml:"name"`
	LegalBasis               string `yaml:"legal_basis"`
	LegalDays                int    `yaml:"legal_days"`
	DoublesForPublicDefender bool   `yaml:"doubles_for_public_defender"`
	CountsInBusinessDays     bool   `yaml:"counts_in_business_days"`
	ReadingTimeDays          *int   `yaml:"reading_time_days"`
	AreaOfLaw                string `yaml:"area_of_law"`
	Category                 string `yaml:"category"`
}

// Parser turns seed files into model values
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseHolidays parses a holiday seed file and validates the resulting config
func (p *Parser) ParseHolidays(content []byte) (*HolidaySeed, error) {
	var f holidayFile
	if err := decodeStrict(content, &f); err != nil {
		return nil, fmt.Errorf("failed to decode holidays: %w", err)
	}

	var cfg model.HolidayConfig
	add := func(entries []fixedEntry, scope model.HolidayScope) error {
		for _, e := range entries {
			month, day, err := parseMonthDay(e.Date)
			if err != nil {
				return fmt.Errorf("holiday %q: %w", e.Name, err)
			}
			cfg.Fixed = append(cfg.Fixed, model.FixedHoliday{
				Name:         e.Name,
				Month:        month,
				Day:          day,
				Year:         e.Year,
				Scope:        scope,
				State:        strings.ToUpper(strings.TrimSpace(e.State)),
				Municipality: strings.TrimSpace(e.Municipality),
			})
		}
		return nil
	}
	if err := add(f.National, model.ScopeNational); err != nil {
		return nil, err
	}
	if err := add(f.State, model.ScopeState); err != nil {
		return nil, err
	}
	if err := add(f.Municipal, model.ScopeMunicipal); err != nil {
		return nil, err
	}

	for _, m := range f.Moving {
		cfg.Moving = append(cfg.Moving, model.MovingHolidayRule{Name: m.Name, OffsetFromEaster: m.OffsetFromEaster})
	}

	for _, r := range f.Recess {
		startMonth, startDay, err := parseMonthDay(r.Start)
		if err != nil {
			return nil, fmt.Errorf("recess %q: %w", r.Name, err)
		}
		endMonth, endDay, err := parseMonthDay(r.End)
		if err != nil {
			return nil, fmt.Errorf("recess %q: %w", r.Name, err)
		}
		cfg.Recess = append(cfg.Recess, model.RecessPeriod{
			Name:       r.Name,
			StartMonth: startMonth,
			StartDay:   startDay,
			EndMonth:   endMonth,
			EndDay:     endDay,
		})
	}

	for _, c := range f.Coverage {
		cfg.Coverage = append(cfg.Coverage, model.Jurisdiction{State: c.State, Municipality: c.Municipality}.Normalize())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid holiday seed: %w", err)
	}

	return &HolidaySeed{Config: cfg, Checksum: p.calculateChecksum(content)}, nil
}

// ParseDeadlineTypes parses a deadline type seed file. A missing
// reading_time_days falls back to model.DefaultReadingTimeDays.
func (p *Parser) ParseDeadlineTypes(content []byte) (*DeadlineTypeSeed, error) {
	var f deadlineTypeFile
	if err := decodeStrict(content, &f); err != nil {
		return nil, fmt.Errorf("failed to decode deadline types: %w", err)
	}

	types := make([]model.DeadlineType, 0, len(f.DeadlineTypes))
	for _, e := range f.DeadlineTypes {
		reading := model.DefaultReadingTimeDays
		if e.ReadingTimeDays != nil {
			reading = *e.ReadingTimeDays
		}
		t := model.DeadlineType{
			Code:                     strings.ToUpper(strings.TrimSpace(e.Code)),
			Name:                     e.Name,
			LegalBasis:               e.LegalBasis,
			LegalDays:                e.LegalDays,
			DoublesForPublicDefender: e.DoublesForPublicDefender,
			CountsInBusinessDays:     e.CountsInBusinessDays,
			ReadingTimeDays:          reading,
			AreaOfLaw:                model.AreaOfLaw(strings.ToUpper(e.AreaOfLaw)),
			Category:                 e.Category,
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	return &DeadlineTypeSeed{Types: types, Checksum: p.calculateChecksum(content)}, nil
}

// decodeStrict decodes YAML rejecting unknown keys, so a typo in a seed file
// fails loudly instead of silently dropping a holiday
func decodeStrict(content []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	return nil
}

// parseMonthDay parses "MM-DD"
func parseMonthDay(s string) (time.Month, int, error) {
	ms, ds, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid date %q, want MM-DD", s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	d, err := strconv.Atoi(ds)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid day in %q: %w", s, err)
	}
	return time.Month(m), d, nil
}

// calculateChecksum computes MD5 hash of content
func (p *Parser) calculateChecksum(content []byte) string {
	hash := md5.Sum(content)
	return hex.EncodeToString(hash[:])
}
