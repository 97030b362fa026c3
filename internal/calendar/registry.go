package calendar

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jjenkins/prazos/internal/model"
)

// Holiday is one non-working day of a resolved year
type Holiday struct {
	Date  time.Time
	Name  string
	Layer Layer
}

// Layer identifies which part of the configuration produced a holiday
type Layer string

const (
	LayerNationalFixed  Layer = "NATIONAL_FIXED"
	LayerNationalMoving Layer = "NATIONAL_MOVING"
	LayerRecess         Layer = "RECESS"
	LayerState          Layer = "STATE"
	LayerMunicipal      Layer = "MUNICIPAL"
)

// yearSet is the immutable holiday set of one (year, jurisdiction) pair,
// keyed by day of the year.
type yearSet struct {
	year int
	days map[int]Holiday
}

func (s *yearSet) lookup(date time.Time) (Holiday, bool) {
	h, ok := s.days[date.YearDay()]
	return h, ok
}

// YearCache memoizes resolved holiday years. Entries are written once and
// never mutated, so lookups need no locking. A cache may be shared between
// registries; keys carry the fingerprint of the configuration they came from.
type YearCache struct {
	entries sync.Map
	group   singleflight.Group
}

// NewYearCache creates an empty cache
func NewYearCache() *YearCache {
	return &YearCache{}
}

// Len returns the number of cached (year, jurisdiction) sets
func (c *YearCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *YearCache) getOrBuild(key string, build func() *yearSet) *yearSet {
	if v, ok := c.entries.Load(key); ok {
		return v.(*yearSet)
	}
	v, _, _ := c.group.Do(key, func() (any, error) {
		built := build()
		actual, _ := c.entries.LoadOrStore(key, built)
		return actual, nil
	})
	return v.(*yearSet)
}

// Registry merges the five holiday layers (national fixed, national moving,
// forensic recess, state, municipal) into per-year exclusion sets.
type Registry struct {
	cfg         model.HolidayConfig
	fingerprint string
	states      map[string]bool
	cities      map[string]bool
	cache       *YearCache
}

// NewRegistry validates cfg and builds a registry around it. A nil cache gets
// a private one.
func NewRegistry(cfg model.HolidayConfig, cache *YearCache) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid holiday configuration: %w", err)
	}
	if cache == nil {
		cache = NewYearCache()
	}

	r := &Registry{
		cfg:    normalizeConfig(cfg),
		states: make(map[string]bool),
		cities: make(map[string]bool),
		cache:  cache,
	}
	r.fingerprint = fingerprint(r.cfg)

	for _, h := range r.cfg.Fixed {
		switch h.Scope {
		case model.ScopeState:
			r.states[h.State] = true
		case model.ScopeMunicipal:
			r.cities[cityKey(h.State, h.Municipality)] = true
		}
	}
	for _, j := range r.cfg.Coverage {
		if j.State != "" {
			r.states[j.State] = true
		}
		if j.Municipality != "" {
			r.cities[cityKey(j.State, j.Municipality)] = true
		}
	}

	return r, nil
}

// Fingerprint identifies the configuration the registry was built from
func (r *Registry) Fingerprint() string {
	return r.fingerprint
}

// Incomplete reports whether the registry lacks local holiday data for j, in
// which case only national holidays apply.
func (r *Registry) Incomplete(j model.Jurisdiction) bool {
	j = j.Normalize()
	if j.State == "" || !r.states[j.State] {
		return true
	}
	if j.Municipality != "" && !r.cities[cityKey(j.State, j.Municipality)] {
		return true
	}
	return false
}

// Effective narrows j to the part the registry has local holidays for. An
// unknown municipality resolves to its state and an unknown state to the
// national calendar; the holiday sets are the same either way.
func (r *Registry) Effective(j model.Jurisdiction) model.Jurisdiction {
	j = j.Normalize()
	if j.Municipality != "" && r.cities[cityKey(j.State, j.Municipality)] {
		return j
	}
	j.Municipality = ""
	if !r.states[j.State] {
		j.State = ""
	}
	return j
}

// IsHoliday reports whether date is a holiday or recess day in j
func (r *Registry) IsHoliday(date time.Time, j model.Jurisdiction) bool {
	_, ok := r.HolidayName(date, j)
	return ok
}

// HolidayName returns the name of the holiday on date, if any
func (r *Registry) HolidayName(date time.Time, j model.Jurisdiction) (string, bool) {
	h, ok := r.set(date.Year(), j).lookup(date)
	return h.Name, ok
}

// HolidaysInRange returns every holiday date in [start, end], ascending
func (r *Registry) HolidaysInRange(start, end time.Time, j model.Jurisdiction) []time.Time {
	var out []time.Time
	for _, h := range r.holidaysBetween(start, end, j) {
		out = append(out, h.Date)
	}
	return out
}

// Holidays lists the holidays of year in j, ascending by date
func (r *Registry) Holidays(year int, j model.Jurisdiction) ([]Holiday, error) {
	if year < model.MinYear || year > model.MaxYear {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidYear, year)
	}
	return r.holidaysBetween(model.Date(year, time.January, 1), model.Date(year, time.December, 31), j), nil
}

func (r *Registry) holidaysBetween(start, end time.Time, j model.Jurisdiction) []Holiday {
	var out []Holiday
	for year := start.Year(); year <= end.Year(); year++ {
		s := r.set(year, j)
		days := make([]int, 0, len(s.days))
		for d := range s.days {
			days = append(days, d)
		}
		sort.Ints(days)
		for _, d := range days {
			h := s.days[d]
			if h.Date.Before(start) || h.Date.After(end) {
				continue
			}
			out = append(out, h)
		}
	}
	return out
}

// set keys the cache on the effective jurisdiction so request input cannot
// grow it past the configured states and municipalities.
func (r *Registry) set(year int, j model.Jurisdiction) *yearSet {
	j = r.Effective(j)
	key := fmt.Sprintf("%s|%d|%s|%s", r.fingerprint, year, j.State, strings.ToLower(j.Municipality))
	return r.cache.getOrBuild(key, func() *yearSet {
		return r.build(year, j)
	})
}

// build resolves one year. Layers are added in order and the first holiday
// recorded for a day keeps its name, so a national holiday is never
// reported under a local name.
func (r *Registry) build(year int, j model.Jurisdiction) *yearSet {
	s := &yearSet{year: year, days: make(map[int]Holiday)}
	add := func(date time.Time, name string, layer Layer) {
		if date.Year() != year {
			return
		}
		if _, exists := s.days[date.YearDay()]; exists {
			return
		}
		s.days[date.YearDay()] = Holiday{Date: date, Name: name, Layer: layer}
	}

	for _, h := range r.cfg.Fixed {
		if h.Scope != model.ScopeNational {
			continue
		}
		if d, ok := h.OccursIn(year); ok {
			add(d, h.Name, LayerNationalFixed)
		}
	}

	// Offsets may push an observance into the neighbouring year
	for y := year - 1; y <= year+1; y++ {
		moving, err := MovingHolidays(y, r.cfg.Moving)
		if err != nil {
			continue
		}
		for _, m := range moving {
			add(m.Date, m.Name, LayerNationalMoving)
		}
	}

	// A wrapping recess that started last year still runs into this one
	for _, rec := range r.cfg.Recess {
		for _, startYear := range []int{year - 1, year} {
			start, end := rec.Span(startYear)
			for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
				add(d, rec.Name, LayerRecess)
			}
		}
	}

	if j.State != "" {
		for _, h := range r.cfg.Fixed {
			if h.Scope != model.ScopeState || h.State != j.State {
				continue
			}
			if d, ok := h.OccursIn(year); ok {
				add(d, h.Name, LayerState)
			}
		}
	}

	if j.State != "" && j.Municipality != "" {
		for _, h := range r.cfg.Fixed {
			if h.Scope != model.ScopeMunicipal || h.State != j.State || !strings.EqualFold(h.Municipality, j.Municipality) {
				continue
			}
			if d, ok := h.OccursIn(year); ok {
				add(d, h.Name, LayerMunicipal)
			}
		}
	}

	return s
}

func normalizeConfig(cfg model.HolidayConfig) model.HolidayConfig {
	out := model.HolidayConfig{
		Fixed:    make([]model.FixedHoliday, len(cfg.Fixed)),
		Moving:   append([]model.MovingHolidayRule(nil), cfg.Moving...),
		Recess:   append([]model.RecessPeriod(nil), cfg.Recess...),
		Coverage: make([]model.Jurisdiction, len(cfg.Coverage)),
	}
	for i, h := range cfg.Fixed {
		h.State = strings.ToUpper(strings.TrimSpace(h.State))
		h.Municipality = strings.TrimSpace(h.Municipality)
		out.Fixed[i] = h
	}
	for i, j := range cfg.Coverage {
		out.Coverage[i] = j.Normalize()
	}
	return out
}

func fingerprint(cfg model.HolidayConfig) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%+v", cfg)))
	return hex.EncodeToString(sum[:])
}

func cityKey(state, municipality string) string {
	return state + "/" + strings.ToLower(municipality)
}
