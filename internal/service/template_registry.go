package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jjenkins/prazos/internal/model"
)

// TemplateLookup resolves a deadline type by code
type TemplateLookup interface {
	Get(code string) (*model.DeadlineType, error)
}

// TemplateRegistry is an immutable, validated set of deadline types
type TemplateRegistry struct {
	byCode map[string]model.DeadlineType
}

// NewTemplateRegistry validates every template up front, so a malformed one
// never reaches a calculation. Codes are case-insensitive and must be unique.
func NewTemplateRegistry(types []model.DeadlineType) (*TemplateRegistry, error) {
	r := &TemplateRegistry{byCode: make(map[string]model.DeadlineType, len(types))}
	for _, t := range types {
		t.Code = normalizeCode(t.Code)
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byCode[t.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %s", model.ErrInvalidTemplate, t.Code)
		}
		r.byCode[t.Code] = t
	}
	return r, nil
}

// Get returns a copy of the template registered under code
func (r *TemplateRegistry) Get(code string) (*model.DeadlineType, error) {
	t, ok := r.byCode[normalizeCode(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownDeadlineType, code)
	}
	return &t, nil
}

// All returns the templates ordered by area of law, then code
func (r *TemplateRegistry) All() []model.DeadlineType {
	out := make([]model.DeadlineType, 0, len(r.byCode))
	for _, t := range r.byCode {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AreaOfLaw != out[j].AreaOfLaw {
			return out[i].AreaOfLaw < out[j].AreaOfLaw
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Len returns the number of registered templates
func (r *TemplateRegistry) Len() int {
	return len(r.byCode)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
