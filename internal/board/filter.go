package board

import (
	"fmt"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
)

// Filters narrow the board. Every set field must match (AND). Empty fields
// match everything.
type Filters struct {
	Priority domain.Priority `json:"priority,omitempty"`
	Stage    domain.Stage    `json:"stage,omitempty"`
	MinValue *float64        `json:"minValue,omitempty"`
	MaxValue *float64        `json:"maxValue,omitempty"`
}

// Validate rejects unknown enums and an inverted range.
func (f Filters) Validate() error {
	if f.Priority != "" && !f.Priority.IsValid() {
		return domain.NewValidationError("priority", fmt.Sprintf("unknown priority %q", f.Priority))
	}
	if f.Stage != "" && !f.Stage.IsValid() {
		return domain.NewValidationError("stage", fmt.Sprintf("unknown stage %q", f.Stage))
	}
	if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		return domain.NewValidationError("minValue", "must not exceed maxValue")
	}
	return nil
}

// Normalize upper-cases the enum fields, accepting any case like the rest of
// the board, then validates the result.
func (f Filters) Normalize() (Filters, error) {
	if f.Priority != "" {
		p, err := domain.ParsePriority(string(f.Priority))
		if err != nil {
			return Filters{}, domain.NewValidationError("priority", fmt.Sprintf("unknown priority %q", f.Priority))
		}
		f.Priority = p
	}
	if f.Stage != "" {
		s, err := domain.ParseStage(string(f.Stage))
		if err != nil {
			return Filters{}, domain.NewValidationError("stage", fmt.Sprintf("unknown stage %q", f.Stage))
		}
		f.Stage = s
	}
	return f, f.Validate()
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Priority == "" && f.Stage == "" && f.MinValue == nil && f.MaxValue == nil
}

// Match reports whether o passes every set filter.
func (f Filters) Match(o domain.Opportunity) bool {
	if f.Priority != "" && o.Priority != f.Priority {
		return false
	}
	if f.Stage != "" && o.Stage() != f.Stage {
		return false
	}
	if f.MinValue != nil && o.Value < *f.MinValue {
		return false
	}
	if f.MaxValue != nil && o.Value > *f.MaxValue {
		return false
	}
	return true
}

// Apply returns the records of list that match, in order.
func (f Filters) Apply(list []domain.Opportunity) []domain.Opportunity {
	out := make([]domain.Opportunity, 0, len(list))
	for _, o := range list {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}

// Group buckets list by stage, keeping order within each bucket.
func Group(list []domain.Opportunity) map[domain.Stage][]domain.Opportunity {
	groups := make(map[domain.Stage][]domain.Opportunity, 4)
	for _, s := range domain.Stages() {
		groups[s] = nil
	}
	for _, o := range list {
		groups[o.Stage()] = append(groups[o.Stage()], o)
	}
	return groups
}

// SetFilters stores the draft filters. They take effect on ApplyFilters.
func (c *Controller) SetFilters(f Filters) error {
	f, err := f.Normalize()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = f
	c.touchLocked()
	return nil
}

// ApplyFilters re-runs the draft filters over the full cached list and regroups.
// No request is sent.
func (c *Controller) ApplyFilters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied = c.draft
	c.regroupLocked()
	return c.applied
}

// ClearFilters drops both draft and applied filters.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Filters{}
	c.applied = Filters{}
	c.regroupLocked()
}

func (c *Controller) regroupLocked() {
	c.columns = Group(c.applied.Apply(c.all))
}
