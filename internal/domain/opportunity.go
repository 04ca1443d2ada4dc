package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Currency is the unit of Opportunity.Value.
const Currency = "TND"

// Progress bounds.
const (
	ProgressMin = 0
	ProgressMax = 100
)

// Priority ranks an opportunity.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities for sorting: HIGH=3, MEDIUM=2, LOW=1, unknown=0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// ParsePriority accepts the wire name in any case.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return p, nil
}

// Opportunity is a deal tracked on the board.
type Opportunity struct {
	ID        int64
	Title     string
	Value     float64
	Contact   *Contact
	Owner     *User
	Priority  Priority
	Progress  int
	Phase     Phase
	CreatedAt Timestamp
}

// Stage is a shortcut for o.Phase.Stage().
func (o Opportunity) Stage() Stage { return o.Phase.Stage() }

// Status is a shortcut for o.Phase.Status().
func (o Opportunity) Status() Status { return o.Phase.Status() }

// HasContact reports whether a contact is attached.
func (o Opportunity) HasContact() bool { return o.Contact != nil && o.Contact.ID != 0 }

// OwnedBy reports whether userID owns the opportunity. A record without an owner
// (not yet assigned by the server) is owned by nobody.
func (o Opportunity) OwnedBy(userID int64) bool {
	return o.Owner != nil && o.Owner.ID == userID
}

// ClampProgress keeps p inside [ProgressMin, ProgressMax].
func ClampProgress(p int) int {
	if p < ProgressMin {
		return ProgressMin
	}
	if p > ProgressMax {
		return ProgressMax
	}
	return p
}

type opportunityJSON struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Value     float64   `json:"value"`
	Contact   *Contact  `json:"contact"`
	Owner     *User     `json:"owner"`
	Priority  Priority  `json:"priority"`
	Progress  int       `json:"progress"`
	Stage     Stage     `json:"stage"`
	Status    Status    `json:"status"`
	CreatedAt Timestamp `json:"createdAt"`
}

// MarshalJSON writes stage and status as separate fields, the backend's shape.
func (o Opportunity) MarshalJSON() ([]byte, error) {
	return json.Marshal(opportunityJSON{
		ID:        o.ID,
		Title:     o.Title,
		Value:     o.Value,
		Contact:   o.Contact,
		Owner:     o.Owner,
		Priority:  o.Priority,
		Progress:  o.Progress,
		Stage:     o.Stage(),
		Status:    o.Status(),
		CreatedAt: o.CreatedAt,
	})
}

// UnmarshalJSON rebuilds the phase from stage/status and clamps progress.
func (o *Opportunity) UnmarshalJSON(data []byte) error {
	var raw opportunityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	phase, err := PhaseFromWire(raw.Stage, raw.Status)
	if err != nil {
		return fmt.Errorf("opportunity %d: %w", raw.ID, err)
	}
	if raw.Contact != nil && raw.Contact.ID == 0 {
		raw.Contact = nil
	}
	*o = Opportunity{
		ID:        raw.ID,
		Title:     raw.Title,
		Value:     raw.Value,
		Contact:   raw.Contact,
		Owner:     raw.Owner,
		Priority:  raw.Priority,
		Progress:  ClampProgress(raw.Progress),
		Phase:     phase,
		CreatedAt: raw.CreatedAt,
	}
	return nil
}

// Page is the backend's paged envelope.
type Page[T any] struct {
	Content []T `json:"content"`
}
