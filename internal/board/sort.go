package board

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
)

// SortKey is a sortable column of a stage tab.
type SortKey string

const (
	SortValue    SortKey = "value"
	SortProgress SortKey = "progress"
	SortPriority SortKey = "priority"
	SortStatus   SortKey = "status"
)

// ParseSortKey accepts the column name in any case.
func ParseSortKey(raw string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	switch k {
	case SortValue, SortProgress, SortPriority, SortStatus:
		return k, nil
	}
	return "", domain.NewValidationError("key", fmt.Sprintf("unknown sort key %q", raw))
}

// SortState is the active column and direction. An empty Key keeps board order.
type SortState struct {
	Key       SortKey `json:"key,omitempty"`
	Ascending bool    `json:"ascending"`
}

// Toggle clicks column key: the same column flips direction, a new one starts
// ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		return SortState{Key: key, Ascending: !s.Ascending}
	}
	return SortState{Key: key, Ascending: true}
}

func compareBy(key SortKey, a, b domain.Opportunity) int {
	switch key {
	case SortValue:
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	case SortProgress:
		return a.Progress - b.Progress
	case SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortStatus:
		return strings.Compare(string(a.Status()), string(b.Status()))
	}
	return 0
}

// Sorted returns a sorted copy of list. Ties are broken by id, and descending is
// the exact reverse of ascending.
func (s SortState) Sorted(list []domain.Opportunity) []domain.Opportunity {
	out := slices.Clone(list)
	if s.Key == "" {
		return out
	}
	slices.SortFunc(out, func(a, b domain.Opportunity) int {
		if c := compareBy(s.Key, a, b); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	if !s.Ascending {
		slices.Reverse(out)
	}
	return out
}

// SelectTab makes stage the active tab.
func (c *Controller) SelectTab(stage domain.Stage) error {
	if !stage.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStage, stage)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab = stage
	c.touchLocked()
	return nil
}

// ToggleSort clicks a column header of the active tab.
func (c *Controller) ToggleSort(key SortKey) SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sort = c.sort.Toggle(key)
	c.touchLocked()
	return c.sort
}

// TabRows returns the active tab's records with the sort applied. Other tabs
// are never sorted.
func (c *Controller) TabRows() (domain.Stage, []domain.Opportunity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab, c.sort.Sorted(c.columns[c.tab])
}
