package board

import "github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"

// RenderMode is how a control is drawn for the current user.
type RenderMode string

const (
	Hidden   RenderMode = "hidden"
	ReadOnly RenderMode = "read_only"
	Editable RenderMode = "editable"
)

// OwnerOnlyTooltip explains read-only controls to non-owners.
const OwnerOnlyTooltip = "Only the owner can modify this opportunity"

// Controls is the render mode of every mutating control on a card.
type Controls struct {
	Stage             RenderMode `json:"stage"`
	Status            RenderMode `json:"status"`
	ProgressDecrement RenderMode `json:"progressDecrement"`
	ProgressIncrement RenderMode `json:"progressIncrement"`
	Edit              RenderMode `json:"edit"`
	Delete            RenderMode `json:"delete"`
	Tooltip           string     `json:"tooltip,omitempty"`
}

// CanMutate is the ownership gate shared by every mutating action. Role does
// not widen it.
func CanMutate(user domain.User, opp domain.Opportunity) bool {
	return opp.OwnedBy(user.ID)
}

// RenderModeFor is the base mode of opp's controls for user.
func RenderModeFor(user domain.User, opp domain.Opportunity) RenderMode {
	if CanMutate(user, opp) {
		return Editable
	}
	return ReadOnly
}

// ControlsFor derives each control's mode. Non-owners get read-only selects and
// no buttons; the status select only exists once the opportunity is CLOSED;
// progress buttons are disabled at the bounds.
func ControlsFor(user domain.User, opp domain.Opportunity) Controls {
	mode := RenderModeFor(user, opp)

	c := Controls{
		Stage:             mode,
		Status:            mode,
		ProgressDecrement: mode,
		ProgressIncrement: mode,
		Edit:              mode,
		Delete:            mode,
	}
	if !opp.Phase.IsClosed() {
		c.Status = Hidden
	}

	if mode != Editable {
		c.ProgressDecrement = Hidden
		c.ProgressIncrement = Hidden
		c.Edit = Hidden
		c.Delete = Hidden
		c.Tooltip = OwnerOnlyTooltip
		return c
	}

	if opp.Progress <= domain.ProgressMin {
		c.ProgressDecrement = ReadOnly
	}
	if opp.Progress >= domain.ProgressMax {
		c.ProgressIncrement = ReadOnly
	}
	return c
}
