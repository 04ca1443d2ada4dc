package board

import (
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
)

// Card is one opportunity as rendered for the current user.
type Card struct {
	Opportunity   domain.Opportunity `json:"opportunity"`
	ContactName   string             `json:"contactName,omitempty"`
	CompanyName   string             `json:"companyName,omitempty"`
	OwnerName     string             `json:"ownerName,omitempty"`
	Controls      Controls           `json:"controls"`
	StageOptions  []domain.Stage     `json:"stageOptions,omitempty"`
	StatusOptions []domain.Status    `json:"statusOptions,omitempty"`
}

// Column is one stage bucket.
type Column struct {
	Stage      domain.Stage `json:"stage"`
	Label      string       `json:"label"`
	Count      int          `json:"count"`
	TotalValue float64      `json:"totalValue"`
	Cards      []Card       `json:"cards"`
}

// Detail is the side panel of one opportunity.
type Detail struct {
	Card  Card          `json:"card"`
	Tasks []domain.Task `json:"tasks,omitempty"`
	// TasksLoaded is false until the tasks were fetched once.
	TasksLoaded bool `json:"tasksLoaded"`
}

// View is a consistent snapshot of everything the board page renders.
type View struct {
	User      domain.User      `json:"user"`
	Currency  string           `json:"currency"`
	Loaded    bool             `json:"loaded"`
	Columns   []Column         `json:"columns"`
	ActiveTab domain.Stage     `json:"activeTab"`
	TabRows   []Card           `json:"tabRows"`
	Filters   Filters          `json:"filters"`
	Applied   Filters          `json:"appliedFilters"`
	Sort      SortState        `json:"sort"`
	Loading   bool             `json:"loading"`
	Banners   []Banner         `json:"banners"`
	Pending   *Pending         `json:"pending,omitempty"`
	Workflow  WorkflowView     `json:"workflow"`
	Contacts  []domain.Contact `json:"contacts"`
	Query     string           `json:"query"`
	Detail    *Detail          `json:"detail,omitempty"`
}

// View renders the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneBannersLocked(c.opts.Now())
	c.touchLocked()

	v := View{
		User:      c.sess.User,
		Currency:  domain.Currency,
		Loaded:    c.loaded,
		ActiveTab: c.tab,
		Filters:   c.draft,
		Applied:   c.applied,
		Sort:      c.sort,
		Loading:   c.loading,
		Banners:   append([]Banner{}, c.banners...),
		Workflow:  c.workflowViewLocked(),
		Contacts:  c.pickerContactsLocked(),
		Query:     c.query.Encode(),
	}

	for _, stage := range domain.Stages() {
		opps := c.columns[stage]
		col := Column{Stage: stage, Label: stage.Label(), Count: len(opps), Cards: make([]Card, 0, len(opps))}
		for _, o := range opps {
			col.TotalValue += o.Value
			col.Cards = append(col.Cards, c.cardLocked(o))
		}
		v.Columns = append(v.Columns, col)
	}

	for _, o := range c.sort.Sorted(c.columns[c.tab]) {
		v.TabRows = append(v.TabRows, c.cardLocked(o))
	}

	if c.pending != nil {
		p := *c.pending
		v.Pending = &p
	}

	if i, ok := c.indexLocked(c.detailID); ok && c.detailID != 0 {
		tasks, loaded := c.tasks[c.detailID]
		v.Detail = &Detail{Card: c.cardLocked(c.all[i]), Tasks: cloneTasks(tasks), TasksLoaded: loaded}
	}
	return v
}

// CardFor renders a single cached opportunity.
func (c *Controller) CardFor(o domain.Opportunity) Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cardLocked(o)
}

func (c *Controller) cardLocked(o domain.Opportunity) Card {
	card := Card{
		Opportunity: o,
		Controls:    ControlsFor(c.sess.User, o),
	}
	if o.Contact != nil {
		card.ContactName = o.Contact.DisplayName()
		card.CompanyName = o.Contact.CompanyName()
	}
	if o.Owner != nil {
		card.OwnerName = o.Owner.Username
	}
	if card.Controls.Stage == Editable {
		card.StageOptions = domain.Stages()
	}
	if card.Controls.Status == Editable {
		card.StatusOptions = domain.ClosingStatuses()
	}
	return card
}
