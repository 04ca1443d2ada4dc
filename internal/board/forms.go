package board

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
)

// PendingKind is the change a confirmation modal is asking about.
type PendingKind string

const (
	PendingUpdate PendingKind = "update"
	PendingDelete PendingKind = "delete"
)

// Pending is a change waiting for the user's confirmation.
type Pending struct {
	Kind          PendingKind             `json:"kind"`
	OpportunityID int64                   `json:"opportunityId"`
	Title         string                  `json:"title"`
	Prompt        string                  `json:"prompt"`
	Form          *domain.OpportunityForm `json:"form,omitempty"`
}

// Create submits the create form. No confirmation is asked. The new record is
// placed first on the board.
func (c *Controller) Create(ctx context.Context, form domain.OpportunityForm) (domain.Opportunity, error) {
	if err := form.Validate(domain.FormCreate, c.opts.ProgressStep); err != nil {
		return domain.Opportunity{}, err
	}

	c.mu.Lock()
	if err := c.beginPrimaryLocked(); err != nil {
		c.mu.Unlock()
		return domain.Opportunity{}, err
	}
	c.mu.Unlock()
	defer c.endPrimary()

	created, err := c.api.CreateOpportunity(ctx, form.Payload())
	c.opts.Metrics.ObserveAction("create", err)
	if err != nil {
		c.fail(ctx, "create", 0, err)
		return domain.Opportunity{}, err
	}
	c.resolveContact(ctx, &created)

	c.mu.Lock()
	c.all = append([]domain.Opportunity{created}, c.all...)
	c.regroupLocked()
	if c.workflow.step == WorkflowPrefilledCreate {
		c.finishWorkflowLocked()
	}
	c.notifyLocked(BannerSuccess, "Opportunity created successfully")
	c.mu.Unlock()

	c.log.Info(ctx, "opportunity created",
		logger.Module("board"),
		logger.Action("create"),
		logger.OpportunityID(created.ID),
		zap.String("stage", string(created.Stage())),
	)
	return created, nil
}

// RequestUpdate validates the edit form and parks it until Confirm.
func (c *Controller) RequestUpdate(id int64, form domain.OpportunityForm) (Pending, error) {
	if err := form.Validate(domain.FormUpdate, c.opts.ProgressStep); err != nil {
		return Pending{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading {
		return Pending{}, ErrBusy
	}
	opp, err := c.ownedLocked(id)
	if err != nil {
		return Pending{}, err
	}
	if form.Stage == "" && domain.Status(form.Status).IsTerminal() && !opp.Phase.IsClosed() {
		return Pending{}, domain.NewValidationError("status", domain.ErrStatusRequiresClosed.Error())
	}

	p := Pending{
		Kind:          PendingUpdate,
		OpportunityID: id,
		Title:         opp.Title,
		Prompt:        "Are you sure you want to update this opportunity?",
		Form:          &form,
	}
	c.pending = &p
	c.touchLocked()
	return p, nil
}

// RequestDelete parks a delete until Confirm.
func (c *Controller) RequestDelete(id int64) (Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading {
		return Pending{}, ErrBusy
	}
	opp, err := c.ownedLocked(id)
	if err != nil {
		return Pending{}, err
	}

	p := Pending{
		Kind:          PendingDelete,
		OpportunityID: id,
		Title:         opp.Title,
		Prompt:        fmt.Sprintf("Delete %q? This cannot be undone.", opp.Title),
	}
	c.pending = &p
	c.touchLocked()
	return p, nil
}

// CancelPending closes the confirmation modal without sending anything.
func (c *Controller) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// PendingChange returns the change awaiting confirmation, if any.
func (c *Controller) PendingChange() (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Pending{}, false
	}
	return *c.pending, true
}

// Confirm sends the parked update or delete. For an update the returned record
// is the server's; for a delete it is the record as last cached.
func (c *Controller) Confirm(ctx context.Context) (domain.Opportunity, error) {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return domain.Opportunity{}, ErrNoPending
	}
	p := *c.pending
	opp, err := c.ownedLocked(p.OpportunityID)
	if err != nil {
		c.mu.Unlock()
		return domain.Opportunity{}, err
	}
	// The change stays parked while another save is in flight.
	if err := c.beginPrimaryLocked(); err != nil {
		c.mu.Unlock()
		return domain.Opportunity{}, err
	}
	c.pending = nil
	c.mu.Unlock()
	defer c.endPrimary()

	switch p.Kind {
	case PendingUpdate:
		return c.update(ctx, p.OpportunityID, *p.Form)
	case PendingDelete:
		return opp, c.delete(ctx, opp)
	}
	return domain.Opportunity{}, fmt.Errorf("unknown pending change %q", p.Kind)
}

func (c *Controller) update(ctx context.Context, id int64, form domain.OpportunityForm) (domain.Opportunity, error) {
	updated, err := c.api.UpdateOpportunity(ctx, id, form.Payload())
	c.opts.Metrics.ObserveAction("update", err)
	if err != nil {
		c.fail(ctx, "update", id, err)
		return domain.Opportunity{}, err
	}
	c.resolveContact(ctx, &updated)

	c.mu.Lock()
	c.replaceLocked(updated)
	c.notifyLocked(BannerSuccess, "Opportunity updated successfully")
	c.mu.Unlock()

	c.log.Info(ctx, "opportunity updated",
		logger.Module("board"),
		logger.Action("update"),
		logger.OpportunityID(id),
	)
	return updated, nil
}

func (c *Controller) delete(ctx context.Context, opp domain.Opportunity) error {
	err := c.api.DeleteOpportunity(ctx, opp.ID)
	c.opts.Metrics.ObserveAction("delete", err)
	if err != nil {
		c.fail(ctx, "delete", opp.ID, err)
		return err
	}

	c.mu.Lock()
	if i, ok := c.indexLocked(opp.ID); ok {
		c.all = append(c.all[:i], c.all[i+1:]...)
	}
	delete(c.tasks, opp.ID)
	if c.detailID == opp.ID {
		c.detailID = 0
	}
	c.regroupLocked()
	c.notifyLocked(BannerSuccess, "Opportunity deleted successfully")
	c.mu.Unlock()

	c.log.Info(ctx, "opportunity deleted",
		logger.Module("board"),
		logger.Action("delete"),
		logger.OpportunityID(opp.ID),
	)
	return nil
}

// resolveContact replaces a bare {id} contact with the full record, from the
// known-contact set or, failing that, a lookup.
func (c *Controller) resolveContact(ctx context.Context, opp *domain.Opportunity) {
	if opp.Contact == nil {
		return
	}
	if !opp.Contact.IsStub() {
		c.mu.Lock()
		c.rememberContactLocked(*opp.Contact)
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	known, ok := c.contacts[opp.Contact.ID]
	c.mu.Unlock()
	if ok {
		opp.Contact = &known
		return
	}

	contact, err := c.api.GetContact(ctx, opp.Contact.ID)
	if err != nil {
		c.log.Warn(ctx, "could not resolve contact",
			logger.Module("board"),
			logger.Action("resolve_contact"),
			logger.OpportunityID(opp.ID),
			logger.Err(err),
		)
		return
	}
	c.mu.Lock()
	c.rememberContactLocked(contact)
	c.mu.Unlock()
	opp.Contact = &contact
}
