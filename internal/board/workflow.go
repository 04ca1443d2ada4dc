package board

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
)

// WorkflowStep is where the contact-assignment popups are.
type WorkflowStep string

const (
	WorkflowIdle            WorkflowStep = "idle"
	WorkflowChooseMode      WorkflowStep = "choose_mode"
	WorkflowPrefilledCreate WorkflowStep = "prefilled_create"
	WorkflowPickOpportunity WorkflowStep = "pick_opportunity"
)

type workflowState struct {
	step    WorkflowStep
	contact *domain.Contact
	prefill *domain.OpportunityForm
}

// WorkflowView is the popup state rendered by the front end.
type WorkflowView struct {
	Step       WorkflowStep            `json:"step"`
	Contact    *domain.Contact         `json:"contact,omitempty"`
	Prefill    *domain.OpportunityForm `json:"prefill,omitempty"`
	Candidates []domain.Opportunity    `json:"candidates,omitempty"`
}

// startAssignment opens the "choose mode" popup for contactID. A failed lookup
// silently leaves the plain board.
func (c *Controller) startAssignment(ctx context.Context, contactID int64) {
	contact, err := c.api.GetContact(ctx, contactID)
	if err != nil {
		level := c.log.Warn
		if crmapi.IsNotFound(err) {
			level = c.log.Debug
		}
		level(ctx, "assignment contact lookup failed, staying on board",
			logger.Module("board"),
			logger.Action("assign_start"),
			zap.Int64("contact_id", contactID),
			logger.Err(err),
		)
		c.mu.Lock()
		c.finishWorkflowLocked()
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rememberContactLocked(contact)
	c.workflow = workflowState{step: WorkflowChooseMode, contact: &contact}
}

// needsAssignment reports whether a load carrying contactID should open the
// workflow: only from idle, or when the contact changed.
func (c *Controller) needsAssignment(contactID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := c.workflow.step
	if step == "" || step == WorkflowIdle || c.workflow.contact == nil {
		return true
	}
	return c.workflow.contact.ID != contactID
}

// ChooseNewOpportunity pre-fills the create form for the workflow's contact.
func (c *Controller) ChooseNewOpportunity() (domain.OpportunityForm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.workflow.step != WorkflowChooseMode {
		return domain.OpportunityForm{}, ErrWorkflowState
	}
	id := c.workflow.contact.ID
	form := domain.OpportunityForm{
		Title:     "Opportunity for " + c.workflow.contact.DisplayName(),
		ContactID: &id,
	}
	c.workflow.step = WorkflowPrefilledCreate
	c.workflow.prefill = &form
	return form, nil
}

// ChooseExistingOpportunity opens the second popup listing opportunities that
// have no contact yet.
func (c *Controller) ChooseExistingOpportunity() ([]domain.Opportunity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.workflow.step != WorkflowChooseMode {
		return nil, ErrWorkflowState
	}
	c.workflow.step = WorkflowPickOpportunity
	return c.candidatesLocked(), nil
}

func (c *Controller) candidatesLocked() []domain.Opportunity {
	var out []domain.Opportunity
	for _, o := range c.all {
		if !o.HasContact() {
			out = append(out, o)
		}
	}
	return out
}

// SelectOpportunity assigns the workflow's contact to opportunity id with
// exactly one backend call, then closes the popups.
func (c *Controller) SelectOpportunity(ctx context.Context, id int64) (domain.Opportunity, error) {
	if id <= 0 {
		return domain.Opportunity{}, domain.NewValidationError("opportunityId", "select an opportunity")
	}

	c.mu.Lock()
	if c.workflow.step != WorkflowPickOpportunity {
		c.mu.Unlock()
		return domain.Opportunity{}, ErrWorkflowState
	}
	contact := *c.workflow.contact
	i, ok := c.indexLocked(id)
	if !ok {
		c.mu.Unlock()
		return domain.Opportunity{}, fmt.Errorf("opportunity %d: %w", id, domain.ErrNotFound)
	}
	if c.all[i].HasContact() {
		c.mu.Unlock()
		return domain.Opportunity{}, domain.NewValidationError("opportunityId", "opportunity already has a contact")
	}
	c.touchLocked()
	c.mu.Unlock()

	updated, err := c.api.AssignContact(ctx, id, contact.ID)
	c.opts.Metrics.ObserveAction("assign_contact", err)
	if err != nil {
		c.fail(ctx, "assign_contact", id, err)
		return domain.Opportunity{}, err
	}
	if updated.Contact == nil || updated.Contact.IsStub() {
		updated.Contact = &contact
	}

	c.mu.Lock()
	c.replaceLocked(updated)
	c.finishWorkflowLocked()
	c.notifyLocked(BannerSuccess, "Contact assigned to "+updated.Title)
	c.mu.Unlock()

	c.log.Info(ctx, "contact assigned",
		logger.Module("board"),
		logger.Action("assign_contact"),
		logger.OpportunityID(id),
		zap.Int64("contact_id", contact.ID),
	)
	return updated, nil
}

// CancelWorkflow closes the popups from any step.
func (c *Controller) CancelWorkflow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishWorkflowLocked()
}

// finishWorkflowLocked returns to the plain board and drops the query
// parameters so the workflow does not start again on the next load.
func (c *Controller) finishWorkflowLocked() {
	c.workflow = workflowState{step: WorkflowIdle}
	c.query.Del(QueryAssign)
	c.query.Del(QueryContactID)
}

// Workflow returns the popup state.
func (c *Controller) Workflow() WorkflowView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workflowViewLocked()
}

func (c *Controller) workflowViewLocked() WorkflowView {
	step := c.workflow.step
	if step == "" {
		step = WorkflowIdle
	}
	v := WorkflowView{Step: step, Contact: c.workflow.contact, Prefill: c.workflow.prefill}
	if step == WorkflowPickOpportunity {
		v.Candidates = c.candidatesLocked()
	}
	return v
}
