package crmapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
)

// ListOpportunities fetches the first page of opportunities, at most size records.
func (c *Client) ListOpportunities(ctx context.Context, size int) ([]domain.Opportunity, error) {
	var page domain.Page[domain.Opportunity]
	q := url.Values{"size": {strconv.Itoa(size)}}
	if err := c.do(ctx, "list_opportunities", http.MethodGet, "/opportunities/all", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

// CreateOpportunity creates a record; the server assigns id, owner and createdAt.
func (c *Client) CreateOpportunity(ctx context.Context, payload domain.OpportunityPayload) (domain.Opportunity, error) {
	var out domain.Opportunity
	err := c.do(ctx, "create_opportunity", http.MethodPost, "/opportunities/add", nil, payload, &out)
	return out, err
}

// UpdateOpportunity sends a partial update; omitted fields are left unchanged.
func (c *Client) UpdateOpportunity(ctx context.Context, id int64, payload domain.OpportunityPayload) (domain.Opportunity, error) {
	var out domain.Opportunity
	err := c.do(ctx, "update_opportunity", http.MethodPut, idPath("/opportunities/update/%d", id), nil, payload, &out)
	return out, err
}

// DeleteOpportunity removes a record. There is no undo.
func (c *Client) DeleteOpportunity(ctx context.Context, id int64) error {
	return c.do(ctx, "delete_opportunity", http.MethodDelete, idPath("/opportunities/delete/%d", id), nil, nil, nil)
}

// IncrementProgress raises progress by step on the server.
func (c *Client) IncrementProgress(ctx context.Context, id int64, step int) (domain.Opportunity, error) {
	var out domain.Opportunity
	q := url.Values{"increment": {strconv.Itoa(step)}}
	err := c.do(ctx, "increment_progress", http.MethodPut, idPath("/opportunities/increment-progress/%d", id), q, nil, &out)
	return out, err
}

// DecrementProgress lowers progress by step on the server.
func (c *Client) DecrementProgress(ctx context.Context, id int64, step int) (domain.Opportunity, error) {
	var out domain.Opportunity
	q := url.Values{"decrement": {strconv.Itoa(step)}}
	err := c.do(ctx, "decrement_progress", http.MethodPut, idPath("/opportunities/decrement-progress/%d", id), q, nil, &out)
	return out, err
}

// ChangeStage moves an opportunity to stage. The response is authoritative for
// side effects such as the status reset when leaving CLOSED.
func (c *Client) ChangeStage(ctx context.Context, id int64, stage domain.Stage) (domain.Opportunity, error) {
	var out domain.Opportunity
	q := url.Values{"stage": {string(stage)}}
	err := c.do(ctx, "change_stage", http.MethodPut, idPath("/opportunities/change-stage/%d", id), q, nil, &out)
	return out, err
}

// AssignContact attaches contactID to an existing opportunity.
func (c *Client) AssignContact(ctx context.Context, opportunityID, contactID int64) (domain.Opportunity, error) {
	var out domain.Opportunity
	q := url.Values{"contactId": {strconv.FormatInt(contactID, 10)}}
	err := c.do(ctx, "assign_contact", http.MethodPut, idPath("/opportunities/assign/%d", opportunityID), q, nil, &out)
	return out, err
}
