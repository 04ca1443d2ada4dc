package crmapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
)

// SearchContacts runs a server-side text search capped at size results.
func (c *Client) SearchContacts(ctx context.Context, query string, size int) ([]domain.Contact, error) {
	var page domain.Page[domain.Contact]
	q := url.Values{"query": {query}, "size": {strconv.Itoa(size)}}
	if err := c.do(ctx, "search_contacts", http.MethodGet, "/contacts/search", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

// GetContact fetches one contact.
func (c *Client) GetContact(ctx context.Context, id int64) (domain.Contact, error) {
	var out domain.Contact
	err := c.do(ctx, "get_contact", http.MethodGet, idPath("/contacts/get/%d", id), nil, nil, &out)
	return out, err
}

// TasksForOpportunity lists the tasks attached to an opportunity.
func (c *Client) TasksForOpportunity(ctx context.Context, opportunityID int64) ([]domain.Task, error) {
	var out []domain.Task
	if err := c.do(ctx, "tasks_for_opportunity", http.MethodGet, idPath("/tasks/opportunity/%d", opportunityID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentUser returns the account behind the bearer token.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, "current_user", http.MethodGet, "/users/me", nil, nil, &out)
	return out, err
}
