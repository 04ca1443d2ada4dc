// Package board is the opportunity board: the cached opportunity list, its
// four-stage grouping, filters and sorting, the ownership gate, and every
// transition the owner can drive against the CRM backend.
//
// A Controller never holds its lock across a backend call. Duplicate requests
// are neither deduplicated nor cancelled, and responses are applied in arrival
// order, so the last response wins.
package board

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"
)

// Query parameters that start the contact-assignment workflow.
const (
	QueryAssign    = "assign"
	QueryContactID = "contactId"
)

// Controller owns the board state of one user session.
type Controller struct {
	api  API
	sess session.Session
	opts Options
	log  *logger.Logger

	mu sync.Mutex

	loaded         bool
	contactsLoaded bool
	all            []domain.Opportunity
	columns        map[domain.Stage][]domain.Opportunity

	draft   Filters
	applied Filters
	tab     domain.Stage
	sort    SortState

	contacts       map[int64]domain.Contact
	contactOrder   []int64
	searchTerm     string
	searchResults  []int64
	searchSeq      int
	searchTimer    *time.Timer
	tasks          map[int64][]domain.Task
	pending        *Pending
	loading        bool
	detailID       int64
	banners        []Banner
	workflow       workflowState
	query          url.Values
	lastActivityAt time.Time
}

// NewController builds a controller for sess. The session is read-only for the
// controller's lifetime.
func NewController(api API, sess session.Session, opts Options, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	opts = opts.withDefaults()
	c := &Controller{
		api:      api,
		sess:     sess,
		opts:     opts,
		log:      log,
		columns:  map[domain.Stage][]domain.Opportunity{},
		tab:      domain.StageProspection,
		contacts: map[int64]domain.Contact{},
		tasks:    map[int64][]domain.Task{},
		query:    url.Values{},
	}
	c.lastActivityAt = opts.Now()
	return c
}

// User is the session's current user.
func (c *Controller) User() domain.User {
	return c.sess.User
}

// Options returns the effective options.
func (c *Controller) Options() Options {
	return c.opts
}

// Close stops the pending contact search, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
}

func (c *Controller) touchLocked() {
	c.lastActivityAt = c.opts.Now()
}

// LastActivity is when the controller was last used.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivityAt
}

// Load bootstraps the board: the opportunity page (fetched once and then served
// from cache), a first page of contacts for the picker, and, when query carries
// assign=true&contactId=<id>, the contact-assignment workflow. A workflow
// already open for the same contact is left at its current step.
func (c *Controller) Load(ctx context.Context, query url.Values) error {
	c.mu.Lock()
	c.query = cloneValues(query)
	loaded, contactsLoaded := c.loaded, c.contactsLoaded
	c.touchLocked()
	c.mu.Unlock()

	if !loaded {
		if err := c.fetch(ctx); err != nil {
			return err
		}
	}
	if !contactsLoaded {
		c.loadContacts(ctx)
	}

	if contactID, ok := assignmentRequest(query); ok && c.needsAssignment(contactID) {
		c.startAssignment(ctx, contactID)
	}
	return nil
}

// Refresh refetches the opportunity page, bypassing the cache.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.fetch(ctx)
}

func (c *Controller) fetch(ctx context.Context) error {
	list, err := c.api.ListOpportunities(ctx, c.opts.OpportunityPageSize)
	c.opts.Metrics.ObserveAction("load", err)
	if err != nil {
		c.fail(ctx, "load", 0, err)
		return fmt.Errorf("load opportunities: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.all = make([]domain.Opportunity, 0, len(list))
	for _, o := range list {
		c.attachKnownContactLocked(&o)
		c.all = append(c.all, o)
	}
	c.loaded = true
	c.regroupLocked()

	c.log.Info(ctx, "board loaded",
		logger.Module("board"),
		logger.Action("load"),
		zap.Int("count", len(c.all)),
	)
	return nil
}

func (c *Controller) loadContacts(ctx context.Context) {
	contacts, err := c.api.SearchContacts(ctx, "", c.opts.ContactPageSize)
	if err != nil {
		c.fail(ctx, "load_contacts", 0, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeContactsLocked(contacts)
	c.contactsLoaded = true
	c.reattachContactsLocked()
}

// Loaded reports whether the opportunity page has been fetched.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Opportunity returns the cached record with id.
func (c *Controller) Opportunity(id int64) (domain.Opportunity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.indexLocked(id)
	if !ok {
		return domain.Opportunity{}, fmt.Errorf("opportunity %d: %w", id, domain.ErrNotFound)
	}
	return c.all[i], nil
}

// Opportunities returns the full cached list in board order, unfiltered.
func (c *Controller) Opportunities() []domain.Opportunity {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Opportunity, len(c.all))
	copy(out, c.all)
	return out
}

// Query returns the tracked page query parameters.
func (c *Controller) Query() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneValues(c.query)
}

// Loading reports whether a create, update or delete is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// OpenDetail shows the detail panel of opportunity id.
func (c *Controller) OpenDetail(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.indexLocked(id); !ok {
		return fmt.Errorf("opportunity %d: %w", id, domain.ErrNotFound)
	}
	c.detailID = id
	c.touchLocked()
	return nil
}

// CloseDetail hides the detail panel.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detailID = 0
}

// beginPrimaryLocked raises the loading flag or reports ErrBusy.
func (c *Controller) beginPrimaryLocked() error {
	if c.loading {
		return ErrBusy
	}
	c.loading = true
	c.touchLocked()
	return nil
}

func (c *Controller) endPrimary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
}

func (c *Controller) indexLocked(id int64) (int, bool) {
	for i := range c.all {
		if c.all[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// ownedLocked returns the cached record if the current user owns it.
func (c *Controller) ownedLocked(id int64) (domain.Opportunity, error) {
	i, ok := c.indexLocked(id)
	if !ok {
		return domain.Opportunity{}, fmt.Errorf("opportunity %d: %w", id, domain.ErrNotFound)
	}
	opp := c.all[i]
	if !CanMutate(c.sess.User, opp) {
		return domain.Opportunity{}, fmt.Errorf("opportunity %d: %w", id, domain.ErrNotOwner)
	}
	return opp, nil
}

func (c *Controller) owned(id int64) (domain.Opportunity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()
	return c.ownedLocked(id)
}

// replaceLocked swaps in the server's representation. A record deleted while
// the call was in flight stays deleted.
func (c *Controller) replaceLocked(updated domain.Opportunity) bool {
	i, ok := c.indexLocked(updated.ID)
	if !ok {
		return false
	}
	c.attachKnownContactLocked(&updated)
	c.all[i] = updated
	c.regroupLocked()
	return true
}

func (c *Controller) apply(updated domain.Opportunity) domain.Opportunity {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replaceLocked(updated)
	if i, ok := c.indexLocked(updated.ID); ok {
		return c.all[i]
	}
	return updated
}

// fail logs a failed backend call and raises an error banner.
func (c *Controller) fail(ctx context.Context, action string, id int64, err error) {
	fields := []logger.Field{logger.Module("board"), logger.Action(action), logger.Err(err)}
	if id != 0 {
		fields = append(fields, logger.OpportunityID(id))
	}
	if crmapi.IsNotFound(err) || crmapi.IsForbidden(err) {
		c.log.Warn(ctx, "board action rejected by backend", fields...)
	} else {
		c.log.Error(ctx, "board action failed", fields...)
	}
	c.notify(BannerError, messageFor(err))
}

func assignmentRequest(query url.Values) (int64, bool) {
	if query.Get(QueryAssign) != "true" {
		return 0, false
	}
	id, err := strconv.ParseInt(query.Get(QueryContactID), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
