package board

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
)

// SearchContacts runs a server-side search capped at ContactPageSize. Results
// are merged into the known contacts; earlier resolved contacts stay available.
func (c *Controller) SearchContacts(ctx context.Context, term string) ([]domain.Contact, error) {
	term = strings.TrimSpace(term)

	c.mu.Lock()
	c.searchSeq++
	seq := c.searchSeq
	c.searchTerm = term
	c.mu.Unlock()

	return c.runSearch(ctx, seq, term)
}

// QueueContactSearch debounces picker keystrokes: only the last term typed
// within SearchDebounce is sent.
func (c *Controller) QueueContactSearch(ctx context.Context, term string) {
	term = strings.TrimSpace(term)
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchSeq++
	seq := c.searchSeq
	c.searchTerm = term
	if c.searchTimer != nil {
		c.searchTimer.Stop()
	}
	c.searchTimer = time.AfterFunc(c.opts.SearchDebounce, func() {
		_, _ = c.runSearch(ctx, seq, term)
	})
}

func (c *Controller) runSearch(ctx context.Context, seq int, term string) ([]domain.Contact, error) {
	found, err := c.api.SearchContacts(ctx, term, c.opts.ContactPageSize)
	c.opts.Metrics.ObserveAction("search_contacts", err)
	if err != nil {
		c.fail(ctx, "search_contacts", 0, err)
		return nil, err
	}

	c.mu.Lock()
	c.mergeContactsLocked(found)
	c.reattachContactsLocked()
	// A newer search owns the picker list; the merge above still counts.
	if seq == c.searchSeq {
		c.searchResults = c.searchResults[:0]
		for _, ct := range found {
			c.searchResults = append(c.searchResults, ct.ID)
		}
	}
	c.mu.Unlock()

	c.log.Debug(ctx, "contacts searched",
		logger.Module("board"),
		logger.Action("search_contacts"),
		zap.Int("count", len(found)),
	)
	return found, nil
}

// KnownContacts returns every contact resolved so far, in discovery order.
func (c *Controller) KnownContacts() []domain.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.knownContactsLocked()
}

func (c *Controller) knownContactsLocked() []domain.Contact {
	out := make([]domain.Contact, 0, len(c.contactOrder))
	for _, id := range c.contactOrder {
		out = append(out, c.contacts[id])
	}
	return out
}

// pickerContactsLocked is what the contact picker lists: the latest search
// results, or every known contact before any search.
func (c *Controller) pickerContactsLocked() []domain.Contact {
	if c.searchTerm == "" && len(c.searchResults) == 0 {
		return c.knownContactsLocked()
	}
	out := make([]domain.Contact, 0, len(c.searchResults))
	for _, id := range c.searchResults {
		if ct, ok := c.contacts[id]; ok {
			out = append(out, ct)
		}
	}
	return out
}

func (c *Controller) mergeContactsLocked(list []domain.Contact) {
	for _, ct := range list {
		c.rememberContactLocked(ct)
	}
}

// rememberContactLocked never lets a stub overwrite a resolved contact.
func (c *Controller) rememberContactLocked(ct domain.Contact) {
	if ct.ID == 0 {
		return
	}
	existing, ok := c.contacts[ct.ID]
	if !ok {
		c.contactOrder = append(c.contactOrder, ct.ID)
	} else if ct.IsStub() && !existing.IsStub() {
		return
	}
	c.contacts[ct.ID] = ct
}

func (c *Controller) attachKnownContactLocked(o *domain.Opportunity) {
	if o.Contact == nil {
		return
	}
	if !o.Contact.IsStub() {
		c.rememberContactLocked(*o.Contact)
		return
	}
	if known, ok := c.contacts[o.Contact.ID]; ok && !known.IsStub() {
		ct := known
		o.Contact = &ct
	}
}

// reattachContactsLocked upgrades cached stub contacts after new contacts arrive.
func (c *Controller) reattachContactsLocked() {
	changed := false
	for i := range c.all {
		if ct := c.all[i].Contact; ct != nil && ct.IsStub() {
			if known, ok := c.contacts[ct.ID]; ok && !known.IsStub() {
				k := known
				c.all[i].Contact = &k
				changed = true
			}
		}
	}
	if changed {
		c.regroupLocked()
	}
}
