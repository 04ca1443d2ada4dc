package board

import (
	"time"

	"github.com/google/uuid"
)

// BannerKind colours a notification banner.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
	BannerInfo    BannerKind = "info"
)

// Banner is a dismissible notification that expires on its own.
type Banner struct {
	ID        string     `json:"id"`
	Kind      BannerKind `json:"kind"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

func (c *Controller) notifyLocked(kind BannerKind, message string) Banner {
	now := c.opts.Now()
	b := Banner{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.opts.NotificationTTL),
	}
	c.pruneBannersLocked(now)
	c.banners = append(c.banners, b)
	return b
}

func (c *Controller) notify(kind BannerKind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifyLocked(kind, message)
}

func (c *Controller) pruneBannersLocked(now time.Time) {
	kept := c.banners[:0]
	for _, b := range c.banners {
		if now.Before(b.ExpiresAt) {
			kept = append(kept, b)
		}
	}
	c.banners = kept
}

// Dismiss removes a banner. It reports false when id is unknown or already expired.
func (c *Controller) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneBannersLocked(c.opts.Now())
	for i, b := range c.banners {
		if b.ID == id {
			c.banners = append(c.banners[:i], c.banners[i+1:]...)
			return true
		}
	}
	return false
}

// Banners returns the live banners, oldest first.
func (c *Controller) Banners() []Banner {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneBannersLocked(c.opts.Now())
	out := make([]Banner, len(c.banners))
	copy(out, c.banners)
	return out
}
