package board

import (
	"context"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/telemetry"
)

//go:generate mockgen -source=api.go -destination=mock_api_test.go -package=board

// API is the slice of the CRM backend the board needs. *crmapi.Client implements it.
type API interface {
	ListOpportunities(ctx context.Context, size int) ([]domain.Opportunity, error)
	CreateOpportunity(ctx context.Context, payload domain.OpportunityPayload) (domain.Opportunity, error)
	UpdateOpportunity(ctx context.Context, id int64, payload domain.OpportunityPayload) (domain.Opportunity, error)
	DeleteOpportunity(ctx context.Context, id int64) error
	IncrementProgress(ctx context.Context, id int64, step int) (domain.Opportunity, error)
	DecrementProgress(ctx context.Context, id int64, step int) (domain.Opportunity, error)
	ChangeStage(ctx context.Context, id int64, stage domain.Stage) (domain.Opportunity, error)
	AssignContact(ctx context.Context, opportunityID, contactID int64) (domain.Opportunity, error)
	SearchContacts(ctx context.Context, query string, size int) ([]domain.Contact, error)
	GetContact(ctx context.Context, id int64) (domain.Contact, error)
	TasksForOpportunity(ctx context.Context, opportunityID int64) ([]domain.Task, error)
}

// Default tunables, matching the web client.
const (
	DefaultOpportunityPageSize = 50
	DefaultContactPageSize     = 25
	DefaultSearchDebounce      = 300 * time.Millisecond
	DefaultNotificationTTL     = 5 * time.Second
)

// Options tunes a Controller. Zero fields take the defaults above.
type Options struct {
	ProgressStep        int
	OpportunityPageSize int
	ContactPageSize     int
	SearchDebounce      time.Duration
	NotificationTTL     time.Duration

	// Now is the clock used for banner expiry.
	Now     func() time.Time
	Metrics *telemetry.BoardMetrics
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.ProgressStep <= 0 {
		o.ProgressStep = domain.DefaultProgressStep
	}
	if o.OpportunityPageSize <= 0 {
		o.OpportunityPageSize = DefaultOpportunityPageSize
	}
	if o.ContactPageSize <= 0 {
		o.ContactPageSize = DefaultContactPageSize
	}
	if o.SearchDebounce < 0 {
		o.SearchDebounce = 0
	} else if o.SearchDebounce == 0 {
		o.SearchDebounce = DefaultSearchDebounce
	}
	if o.NotificationTTL <= 0 {
		o.NotificationTTL = DefaultNotificationTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
