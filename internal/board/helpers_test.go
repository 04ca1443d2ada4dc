package board

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"
)

const (
	ownerID    int64 = 7
	strangerID int64 = 9
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func mustPhase(stage domain.Stage, status domain.Status) domain.Phase {
	p, err := domain.PhaseFromWire(stage, status)
	if err != nil {
		panic(err)
	}
	return p
}

func opportunity(id, owner int64, stage domain.Stage, progress int) domain.Opportunity {
	return domain.Opportunity{
		ID:       id,
		Title:    "Opportunity " + string(rune('A'+id%26)),
		Value:    float64(id * 1000),
		Owner:    &domain.User{ID: owner, Username: "user"},
		Priority: domain.PriorityMedium,
		Progress: progress,
		Phase:    mustPhase(stage, domain.StatusInProgress),
	}
}

func sessionFor(userID int64) session.Session {
	return session.Session{User: domain.User{ID: userID, Username: "me", Role: domain.RoleUser}}
}

type fixture struct {
	ctrl  *Controller
	api   *MockAPI
	clock *fakeClock
}

// newFixture loads a controller for userID over opps.
func newFixture(t *testing.T, userID int64, opps ...domain.Opportunity) fixture {
	t.Helper()
	mock := NewMockAPI(gomock.NewController(t))
	clock := newFakeClock()

	c := NewController(mock, sessionFor(userID), Options{Now: clock.Now, SearchDebounce: 10 * time.Millisecond}, nil)

	mock.EXPECT().ListOpportunities(gomock.Any(), DefaultOpportunityPageSize).Return(opps, nil)
	mock.EXPECT().SearchContacts(gomock.Any(), "", DefaultContactPageSize).Return(nil, nil)
	require.NoError(t, c.Load(context.Background(), url.Values{}))

	t.Cleanup(c.Close)
	return fixture{ctrl: c, api: mock, clock: clock}
}

func ptr[T any](v T) *T { return &v }
