package handler

import (
	"context"
	"sync"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
)

// stubAPI is an in-memory CRM backend. failWith, when set, fails every
// mutating call.
type stubAPI struct {
	mu       sync.Mutex
	opps     []domain.Opportunity
	nextID   int64
	contacts map[int64]domain.Contact
	failWith error
	calls    map[string]int
}

func newStubAPI(opps ...domain.Opportunity) *stubAPI {
	return &stubAPI{
		opps:     opps,
		nextID:   100,
		contacts: map[int64]domain.Contact{42: {ID: 42, Name: "Ada Lovelace"}},
		calls:    map[string]int{},
	}
}

func (s *stubAPI) callCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubAPI) mutate(op string, id int64, fn func(*domain.Opportunity) error) (domain.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	if s.failWith != nil {
		return domain.Opportunity{}, s.failWith
	}
	for i := range s.opps {
		if s.opps[i].ID == id {
			if err := fn(&s.opps[i]); err != nil {
				return domain.Opportunity{}, err
			}
			return s.opps[i], nil
		}
	}
	return domain.Opportunity{}, &crmapi.APIError{StatusCode: 404, Message: "Opportunity not found"}
}

func (s *stubAPI) ListOpportunities(context.Context, int) ([]domain.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["list"]++
	return append([]domain.Opportunity(nil), s.opps...), nil
}

func (s *stubAPI) CreateOpportunity(_ context.Context, p domain.OpportunityPayload) (domain.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["create"]++
	if s.failWith != nil {
		return domain.Opportunity{}, s.failWith
	}
	s.nextID++
	o := domain.Opportunity{ID: s.nextID, Priority: domain.PriorityMedium}
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.Value != nil {
		o.Value = *p.Value
	}
	s.opps = append([]domain.Opportunity{o}, s.opps...)
	return o, nil
}

func (s *stubAPI) UpdateOpportunity(_ context.Context, id int64, p domain.OpportunityPayload) (domain.Opportunity, error) {
	return s.mutate("update", id, func(o *domain.Opportunity) error {
		if p.Title != nil {
			o.Title = *p.Title
		}
		if p.Status != nil {
			phase, err := o.Phase.WithStatus(*p.Status)
			if err != nil {
				return err
			}
			o.Phase = phase
		}
		return nil
	})
}

func (s *stubAPI) DeleteOpportunity(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["delete"]++
	if s.failWith != nil {
		return s.failWith
	}
	for i := range s.opps {
		if s.opps[i].ID == id {
			s.opps = append(s.opps[:i], s.opps[i+1:]...)
			return nil
		}
	}
	return &crmapi.APIError{StatusCode: 404, Message: "Opportunity not found"}
}

func (s *stubAPI) IncrementProgress(_ context.Context, id int64, step int) (domain.Opportunity, error) {
	return s.mutate("increment", id, func(o *domain.Opportunity) error {
		o.Progress = domain.ClampProgress(o.Progress + step)
		return nil
	})
}

func (s *stubAPI) DecrementProgress(_ context.Context, id int64, step int) (domain.Opportunity, error) {
	return s.mutate("decrement", id, func(o *domain.Opportunity) error {
		o.Progress = domain.ClampProgress(o.Progress - step)
		return nil
	})
}

func (s *stubAPI) ChangeStage(_ context.Context, id int64, stage domain.Stage) (domain.Opportunity, error) {
	return s.mutate("change_stage", id, func(o *domain.Opportunity) error {
		phase, err := o.Phase.WithStage(stage)
		if err != nil {
			return err
		}
		o.Phase = phase
		return nil
	})
}

func (s *stubAPI) AssignContact(_ context.Context, opportunityID, contactID int64) (domain.Opportunity, error) {
	return s.mutate("assign", opportunityID, func(o *domain.Opportunity) error {
		o.Contact = &domain.Contact{ID: contactID}
		return nil
	})
}

func (s *stubAPI) SearchContacts(context.Context, string, int) ([]domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["search_contacts"]++
	out := make([]domain.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubAPI) GetContact(_ context.Context, id int64) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.contacts[id]; ok {
		return c, nil
	}
	return domain.Contact{}, &crmapi.APIError{StatusCode: 404, Message: "Contact not found"}
}

func (s *stubAPI) TasksForOpportunity(_ context.Context, id int64) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["tasks"]++
	return []domain.Task{{ID: 1, Title: "Call back", OpportunityID: id}}, nil
}
