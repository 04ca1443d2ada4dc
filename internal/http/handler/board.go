package handler

import (
	"context"
	"net/http"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/board"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/httperr"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/middleware"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"

	"github.com/go-chi/chi/v5"
)

// BoardHandler exposes the board controller of the caller's session.
type BoardHandler struct {
	registry *board.Registry
	factory  board.Factory
}

func NewBoardHandler(registry *board.Registry, factory board.Factory) *BoardHandler {
	return &BoardHandler{registry: registry, factory: factory}
}

// Routes mounts every board operation. The caller applies the session and
// rate limit middlewares.
func (h *BoardHandler) Routes(r chi.Router, create func(http.Handler) http.Handler) {
	r.Get("/", h.GetBoard)
	r.Post("/refresh", h.Refresh)

	r.Route("/opportunities", func(r chi.Router) {
		if create != nil {
			r.With(create).Post("/", h.CreateOpportunity)
		} else {
			r.Post("/", h.CreateOpportunity)
		}
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetOpportunity)
			r.Put("/", h.RequestUpdate)
			r.Delete("/", h.RequestDelete)
			r.Put("/stage", h.ChangeStage)
			r.Put("/status", h.ChangeStatus)
			r.Post("/progress/increment", h.IncrementProgress)
			r.Post("/progress/decrement", h.DecrementProgress)
			r.Get("/tasks", h.ListTasks)
			r.Post("/detail", h.OpenDetail)
		})
	})

	r.Delete("/detail", h.CloseDetail)
	r.Post("/pending/confirm", h.ConfirmPending)
	r.Delete("/pending", h.CancelPending)

	r.Put("/filters", h.SetFilters)
	r.Post("/filters/apply", h.ApplyFilters)
	r.Delete("/filters", h.ClearFilters)
	r.Put("/tab", h.SelectTab)
	r.Post("/sort", h.ToggleSort)

	r.Get("/contacts", h.SearchContacts)
	r.Post("/contacts/search", h.QueueContactSearch)

	r.Delete("/banners/{bannerId}", h.DismissBanner)

	r.Route("/workflow", func(r chi.Router) {
		r.Post("/new", h.ChooseNewOpportunity)
		r.Post("/existing", h.ChooseExistingOpportunity)
		r.Post("/select", h.SelectOpportunity)
		r.Delete("/", h.CancelWorkflow)
	})
}

// controller resolves the session's controller and loads it on first use.
// Failures are written to w.
func (h *BoardHandler) controller(w http.ResponseWriter, r *http.Request) (context.Context, *board.Controller, bool) {
	ctx := r.Context()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		httperr.LoginRequired401(w, ctx)
		return ctx, nil, false
	}

	ctrl, err := h.registry.Get(ctx, sessionID, h.factory)
	if err != nil {
		h.done(w, ctx, err)
		return ctx, nil, false
	}
	ctx = logger.SetUserIDInContext(ctx, ctrl.User().ID)

	if !ctrl.Loaded() {
		if err := ctrl.Load(ctx, ctrl.Query()); err != nil {
			h.done(w, ctx, err)
			return ctx, nil, false
		}
	}
	return ctx, ctrl, true
}

// done writes err, dropping the session's controller when the token is gone.
func (h *BoardHandler) done(w http.ResponseWriter, ctx context.Context, err error) {
	if sessionID, ok := middleware.GetSessionID(ctx); ok && session.RequiresLogin(err) {
		h.registry.Drop(sessionID)
	}
	writeBoardError(w, ctx, err)
}

// GetBoard handles GET /v1/board. Query parameters are tracked as the page's
// own, so ?assign=true&contactId=N starts the contact-assignment workflow.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		httperr.LoginRequired401(w, ctx)
		return
	}
	ctrl, err := h.registry.Get(ctx, sessionID, h.factory)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	ctx = logger.SetUserIDInContext(ctx, ctrl.User().ID)

	if err := ctrl.Load(ctx, r.URL.Query()); err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, ctrl.View())
}

// Refresh handles POST /v1/board/refresh
func (h *BoardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := ctrl.Refresh(ctx); err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, ctrl.View())
}

// GetOpportunity handles GET /v1/board/opportunities/{id}
func (h *BoardHandler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, ok := opportunityID(w, r)
	if !ok {
		return
	}
	opp, err := ctrl.Opportunity(id)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, ctrl.CardFor(opp))
}

// CreateOpportunity handles POST /v1/board/opportunities
func (h *BoardHandler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var form domain.OpportunityForm
	if !decodeBody(w, r, &form) {
		return
	}

	created, err := ctrl.Create(ctx, form)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	logger.GetLogger(ctx).Info(ctx, "opportunity created",
		logger.Module("handler"),
		logger.Action("create_opportunity"),
		logger.OpportunityID(created.ID),
	)
	writeOK(w, http.StatusCreated, ctrl.CardFor(created))
}

// RequestUpdate handles PUT /v1/board/opportunities/{id}. The change waits for
// POST /v1/board/pending/confirm.
func (h *BoardHandler) RequestUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, ok := opportunityID(w, r)
	if !ok {
		return
	}
	var form domain.OpportunityForm
	if !decodeBody(w, r, &form) {
		return
	}

	pending, err := ctrl.RequestUpdate(id, form)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusAccepted, pending)
}

// RequestDelete handles DELETE /v1/board/opportunities/{id}
func (h *BoardHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, ok := opportunityID(w, r)
	if !ok {
		return
	}
	pending, err := ctrl.RequestDelete(id)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusAccepted, pending)
}

// ConfirmPending handles POST /v1/board/pending/confirm
func (h *BoardHandler) ConfirmPending(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	pending, _ := ctrl.PendingChange()

	opp, err := ctrl.Confirm(ctx)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	if pending.Kind == board.PendingDelete {
		writeOK(w, http.StatusOK, map[string]interface{}{"deleted": pending.OpportunityID})
		return
	}
	writeOK(w, http.StatusOK, ctrl.CardFor(opp))
}

// CancelPending handles DELETE /v1/board/pending
func (h *BoardHandler) CancelPending(w http.ResponseWriter, r *http.Request) {
	_, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.CancelPending()
	w.WriteHeader(http.StatusNoContent)
}

type stageRequest struct {
	Stage string `json:"stage"`
}

// ChangeStage handles PUT /v1/board/opportunities/{id}/stage
func (h *BoardHandler) ChangeStage(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, ok := opportunityID(w, r)
	if !ok {
		return
	}
	var req stageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	stage, err := domain.ParseStage(req.Stage)
	if err != nil {
		h.done(w, ctx, err)
		return
	}

	opp, err := ctrl.ChangeStage(ctx, id, stage)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, ctrl.CardFor(opp))
}

type statusRequest struct {
	Status string `json:"status"`
}

// ChangeStatus handles PUT /v1/board/opportunities/{id}/status
func (h *BoardHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, ok := opportunityID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.done(w, ctx, err)
		return
	}

	opp, err := ctrl.ChangeStatus(ctx, id, status)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, ctrl.CardFor(opp))
}

// IncrementProgress handles POST /v1/board/opportunities/{id}/progress/increment
func (h *BoardHandler) IncrementProgress(w http.ResponseWriter, r *http.Request) {
	h.adjustProgress(w, r, (*board.Controller).IncrementProgress)
}

// DecrementProgress handles POST /v1/board/opportunities/{id}/progress/decrement
func (h *BoardHandler) DecrementProgress(w http.ResponseWriter, r *http.Request) {
	h.adjustProgress(w, r, (*board.Controller).DecrementProgress)
}

func (h *BoardHandler) adjustProgress(w http.ResponseWriter, r *http.Request, step func(*board.Controller, context.Context, int64) (domain.Opportunity, error)) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, ok := opportunityID(w, r)
	if !ok {
		return
	}
	opp, err := step(ctrl, ctx, id)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, ctrl.CardFor(opp))
}

// ListTasks handles GET /v1/board/opportunities/{id}/tasks
func (h *BoardHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, ok := opportunityID(w, r)
	if !ok {
		return
	}
	tasks, err := ctrl.Tasks(ctx, id)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, tasks)
}

// OpenDetail handles POST /v1/board/opportunities/{id}/detail
func (h *BoardHandler) OpenDetail(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, ok := opportunityID(w, r)
	if !ok {
		return
	}
	if err := ctrl.OpenDetail(id); err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, ctrl.View().Detail)
}

// CloseDetail handles DELETE /v1/board/detail
func (h *BoardHandler) CloseDetail(w http.ResponseWriter, r *http.Request) {
	_, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.CloseDetail()
	w.WriteHeader(http.StatusNoContent)
}

// SetFilters handles PUT /v1/board/filters. Only the draft changes.
func (h *BoardHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var f board.Filters
	if !decodeBody(w, r, &f) {
		return
	}
	if err := ctrl.SetFilters(f); err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, f)
}

// ApplyFilters handles POST /v1/board/filters/apply
func (h *BoardHandler) ApplyFilters(w http.ResponseWriter, r *http.Request) {
	_, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.ApplyFilters()
	writeOK(w, http.StatusOK, ctrl.View())
}

// ClearFilters handles DELETE /v1/board/filters
func (h *BoardHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	_, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.ClearFilters()
	writeOK(w, http.StatusOK, ctrl.View())
}

// SelectTab handles PUT /v1/board/tab
func (h *BoardHandler) SelectTab(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req stageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	stage, err := domain.ParseStage(req.Stage)
	if err == nil {
		err = ctrl.SelectTab(stage)
	}
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, ctrl.View())
}

type sortRequest struct {
	Key string `json:"key"`
}

// ToggleSort handles POST /v1/board/sort
func (h *BoardHandler) ToggleSort(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req sortRequest
	if !decodeBody(w, r, &req) {
		return
	}
	key, err := board.ParseSortKey(req.Key)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	ctrl.ToggleSort(key)
	writeOK(w, http.StatusOK, ctrl.View())
}

// SearchContacts handles GET /v1/board/contacts?q=
func (h *BoardHandler) SearchContacts(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	found, err := ctrl.SearchContacts(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, found)
}

type searchRequest struct {
	Term string `json:"term"`
}

// QueueContactSearch handles POST /v1/board/contacts/search. The search runs
// after the debounce delay; results show up in the next board view.
func (h *BoardHandler) QueueContactSearch(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctrl.QueueContactSearch(ctx, req.Term)
	w.WriteHeader(http.StatusAccepted)
}

// DismissBanner handles DELETE /v1/board/banners/{bannerId}
func (h *BoardHandler) DismissBanner(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	if !ctrl.Dismiss(chi.URLParam(r, "bannerId")) {
		httperr.NotFound404(w, ctx, "banner not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChooseNewOpportunity handles POST /v1/board/workflow/new
func (h *BoardHandler) ChooseNewOpportunity(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	form, err := ctrl.ChooseNewOpportunity()
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, form)
}

// ChooseExistingOpportunity handles POST /v1/board/workflow/existing
func (h *BoardHandler) ChooseExistingOpportunity(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	candidates, err := ctrl.ChooseExistingOpportunity()
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, candidates)
}

type selectRequest struct {
	OpportunityID int64 `json:"opportunityId"`
}

// SelectOpportunity handles POST /v1/board/workflow/select
func (h *BoardHandler) SelectOpportunity(w http.ResponseWriter, r *http.Request) {
	ctx, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OpportunityID <= 0 {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "opportunityId must be a positive integer")
		return
	}

	opp, err := ctrl.SelectOpportunity(ctx, req.OpportunityID)
	if err != nil {
		h.done(w, ctx, err)
		return
	}
	writeOK(w, http.StatusOK, ctrl.CardFor(opp))
}

// CancelWorkflow handles DELETE /v1/board/workflow
func (h *BoardHandler) CancelWorkflow(w http.ResponseWriter, r *http.Request) {
	_, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.CancelWorkflow()
	w.WriteHeader(http.StatusNoContent)
}
