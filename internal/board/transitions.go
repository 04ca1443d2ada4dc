package board

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
)

// ChangeStage moves opportunity id to stage. Nothing changes locally until the
// server answers; its response replaces the cached record, including any status
// reset it applied.
func (c *Controller) ChangeStage(ctx context.Context, id int64, stage domain.Stage) (domain.Opportunity, error) {
	if !stage.IsValid() {
		return domain.Opportunity{}, fmt.Errorf("%w: %q", domain.ErrInvalidStage, stage)
	}
	if _, err := c.owned(id); err != nil {
		return domain.Opportunity{}, err
	}

	updated, err := c.api.ChangeStage(ctx, id, stage)
	c.opts.Metrics.ObserveAction("change_stage", err)
	if err != nil {
		c.fail(ctx, "change_stage", id, err)
		return domain.Opportunity{}, err
	}

	out := c.apply(updated)
	c.log.Info(ctx, "stage changed",
		logger.Module("board"),
		logger.Action("change_stage"),
		logger.OpportunityID(id),
		zap.String("stage", string(out.Stage())),
		zap.String("status", string(out.Status())),
	)
	return out, nil
}

// ChangeStatus closes a CLOSED opportunity as WON or LOST.
func (c *Controller) ChangeStatus(ctx context.Context, id int64, status domain.Status) (domain.Opportunity, error) {
	if !status.IsTerminal() {
		return domain.Opportunity{}, fmt.Errorf("%w: %q is not a closing status", domain.ErrInvalidStatus, status)
	}
	opp, err := c.owned(id)
	if err != nil {
		return domain.Opportunity{}, err
	}
	if _, err := opp.Phase.WithStatus(status); err != nil {
		return domain.Opportunity{}, fmt.Errorf("opportunity %d: %w", id, err)
	}

	updated, err := c.api.UpdateOpportunity(ctx, id, domain.OpportunityPayload{Status: &status})
	c.opts.Metrics.ObserveAction("change_status", err)
	if err != nil {
		c.fail(ctx, "change_status", id, err)
		return domain.Opportunity{}, err
	}

	out := c.apply(updated)
	c.log.Info(ctx, "status changed",
		logger.Module("board"),
		logger.Action("change_status"),
		logger.OpportunityID(id),
		zap.String("status", string(out.Status())),
	)
	return out, nil
}

// IncrementProgress raises progress by one step. At 100 it is a no-op and no
// request is sent.
func (c *Controller) IncrementProgress(ctx context.Context, id int64) (domain.Opportunity, error) {
	return c.adjustProgress(ctx, id, +1)
}

// DecrementProgress lowers progress by one step. At 0 it is a no-op and no
// request is sent.
func (c *Controller) DecrementProgress(ctx context.Context, id int64) (domain.Opportunity, error) {
	return c.adjustProgress(ctx, id, -1)
}

func (c *Controller) adjustProgress(ctx context.Context, id int64, direction int) (domain.Opportunity, error) {
	opp, err := c.owned(id)
	if err != nil {
		return domain.Opportunity{}, err
	}

	action := "increment_progress"
	call := c.api.IncrementProgress
	atBound := opp.Progress >= domain.ProgressMax
	if direction < 0 {
		action = "decrement_progress"
		call = c.api.DecrementProgress
		atBound = opp.Progress <= domain.ProgressMin
	}
	if atBound {
		return opp, nil
	}

	updated, err := call(ctx, id, c.opts.ProgressStep)
	c.opts.Metrics.ObserveAction(action, err)
	if err != nil {
		c.fail(ctx, action, id, err)
		return domain.Opportunity{}, err
	}
	updated.Progress = domain.ClampProgress(updated.Progress)

	out := c.apply(updated)
	c.log.Debug(ctx, "progress adjusted",
		logger.Module("board"),
		logger.Action(action),
		logger.OpportunityID(id),
		zap.Int("progress", out.Progress),
	)
	return out, nil
}
