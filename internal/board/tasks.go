package board

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
)

// Tasks returns the tasks of opportunity id. The first call fetches them; later
// calls are served from the per-opportunity cache for the session's lifetime.
func (c *Controller) Tasks(ctx context.Context, id int64) ([]domain.Task, error) {
	c.mu.Lock()
	if _, ok := c.indexLocked(id); !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("opportunity %d: %w", id, domain.ErrNotFound)
	}
	if cached, ok := c.tasks[id]; ok {
		c.mu.Unlock()
		return cloneTasks(cached), nil
	}
	c.mu.Unlock()

	tasks, err := c.api.TasksForOpportunity(ctx, id)
	c.opts.Metrics.ObserveAction("tasks", err)
	if err != nil {
		c.fail(ctx, "tasks", id, err)
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	c.mu.Lock()
	c.tasks[id] = tasks
	c.mu.Unlock()

	c.log.Debug(ctx, "tasks loaded",
		logger.Module("board"),
		logger.Action("tasks"),
		logger.OpportunityID(id),
		zap.Int("count", len(tasks)),
	)
	return cloneTasks(tasks), nil
}

// CachedTasks returns the tasks of id without fetching.
func (c *Controller) CachedTasks(id int64) ([]domain.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[id]
	return cloneTasks(t), ok
}

func cloneTasks(in []domain.Task) []domain.Task {
	if in == nil {
		return nil
	}
	out := make([]domain.Task, len(in))
	copy(out, in)
	return out
}
