package salamoonder

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// WaitTaskResult polls GetTaskResult every PollInterval until the task is
// ready or failed, SolveTimeout elapses, or ctx is done. Request errors end
// the wait immediately; nothing is retried.
//
// A failed task is returned together with its *ServiceError.
func (c *Client) WaitTaskResult(ctx context.Context, taskID string) (*TaskResult, error) {
	slog.Info("polling task", slog.String("task_id", taskID), slog.Duration("interval", c.cfg.PollInterval))

	deadline := time.Now().Add(c.cfg.SolveTimeout)
	for attempt := 1; ; attempt++ {
		res, err := c.GetTaskResult(ctx, taskID)
		if err != nil {
			return nil, err
		}

		switch res.Status {
		case StatusReady:
			slog.Info("task completed", slog.String("task_id", taskID), slog.Int("attempts", attempt))
			return res, nil
		case StatusFailed:
			return res, res.Err()
		}

		if time.Now().Add(c.cfg.PollInterval).After(deadline) {
			return res, fmt.Errorf("task %s still %s after %s", taskID, res.RawStatus, c.cfg.SolveTimeout)
		}

		select {
		case <-time.After(c.cfg.PollInterval):
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}

// Solve creates task and waits for its result.
func (c *Client) Solve(ctx context.Context, task Task) (*TaskResult, error) {
	id, err := c.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	return c.WaitTaskResult(ctx, id)
}
