package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/veilletech/rss-engine/app/refresh"
)

type RefreshDomainTask struct {
	Task
	orchestrator *refresh.Orchestrator
}

func NewRefreshDomainTask(orchestrator *refresh.Orchestrator) *RefreshDomainTask {
	return &RefreshDomainTask{
		Task:         NewTask(TaskTypeRefreshDomain, string(orchestrator.Domain())),
		orchestrator: orchestrator,
	}
}

func (t *RefreshDomainTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.orchestrator.Run(ctx)
	if errors.Is(err, refresh.ErrInProgress) {
		// An on-demand refresh is already covering this domain.
		slog.Debug("Scheduled refresh skipped, one is already running", "domain", t.Domain)
		return nil
	}
	if err != nil {
		return fmt.Errorf("scheduled refresh failed: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshDomain",
		"domain", t.Domain,
		"duration", t.GetDuration(),
		"total", result.Total,
		"stored", result.Stored)

	return nil
}
