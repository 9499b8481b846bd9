package capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabvault/tabvault/internal/types"
)

// Store is the slice of the session vault the orchestrator needs.
type Store interface {
	LoadSettings(ctx context.Context) (types.Settings, error)
	AddSession(ctx context.Context, session *types.Session) error
	SaveCaptureResult(ctx context.Context, result types.CaptureResult) error
}

// Orchestrator glues planner, vault and closer for one capture:
// plan -> persist session -> close candidates -> record result. The session
// is always persisted before any tab is closed, so a failing close step can
// never lose captured data.
type Orchestrator struct {
	rt    types.BrowserRuntime
	store Store
	now   func() time.Time
}

func NewOrchestrator(rt types.BrowserRuntime, store Store) *Orchestrator {
	return &Orchestrator{rt: rt, store: store, now: time.Now}
}

// CaptureCurrentWindow captures the front-most window. With dryRun set it
// plans and records the result but neither persists a session nor closes
// tabs. The returned error is only non-nil when even recording the result
// failed; capture failures are reported inside the result.
func (o *Orchestrator) CaptureCurrentWindow(ctx context.Context, dryRun bool) (types.CaptureResult, error) {
	result := types.CaptureResult{
		CreatedAt: o.now().UnixMilli(),
		DryRun:    dryRun,
	}

	settings, windowHandle, tabs, err := o.resolveWindow(ctx)
	if err != nil {
		// Fatal: nothing durable exists yet for this capture.
		result.Error = err.Error()
		slog.Error("capture aborted", "error", err)
		return result, o.store.SaveCaptureResult(ctx, result)
	}

	plan := BuildPlan(tabs, settings)
	result.CapturedCount = plan.CapturedCount
	result.SkippedCount = plan.SkippedCount
	result.SkippedRestrictedCount = plan.SkippedRestrictedCount
	result.SkippedPinnedCount = plan.SkippedPinnedCount
	result.SkippedActiveCount = plan.SkippedActiveCount

	if len(plan.Items) == 0 {
		if plan.SkippedCount > 0 {
			result.Message = "all tabs were skipped"
		} else {
			result.Message = "nothing to capture"
		}
		slog.Info("capture produced no items", "window", windowHandle, "skipped", plan.SkippedCount)
		return result, o.store.SaveCaptureResult(ctx, result)
	}

	if dryRun {
		result.Message = fmt.Sprintf("dry run: would capture %d tabs and close %d", plan.CapturedCount, len(plan.CloseCandidates))
		return result, o.store.SaveCaptureResult(ctx, result)
	}

	session := &types.Session{
		Title:        sessionTitle(settings.SessionNamePrefix, o.now()),
		CreatedAt:    o.now().UnixMilli(),
		SkippedCount: plan.SkippedCount,
		Items:        plan.Items,
	}
	if err := o.store.AddSession(ctx, session); err != nil {
		// Fatal: nothing was closed, no partial session remains.
		result.Error = fmt.Sprintf("persist session: %v", err)
		slog.Error("capture aborted before close", "error", err)
		return result, o.store.SaveCaptureResult(ctx, result)
	}
	result.SessionID = session.ID

	handles := make([]int64, len(plan.CloseCandidates))
	urlByHandle := make(map[int64]string, len(plan.CloseCandidates))
	for i, c := range plan.CloseCandidates {
		handles[i] = c.Handle
		urlByHandle[c.Handle] = c.URL
	}

	outcome := CloseTabs(ctx, o.rt, handles)
	result.ClosedCount = len(outcome.Closed)
	result.CloseError = outcome.BatchError
	result.FailedToCloseCount = len(outcome.Failed)
	result.FailedToCloseHandles = outcome.Failed
	for _, handle := range outcome.Failed {
		result.FailedToCloseURLs = append(result.FailedToCloseURLs, urlByHandle[handle])
	}

	slog.Info("capture complete",
		"session_id", session.ID,
		"window", windowHandle,
		"captured", result.CapturedCount,
		"closed", result.ClosedCount,
		"skipped", result.SkippedCount,
		"failed_to_close", result.FailedToCloseCount,
	)
	return result, o.store.SaveCaptureResult(ctx, result)
}

func (o *Orchestrator) resolveWindow(ctx context.Context) (types.Settings, int64, []types.TabSnapshot, error) {
	settings, err := o.store.LoadSettings(ctx)
	if err != nil {
		return types.Settings{}, 0, nil, fmt.Errorf("load settings: %w", err)
	}
	windowHandle, err := o.rt.CurrentWindow(ctx)
	if err != nil {
		return types.Settings{}, 0, nil, fmt.Errorf("resolve current window: %w", err)
	}
	tabs, err := o.rt.ListTabs(ctx, windowHandle)
	if err != nil {
		return types.Settings{}, 0, nil, fmt.Errorf("list tabs: %w", err)
	}
	return settings, windowHandle, tabs, nil
}

func sessionTitle(prefix string, at time.Time) string {
	if prefix == "" {
		prefix = types.DefaultSettings().SessionNamePrefix
	}
	return fmt.Sprintf("%s %s", prefix, at.Format("2006-01-02 15:04"))
}
