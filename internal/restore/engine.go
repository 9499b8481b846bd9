package restore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tabvault/tabvault/internal/types"
)

const (
	// batchDelayThreshold is the item count from which a fixed delay is
	// inserted between opens, to avoid flooding the browser's tab-creation
	// pipeline. Smaller batches open back to back.
	batchDelayThreshold = 50
	defaultOpenDelay    = 150 * time.Millisecond
)

// Engine replays saved tab items into a browser window, in input order,
// one item fully processed (including its progress callback) before the
// next begins.
type Engine struct {
	rt        types.BrowserRuntime
	openDelay time.Duration
}

func NewEngine(rt types.BrowserRuntime) *Engine {
	return &Engine{rt: rt, openDelay: defaultOpenDelay}
}

// Restore opens req.Items into the requested target window. Per-URL open
// failures and grouping failures never abort the batch; only failing to
// resolve or create the target window is fatal.
func (e *Engine) Restore(ctx context.Context, req types.RestoreRequest) (types.RestoreResult, error) {
	if !req.Target.Valid() {
		return types.RestoreResult{}, types.NewError(types.CodeValidation, fmt.Sprintf("unknown restore target %q", req.Target), nil)
	}

	windowHandle, err := e.resolveWindow(ctx, req.Target)
	if err != nil {
		return types.RestoreResult{}, err
	}
	result := types.RestoreResult{WindowHandle: windowHandle}

	seen := make(map[string]struct{})
	if req.SkipDuplicates {
		if err := e.seedSeen(ctx, windowHandle, seen); err != nil {
			return types.RestoreResult{}, err
		}
	}

	total := 0
	for _, item := range req.Items {
		if strings.TrimSpace(item.URL) != "" {
			total++
		}
	}

	progress := types.RestoreProgress{Phase: types.PhaseOpening, Total: total}
	emit(req.OnProgress, progress)

	useDelay := total >= batchDelayThreshold
	for _, item := range req.Items {
		url := strings.TrimSpace(item.URL)
		if url == "" {
			continue
		}

		if req.SkipDuplicates {
			if _, dup := seen[url]; dup {
				result.SkippedDuplicatesCount++
				progress.SkippedDuplicates = result.SkippedDuplicatesCount
				emit(req.OnProgress, progress)
				continue
			}
			// Added before the open so a duplicate later in this same
			// batch is suppressed too.
			seen[url] = struct{}{}
		}

		handle, openErr := e.rt.OpenTab(ctx, windowHandle, url, !req.OpenInBackground)
		if openErr != nil {
			slog.Debug("restore open failed", "url", url, "error", openErr)
			result.FailedCount++
			result.FailedURLs = append(result.FailedURLs, url)
			// Give a later occurrence of this URL a retry opportunity
			// instead of a false duplicate-skip.
			delete(seen, url)
			progress.Failed = result.FailedCount
			emit(req.OnProgress, progress)
			continue
		}

		result.OpenedHandles = append(result.OpenedHandles, handle)
		result.OpenedCount++
		progress.Opened = result.OpenedCount
		emit(req.OnProgress, progress)

		if useDelay {
			select {
			case <-time.After(e.openDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	if req.Target == types.TargetNewWindowWithGroup {
		progress.Phase = types.PhaseGrouping
		emit(req.OnProgress, progress)
		e.groupOpened(ctx, req, &result)
	}

	progress.Phase = types.PhaseDone
	emit(req.OnProgress, progress)

	slog.Info("restore complete",
		"window", windowHandle,
		"opened", result.OpenedCount,
		"skipped_duplicates", result.SkippedDuplicatesCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

// resolveWindow creates or reuses the target window. New windows are
// created empty and populated tab by tab, which keeps ordering and
// duplicate checking identical across target kinds.
func (e *Engine) resolveWindow(ctx context.Context, target types.RestoreTarget) (int64, error) {
	if target == types.TargetCurrentWindow {
		handle, err := e.rt.CurrentWindow(ctx)
		if err != nil {
			return 0, types.NewError(types.CodeCDPUnavailable, "resolve current window", err)
		}
		return handle, nil
	}
	handle, err := e.rt.CreateWindow(ctx)
	if err != nil {
		return 0, types.NewError(types.CodeCDPUnavailable, "create window", err)
	}
	return handle, nil
}

func (e *Engine) seedSeen(ctx context.Context, windowHandle int64, seen map[string]struct{}) error {
	tabs, err := e.rt.ListTabs(ctx, windowHandle)
	if err != nil {
		return types.NewError(types.CodeCDPUnavailable, "snapshot destination window", err)
	}
	for _, tab := range tabs {
		if url := strings.TrimSpace(tab.URL); url != "" {
			seen[url] = struct{}{}
		}
	}
	return nil
}

func (e *Engine) groupOpened(ctx context.Context, req types.RestoreRequest, result *types.RestoreResult) {
	if len(result.OpenedHandles) == 0 {
		return
	}
	if !e.rt.SupportsTabGroups() {
		result.GroupError = "tab grouping is not supported by this browser runtime"
		slog.Debug("tab grouping skipped", "reason", result.GroupError)
		return
	}
	groupHandle, err := e.rt.GroupTabs(ctx, result.OpenedHandles, req.GroupTitle, req.GroupColor)
	if err != nil {
		// Opened tabs stay open and ungrouped.
		result.GroupError = err.Error()
		slog.Warn("tab grouping failed", "error", err)
		return
	}
	result.GroupHandle = groupHandle
}

func emit(fn func(types.RestoreProgress), p types.RestoreProgress) {
	if fn != nil {
		fn(p)
	}
}
