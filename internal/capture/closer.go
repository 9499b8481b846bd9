package capture

import (
	"context"
	"log/slog"

	"github.com/tabvault/tabvault/internal/types"
)

// CloseOutcome reports which handles were closed and which failed. A
// BatchError means the single batched close was rejected and the per-tab
// fallback ran.
type CloseOutcome struct {
	Closed     []int64
	Failed     []int64
	BatchError string
}

// CloseTabs closes the given handles, first in a single batch, then one at
// a time if the batch fails, so a single stale handle never blocks the
// rest. Per-tab failures are recorded and the loop continues.
func CloseTabs(ctx context.Context, rt types.BrowserRuntime, handles []int64) CloseOutcome {
	if len(handles) == 0 {
		return CloseOutcome{}
	}

	err := rt.CloseTabs(ctx, handles)
	if err == nil {
		return CloseOutcome{Closed: handles}
	}
	slog.Warn("batch tab close failed, falling back to per-tab", "count", len(handles), "error", err)

	outcome := CloseOutcome{BatchError: err.Error()}
	for _, handle := range handles {
		if closeErr := rt.CloseTab(ctx, handle); closeErr != nil {
			slog.Debug("tab close failed", "handle", handle, "error", closeErr)
			outcome.Failed = append(outcome.Failed, handle)
			continue
		}
		outcome.Closed = append(outcome.Closed, handle)
	}
	return outcome
}
