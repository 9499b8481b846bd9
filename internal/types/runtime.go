package types

import "context"

// BrowserRuntime is the narrow browser capability surface consumed by the
// capture and restore pipelines. Keeping it here breaks the import cycle
// between the pipelines and the CDP bridge, and lets tests substitute a
// fake runtime.
type BrowserRuntime interface {
	// CurrentWindow resolves the handle of the front-most browser window.
	CurrentWindow(ctx context.Context) (int64, error)

	// ListTabs enumerates the tabs of a window in visual order.
	ListTabs(ctx context.Context, windowHandle int64) ([]TabSnapshot, error)

	// CreateWindow opens a fresh empty window and returns its handle.
	CreateWindow(ctx context.Context) (int64, error)

	// OpenTab opens url in the given window, focused when active is true.
	OpenTab(ctx context.Context, windowHandle int64, url string, active bool) (int64, error)

	// CloseTabs closes all handles in one batch; an error means the batch
	// as a whole could not be applied.
	CloseTabs(ctx context.Context, handles []int64) error

	// CloseTab closes a single tab. A handle the runtime no longer knows
	// is treated as already closed, not as an error, so retrying after a
	// partially applied batch never misreports closed tabs as failures.
	CloseTab(ctx context.Context, handle int64) error

	// SupportsTabGroups reports whether GroupTabs can be used at all.
	SupportsTabGroups() bool

	// GroupTabs groups the given tabs and applies a title and color,
	// returning the group handle.
	GroupTabs(ctx context.Context, handles []int64, title, color string) (int64, error)
}
