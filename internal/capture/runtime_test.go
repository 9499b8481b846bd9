package capture

import (
	"context"
	"fmt"

	"github.com/tabvault/tabvault/internal/types"
)

// fakeRuntime is an in-memory BrowserRuntime for pipeline tests.
type fakeRuntime struct {
	window int64
	tabs   []types.TabSnapshot

	listErr      error
	batchErr     error
	batchPartial int // handles closed before the batch error surfaces
	failClose    map[int64]bool
	closed       []int64
	closedSet    map[int64]bool
	batchCalls   int
}

func (f *fakeRuntime) CurrentWindow(ctx context.Context) (int64, error) {
	if f.window == 0 {
		return 0, fmt.Errorf("no window")
	}
	return f.window, nil
}

func (f *fakeRuntime) ListTabs(ctx context.Context, windowHandle int64) ([]types.TabSnapshot, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tabs, nil
}

func (f *fakeRuntime) CreateWindow(ctx context.Context) (int64, error) {
	return 0, fmt.Errorf("not supported")
}

func (f *fakeRuntime) OpenTab(ctx context.Context, windowHandle int64, url string, active bool) (int64, error) {
	return 0, fmt.Errorf("not supported")
}

func (f *fakeRuntime) CloseTabs(ctx context.Context, handles []int64) error {
	f.batchCalls++
	if f.batchErr != nil {
		// A failing batch may still have landed its first few closes.
		for i, handle := range handles {
			if i >= f.batchPartial {
				break
			}
			f.markClosed(handle)
		}
		return f.batchErr
	}
	for _, handle := range handles {
		f.markClosed(handle)
	}
	return nil
}

// CloseTab mirrors the CDP runtime contract: an already-closed handle is a
// no-op, never an error.
func (f *fakeRuntime) CloseTab(ctx context.Context, handle int64) error {
	if f.closedSet[handle] {
		return nil
	}
	if f.failClose[handle] {
		return fmt.Errorf("stale handle %d", handle)
	}
	f.markClosed(handle)
	return nil
}

func (f *fakeRuntime) markClosed(handle int64) {
	if f.closedSet == nil {
		f.closedSet = make(map[int64]bool)
	}
	if !f.closedSet[handle] {
		f.closedSet[handle] = true
		f.closed = append(f.closed, handle)
	}
}

func (f *fakeRuntime) SupportsTabGroups() bool { return false }

func (f *fakeRuntime) GroupTabs(ctx context.Context, handles []int64, title, color string) (int64, error) {
	return 0, fmt.Errorf("tab groups not supported")
}
