package cdpbridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/target"

	"github.com/tabvault/tabvault/internal/types"
)

// Runtime implements types.BrowserRuntime over the Chrome DevTools
// Protocol. Tab handles are stable int64s assigned by an internal registry
// mapping them to CDP target IDs; window handles are CDP window IDs as
// returned by Browser.getWindowForTarget.
//
// Two protocol gaps are bridged by convention:
//   - Chrome has no focused-window query, so the current window is the one
//     owning the front-most page entry of /json/list;
//   - Target.createTarget cannot address a window, so opening into a
//     specific window first activates one of that window's tabs (raising
//     the window) and then creates the target, which Chrome places in the
//     last-raised window.
//
// Pinned state and tab groups are not exposed over CDP at all: snapshots
// report Pinned=false and SupportsTabGroups is false, so grouping degrades
// to the non-fatal group error path.
type Runtime struct {
	cdp *rawCDP

	mu         sync.Mutex
	handles    map[target.ID]int64
	targets    map[int64]target.ID
	windowReps map[int64]target.ID // representative target per window
	nextHandle int64
}

var _ types.BrowserRuntime = (*Runtime)(nil)

// NewRuntime builds a Runtime against a DevTools HTTP endpoint such as
// "http://127.0.0.1:9222". Call Connect before use.
func NewRuntime(cdpURL string) *Runtime {
	return &Runtime{
		cdp:        newRawCDP(cdpURL),
		handles:    make(map[target.ID]int64),
		targets:    make(map[int64]target.ID),
		windowReps: make(map[int64]target.ID),
	}
}

func (r *Runtime) Connect(ctx context.Context) error {
	if err := r.cdp.connect(ctx); err != nil {
		return types.NewError(types.CodeCDPUnavailable, "connect to browser", err)
	}
	slog.Info("cdpbridge connected", "cdp_url", r.cdp.httpBase)
	return nil
}

func (r *Runtime) Close() error {
	r.cdp.close()
	return nil
}

// CurrentWindow resolves the window owning the front-most page.
func (r *Runtime) CurrentWindow(ctx context.Context) (int64, error) {
	pages, err := r.cdp.listPages(ctx)
	if err != nil {
		return 0, types.NewError(types.CodeCDPUnavailable, "list targets", err)
	}
	if len(pages) == 0 {
		return 0, types.NewError(types.CodeCDPUnavailable, "browser has no open pages", nil)
	}
	windowID, err := r.cdp.windowForTarget(ctx, pages[0].ID)
	if err != nil {
		return 0, types.NewError(types.CodeCDPUnavailable, "resolve window", err)
	}
	r.rememberWindow(windowID, pages[0].ID)
	return windowID, nil
}

// ListTabs enumerates the pages of one window. Index follows the /json/list
// order restricted to that window, and the window's front-most page is
// reported active.
func (r *Runtime) ListTabs(ctx context.Context, windowHandle int64) ([]types.TabSnapshot, error) {
	pages, err := r.cdp.listPages(ctx)
	if err != nil {
		return nil, types.NewError(types.CodeCDPUnavailable, "list targets", err)
	}

	tabs := make([]types.TabSnapshot, 0, len(pages))
	for _, page := range pages {
		owner, err := r.cdp.windowForTarget(ctx, page.ID)
		if err != nil {
			slog.Debug("window lookup failed, skipping target", "target_id", page.ID, "error", err)
			continue
		}
		if owner != windowHandle {
			continue
		}
		r.rememberWindow(owner, page.ID)
		tabs = append(tabs, types.TabSnapshot{
			Handle:     r.handleFor(page.ID),
			Index:      len(tabs),
			URL:        page.URL,
			Title:      page.Title,
			FavIconRef: page.FavIconURL,
			Active:     len(tabs) == 0,
		})
	}
	return tabs, nil
}

// CreateWindow opens a fresh window seeded with a blank page.
func (r *Runtime) CreateWindow(ctx context.Context) (int64, error) {
	targetID, err := r.cdp.createTarget(ctx, "about:blank", true, false)
	if err != nil {
		return 0, types.NewError(types.CodeCDPUnavailable, "create window", err)
	}
	windowID, err := r.cdp.windowForTarget(ctx, targetID)
	if err != nil {
		return 0, types.NewError(types.CodeCDPUnavailable, "resolve new window", err)
	}
	r.rememberWindow(windowID, targetID)
	slog.Debug("created window", "window", windowID)
	return windowID, nil
}

// OpenTab opens url in the given window.
func (r *Runtime) OpenTab(ctx context.Context, windowHandle int64, url string, active bool) (int64, error) {
	// Raise the destination window so the new target lands in it.
	if rep, ok := r.windowRep(windowHandle); ok {
		if err := r.cdp.activateTarget(ctx, rep); err != nil {
			slog.Debug("activate window representative failed", "window", windowHandle, "error", err)
		}
	}

	targetID, err := r.cdp.createTarget(ctx, url, false, !active)
	if err != nil {
		return 0, fmt.Errorf("open tab %s: %w", url, err)
	}
	r.rememberWindow(windowHandle, targetID)
	return r.handleFor(targetID), nil
}

// CloseTabs applies one close per handle and treats the first protocol
// failure as a failure of the whole batch, leaving the caller's per-tab
// fallback to finish the rest.
func (r *Runtime) CloseTabs(ctx context.Context, handles []int64) error {
	for _, handle := range handles {
		if err := r.CloseTab(ctx, handle); err != nil {
			return err
		}
	}
	return nil
}

// CloseTab closes one tab. A handle with no registry entry was already
// closed (handles only ever come from ListTabs, and a partial batch close
// forgets each handle as it lands), so it is not an error: reporting it as
// one would make the per-tab fallback count already-closed tabs as failures.
func (r *Runtime) CloseTab(ctx context.Context, handle int64) error {
	targetID, ok := r.targetFor(handle)
	if !ok {
		slog.Debug("tab handle already closed", "handle", handle)
		return nil
	}
	if err := r.cdp.closeTarget(ctx, targetID); err != nil {
		return err
	}
	r.forget(targetID)
	return nil
}

// SupportsTabGroups is always false for CDP: Chrome exposes no tab-group
// commands over the protocol.
func (r *Runtime) SupportsTabGroups() bool { return false }

func (r *Runtime) GroupTabs(ctx context.Context, handles []int64, title, color string) (int64, error) {
	return 0, fmt.Errorf("tab grouping is not available over CDP")
}

func (r *Runtime) handleFor(id target.ID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if handle, ok := r.handles[id]; ok {
		return handle
	}
	r.nextHandle++
	r.handles[id] = r.nextHandle
	r.targets[r.nextHandle] = id
	return r.nextHandle
}

func (r *Runtime) targetFor(handle int64) (target.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.targets[handle]
	return id, ok
}

func (r *Runtime) forget(id target.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if handle, ok := r.handles[id]; ok {
		delete(r.targets, handle)
		delete(r.handles, id)
	}
	for windowID, rep := range r.windowReps {
		if rep == id {
			delete(r.windowReps, windowID)
		}
	}
}

func (r *Runtime) rememberWindow(windowID int64, id target.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windowReps[windowID] = id
}

func (r *Runtime) windowRep(windowID int64) (target.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.windowReps[windowID]
	return id, ok
}
