package cdpbridge

import (
	"context"
	"testing"

	"github.com/chromedp/cdproto/target"
)

func TestHandleRegistryStable(t *testing.T) {
	rt := NewRuntime("http://127.0.0.1:9222")

	h1 := rt.handleFor(target.ID("T1"))
	h2 := rt.handleFor(target.ID("T2"))
	if h1 == h2 {
		t.Fatalf("distinct targets share handle %d", h1)
	}
	if again := rt.handleFor(target.ID("T1")); again != h1 {
		t.Fatalf("handle for T1 changed: %d -> %d", h1, again)
	}

	id, ok := rt.targetFor(h1)
	if !ok || id != target.ID("T1") {
		t.Fatalf("targetFor(%d) = %q, %v", h1, id, ok)
	}
}

func TestHandleRegistryForget(t *testing.T) {
	rt := NewRuntime("http://127.0.0.1:9222")

	h := rt.handleFor(target.ID("T1"))
	rt.rememberWindow(42, target.ID("T1"))
	rt.forget(target.ID("T1"))

	if _, ok := rt.targetFor(h); ok {
		t.Fatalf("handle %d still resolves after forget", h)
	}
	if _, ok := rt.windowRep(42); ok {
		t.Fatal("window representative survived forget")
	}
	// A reappearing target gets a fresh handle, never a reused one.
	if again := rt.handleFor(target.ID("T1")); again == h {
		t.Fatalf("handle %d reused after forget", h)
	}
}

func TestCloseTabUnknownHandleIsAlreadyClosed(t *testing.T) {
	rt := NewRuntime("http://127.0.0.1:9222")

	// Never-registered handle: nothing to do, not a failure.
	if err := rt.CloseTab(context.Background(), 7); err != nil {
		t.Fatalf("CloseTab(unknown) error = %v, want nil", err)
	}

	// A handle forgotten by an earlier close behaves the same, so a
	// per-tab retry after a partial batch cannot misreport it as failed.
	h := rt.handleFor(target.ID("T1"))
	rt.forget(target.ID("T1"))
	if err := rt.CloseTab(context.Background(), h); err != nil {
		t.Fatalf("CloseTab(forgotten) error = %v, want nil", err)
	}
}
