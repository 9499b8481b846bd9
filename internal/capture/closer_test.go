package capture

import (
	"context"
	"fmt"
	"testing"
)

func TestCloseTabsEmpty(t *testing.T) {
	rt := &fakeRuntime{}
	outcome := CloseTabs(context.Background(), rt, nil)
	if len(outcome.Closed) != 0 || len(outcome.Failed) != 0 || outcome.BatchError != "" {
		t.Fatalf("outcome = %+v, want empty", outcome)
	}
	if rt.batchCalls != 0 {
		t.Fatalf("batch close called %d times for empty input", rt.batchCalls)
	}
}

func TestCloseTabsBatchSucceeds(t *testing.T) {
	rt := &fakeRuntime{}
	outcome := CloseTabs(context.Background(), rt, []int64{1, 2, 3})
	if len(outcome.Closed) != 3 || len(outcome.Failed) != 0 {
		t.Fatalf("outcome = %+v, want all closed", outcome)
	}
	if outcome.BatchError != "" {
		t.Fatalf("BatchError = %q, want empty", outcome.BatchError)
	}
}

func TestCloseTabsPartialBatchNotDoubleCounted(t *testing.T) {
	// The batch closes handles 1 and 2 before erroring on 3. The per-tab
	// fallback re-visits all three; the two already-closed handles must be
	// counted closed, not failed.
	rt := &fakeRuntime{
		batchErr:     fmt.Errorf("target detached"),
		batchPartial: 2,
		failClose:    map[int64]bool{3: true},
	}
	outcome := CloseTabs(context.Background(), rt, []int64{1, 2, 3})

	if outcome.BatchError == "" {
		t.Fatal("BatchError not recorded")
	}
	if len(outcome.Closed) != 2 || outcome.Closed[0] != 1 || outcome.Closed[1] != 2 {
		t.Fatalf("Closed = %v, want [1 2]", outcome.Closed)
	}
	if len(outcome.Failed) != 1 || outcome.Failed[0] != 3 {
		t.Fatalf("Failed = %v, want [3]", outcome.Failed)
	}
	if len(rt.closed) != 2 {
		t.Fatalf("runtime closed %v, want each tab closed exactly once", rt.closed)
	}
}

func TestCloseTabsFallsBackPerTab(t *testing.T) {
	rt := &fakeRuntime{
		batchErr:  fmt.Errorf("batch rejected"),
		failClose: map[int64]bool{2: true},
	}
	outcome := CloseTabs(context.Background(), rt, []int64{1, 2, 3})

	if outcome.BatchError == "" {
		t.Fatal("BatchError not recorded")
	}
	if len(outcome.Closed) != 2 {
		t.Fatalf("Closed = %v, want handles 1 and 3", outcome.Closed)
	}
	if len(outcome.Failed) != 1 || outcome.Failed[0] != 2 {
		t.Fatalf("Failed = %v, want [2]", outcome.Failed)
	}
}
