package capture

import (
	"testing"

	"github.com/tabvault/tabvault/internal/types"
)

func TestBuildPlanOrderIsDeterministic(t *testing.T) {
	tabs := []types.TabSnapshot{
		{Handle: 30, Index: 2, URL: "https://c.test"},
		{Handle: 10, Index: 0, URL: "https://a.test"},
		{Handle: 21, Index: 1, URL: "https://b2.test"},
		{Handle: 20, Index: 1, URL: "https://b1.test"},
	}
	shuffled := []types.TabSnapshot{tabs[3], tabs[0], tabs[1], tabs[2]}

	plan := BuildPlan(tabs, types.DefaultSettings())
	again := BuildPlan(shuffled, types.DefaultSettings())

	wantURLs := []string{"https://a.test", "https://b1.test", "https://b2.test", "https://c.test"}
	if len(plan.Items) != len(wantURLs) {
		t.Fatalf("captured %d items, want %d", len(plan.Items), len(wantURLs))
	}
	for i, want := range wantURLs {
		if plan.Items[i].URL != want {
			t.Errorf("item %d URL = %q, want %q", i, plan.Items[i].URL, want)
		}
		if again.Items[i].URL != want {
			t.Errorf("shuffled input: item %d URL = %q, want %q", i, again.Items[i].URL, want)
		}
	}
}

func TestBuildPlanSkipsPinnedAndRestricted(t *testing.T) {
	tabs := []types.TabSnapshot{
		{Handle: 1, Index: 0, URL: "https://keep.test", Title: "Keep"},
		{Handle: 2, Index: 1, URL: "chrome://settings"},
		{Handle: 3, Index: 2, URL: "https://pinned.test", Pinned: true},
		{Handle: 4, Index: 3, URL: "   "},
	}

	plan := BuildPlan(tabs, types.DefaultSettings())

	if plan.CapturedCount != 1 || plan.Items[0].URL != "https://keep.test" {
		t.Fatalf("captured = %+v, want only keep.test", plan.Items)
	}
	if plan.SkippedRestrictedCount != 2 {
		t.Errorf("SkippedRestrictedCount = %d, want 2", plan.SkippedRestrictedCount)
	}
	if plan.SkippedPinnedCount != 1 {
		t.Errorf("SkippedPinnedCount = %d, want 1", plan.SkippedPinnedCount)
	}
	if plan.SkippedCount != 3 {
		t.Errorf("SkippedCount = %d, want 3", plan.SkippedCount)
	}
}

func TestBuildPlanPinnedCapturedWhenNotExcluded(t *testing.T) {
	settings := types.DefaultSettings()
	settings.ExcludePinnedTabs = false

	tabs := []types.TabSnapshot{
		{Handle: 1, Index: 0, URL: "https://pinned.test", Pinned: true},
	}
	plan := BuildPlan(tabs, settings)

	if plan.CapturedCount != 1 {
		t.Fatalf("CapturedCount = %d, want 1", plan.CapturedCount)
	}
	if len(plan.CloseCandidates) != 1 {
		t.Fatalf("CloseCandidates = %v, want the pinned tab", plan.CloseCandidates)
	}
}

func TestBuildPlanKeepsActiveTabOpen(t *testing.T) {
	tabs := []types.TabSnapshot{
		{Handle: 1, Index: 0, URL: "https://a.test"},
		{Handle: 2, Index: 1, URL: "https://b.test", Active: true},
	}

	plan := BuildPlan(tabs, types.DefaultSettings())

	if plan.CapturedCount != 2 {
		t.Fatalf("CapturedCount = %d, want 2 (active tab still captured)", plan.CapturedCount)
	}
	if len(plan.CloseCandidates) != 1 || plan.CloseCandidates[0].Handle != 1 {
		t.Fatalf("CloseCandidates = %+v, want only handle 1", plan.CloseCandidates)
	}
	if plan.SkippedActiveCount != 1 {
		t.Errorf("SkippedActiveCount = %d, want 1", plan.SkippedActiveCount)
	}
}

func TestBuildPlanHandlelessTabNotCloseable(t *testing.T) {
	tabs := []types.TabSnapshot{
		{Handle: 0, Index: 0, URL: "https://ghost.test"},
	}

	plan := BuildPlan(tabs, types.DefaultSettings())

	if plan.CapturedCount != 1 {
		t.Fatalf("CapturedCount = %d, want 1", plan.CapturedCount)
	}
	if len(plan.CloseCandidates) != 0 {
		t.Fatalf("CloseCandidates = %+v, want none", plan.CloseCandidates)
	}
}

func TestBuildPlanCloseCandidatesSubsetOfItems(t *testing.T) {
	tabs := []types.TabSnapshot{
		{Handle: 1, Index: 0, URL: "https://a.test"},
		{Handle: 2, Index: 1, URL: "chrome://version"},
		{Handle: 3, Index: 2, URL: "https://b.test", Active: true},
		{Handle: 4, Index: 3, URL: "https://c.test", Pinned: true},
	}

	plan := BuildPlan(tabs, types.DefaultSettings())

	captured := make(map[string]bool, len(plan.Items))
	for _, item := range plan.Items {
		captured[item.URL] = true
	}
	for _, c := range plan.CloseCandidates {
		if !captured[c.URL] {
			t.Errorf("close candidate %q was never captured", c.URL)
		}
	}
}

func TestBuildPlanDefaultsAndPreview(t *testing.T) {
	tabs := make([]types.TabSnapshot, 0, 7)
	for i := 0; i < 7; i++ {
		tabs = append(tabs, types.TabSnapshot{
			Handle: int64(i + 1),
			Index:  i,
			URL:    "https://example.test/" + string(rune('a'+i)),
		})
	}
	tabs[0].Title = "   "

	plan := BuildPlan(tabs, types.DefaultSettings())

	if plan.Items[0].Title != plan.Items[0].URL {
		t.Errorf("blank title should default to URL, got %q", plan.Items[0].Title)
	}
	if len(plan.CapturedURLsPreview) != urlPreviewLimit {
		t.Errorf("preview has %d URLs, want %d", len(plan.CapturedURLsPreview), urlPreviewLimit)
	}
}
