package capture

import (
	"sort"
	"strings"

	"github.com/tabvault/tabvault/internal/types"
)

const urlPreviewLimit = 5

// BuildPlan decides which of a window's tabs are persisted and which are
// eligible for closing afterwards. Pure and deterministic: the same tab
// list and settings always produce the same plan, regardless of input
// order.
func BuildPlan(tabs []types.TabSnapshot, settings types.Settings) types.CapturePlan {
	sorted := make([]types.TabSnapshot, len(tabs))
	copy(sorted, tabs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Index != sorted[j].Index {
			return sorted[i].Index < sorted[j].Index
		}
		return sorted[i].Handle < sorted[j].Handle
	})

	plan := types.CapturePlan{
		Items:           make([]types.TabItem, 0, len(sorted)),
		CloseCandidates: make([]types.CloseCandidate, 0, len(sorted)),
	}

	for _, tab := range sorted {
		if settings.ExcludePinnedTabs && tab.Pinned {
			plan.SkippedPinnedCount++
			continue
		}

		url := strings.TrimSpace(tab.URL)
		if url == "" || IsRestricted(url) {
			plan.SkippedRestrictedCount++
			continue
		}

		title := strings.TrimSpace(tab.Title)
		if title == "" {
			title = url
		}
		plan.Items = append(plan.Items, types.TabItem{
			Title:      title,
			URL:        url,
			FavIconRef: tab.FavIconRef,
		})
		if len(plan.CapturedURLsPreview) < urlPreviewLimit {
			plan.CapturedURLsPreview = append(plan.CapturedURLsPreview, url)
		}

		// A tab without a handle is captured but cannot be closed.
		if tab.Handle == 0 {
			continue
		}
		if settings.KeepActiveTab && tab.Active {
			plan.SkippedActiveCount++
			continue
		}
		plan.CloseCandidates = append(plan.CloseCandidates, types.CloseCandidate{
			Handle: tab.Handle,
			URL:    url,
		})
	}

	plan.CapturedCount = len(plan.Items)
	plan.SkippedCount = plan.SkippedRestrictedCount + plan.SkippedPinnedCount
	return plan
}
