package restore

import (
	"sort"

	"github.com/tabvault/tabvault/internal/types"
)

// NormalizeSelection turns a raw index selection over n items into an
// ascending, deduplicated list with negative and out-of-range indices
// dropped. A nil selection means "all items" and stays nil.
func NormalizeSelection(indices []int, n int) []int {
	if indices == nil {
		return nil
	}
	seen := make(map[int]struct{}, len(indices))
	normalized := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		normalized = append(normalized, idx)
	}
	sort.Ints(normalized)
	return normalized
}

// SelectItems applies a raw selection to a session's items, preserving
// session order. A nil selection selects every item.
func SelectItems(items []types.TabItem, indices []int) []types.TabItem {
	if indices == nil {
		return items
	}
	normalized := NormalizeSelection(indices, len(items))
	selected := make([]types.TabItem, 0, len(normalized))
	for _, idx := range normalized {
		selected = append(selected, items[idx])
	}
	return selected
}
