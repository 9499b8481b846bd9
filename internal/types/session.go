package types

// TabSnapshot is the ephemeral view of a live browser tab used as planner
// input. It is never persisted.
type TabSnapshot struct {
	// Handle is the runtime tab handle; 0 means the runtime assigned none.
	Handle     int64  `json:"handle,omitempty"`
	Index      int    `json:"index"`
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	FavIconRef string `json:"fav_icon_ref,omitempty"`
	// Pinned is honored by the planner's pinned-skip path, but the CDP
	// runtime never sets it: DevTools does not expose pinned state. Only
	// runtimes with richer tab access (extensions, tests) populate it.
	Pinned bool   `json:"pinned,omitempty"`
	Active bool   `json:"active,omitempty"`
}

// TabItem is the persisted record of one captured tab. Immutable once
// created; only the owning session's title changes after capture.
type TabItem struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	FavIconRef string `json:"fav_icon_ref,omitempty"`
}

// Session is a named, ordered list of captured tabs. Item order is capture
// order and is replayed verbatim on restore.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    int64     `json:"created_at"` // epoch milliseconds
	SkippedCount int       `json:"skipped_count"`
	Items        []TabItem `json:"items"`
}

// SessionSummary is the listing view of a session without its items.
type SessionSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    int64  `json:"created_at"`
	SkippedCount int    `json:"skipped_count"`
	ItemCount    int    `json:"item_count"`
}

// Settings holds the persisted capture/restore preferences.
type Settings struct {
	KeepActiveTab              bool   `json:"keep_active_tab"`
	ExcludePinnedTabs          bool   `json:"exclude_pinned_tabs"`
	SessionNamePrefix          string `json:"session_name_prefix"`
	SkipDuplicatesOnRestore    bool   `json:"skip_duplicates_on_restore"`
	RestoreInBackgroundDefault bool   `json:"restore_in_background_default"`
}

// DefaultSettings returns the fixed per-field defaults used whenever a
// stored settings record is missing or malformed.
func DefaultSettings() Settings {
	return Settings{
		KeepActiveTab:              true,
		ExcludePinnedTabs:          true,
		SessionNamePrefix:          "Session",
		SkipDuplicatesOnRestore:    true,
		RestoreInBackgroundDefault: false,
	}
}
