package types

// RestoreTarget selects where restored tabs are opened.
type RestoreTarget string

const (
	TargetCurrentWindow      RestoreTarget = "current-window"
	TargetNewWindow          RestoreTarget = "new-window"
	TargetNewWindowWithGroup RestoreTarget = "new-window-with-group"
)

// Valid reports whether t is one of the known targets.
func (t RestoreTarget) Valid() bool {
	switch t {
	case TargetCurrentWindow, TargetNewWindow, TargetNewWindowWithGroup:
		return true
	}
	return false
}

// Restore progress phases, in emission order.
const (
	PhaseOpening  = "opening"
	PhaseGrouping = "grouping"
	PhaseDone     = "done"
)

// RestoreProgress is emitted before the first open, after every item, and
// around the optional grouping step.
type RestoreProgress struct {
	Phase             string `json:"phase"`
	Total             int    `json:"total"`
	Opened            int    `json:"opened"`
	SkippedDuplicates int    `json:"skipped_duplicates"`
	Failed            int    `json:"failed"`
}

// RestoreRequest drives one restore invocation. OnProgress may be nil.
type RestoreRequest struct {
	Items            []TabItem
	Target           RestoreTarget
	SkipDuplicates   bool
	OpenInBackground bool
	GroupTitle       string
	GroupColor       string
	OnProgress       func(RestoreProgress)
}

// RestoreResult accounts for one restore invocation. Failed opens are
// tracked by URL only; a handle never existed for them.
type RestoreResult struct {
	WindowHandle           int64    `json:"window_handle"`
	OpenedHandles          []int64  `json:"opened_handles,omitempty"`
	OpenedCount            int      `json:"opened_count"`
	SkippedDuplicatesCount int      `json:"skipped_duplicates_count"`
	FailedCount            int      `json:"failed_count"`
	FailedURLs             []string `json:"failed_urls,omitempty"`
	GroupHandle            int64    `json:"group_handle,omitempty"`
	GroupError             string   `json:"group_error,omitempty"`
}
