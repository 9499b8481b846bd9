package types

// CloseCandidate pairs a closeable tab handle with the URL it was captured
// under, so close failures can be reported by URL.
type CloseCandidate struct {
	Handle int64  `json:"handle"`
	URL    string `json:"url"`
}

// CapturePlan is the planner's deterministic output for one window.
// CloseCandidates is always a subset (by handle) of the tabs that produced
// Items; the reverse does not hold (e.g. the kept active tab).
type CapturePlan struct {
	Items                  []TabItem        `json:"items"`
	CloseCandidates        []CloseCandidate `json:"close_candidates"`
	CapturedCount          int              `json:"captured_count"`
	SkippedRestrictedCount int              `json:"skipped_restricted_count"`
	SkippedPinnedCount     int              `json:"skipped_pinned_count"`
	SkippedActiveCount     int              `json:"skipped_active_count"`
	SkippedCount           int              `json:"skipped_count"`
	CapturedURLsPreview    []string         `json:"captured_urls_preview,omitempty"`
}

// CaptureResult is the single-slot "last capture" status record. Written
// exactly once per capture attempt, last write wins.
type CaptureResult struct {
	CreatedAt              int64    `json:"created_at"` // epoch milliseconds
	SessionID              string   `json:"session_id,omitempty"`
	CapturedCount          int      `json:"captured_count"`
	ClosedCount            int      `json:"closed_count"`
	SkippedCount           int      `json:"skipped_count"`
	SkippedRestrictedCount int      `json:"skipped_restricted_count"`
	SkippedPinnedCount     int      `json:"skipped_pinned_count"`
	SkippedActiveCount     int      `json:"skipped_active_count"`
	FailedToCloseCount     int      `json:"failed_to_close_count"`
	FailedToCloseHandles   []int64  `json:"failed_to_close_handles,omitempty"`
	FailedToCloseURLs      []string `json:"failed_to_close_urls,omitempty"`
	CloseError             string   `json:"close_error,omitempty"`
	DryRun                 bool     `json:"dry_run,omitempty"`
	Message                string   `json:"message,omitempty"`
	Error                  string   `json:"error,omitempty"`
}
