package cdpbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ProbeResult summarizes a browser reachability check.
type ProbeResult struct {
	Reachable bool  `json:"reachable"`
	PageCount int   `json:"page_count"`
	LatencyMS int64 `json:"latency_ms"`
}

// Probe verifies that the browser behind cdpURL answers DevTools calls,
// using a short-lived chromedp remote allocator. Used at daemon startup and
// by the deep health endpoint.
func Probe(ctx context.Context, cdpURL string) (ProbeResult, error) {
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(probeCtx, cdpURL)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if err := chromedp.Run(browserCtx); err != nil {
		return ProbeResult{}, fmt.Errorf("cdpbridge: probe connect: %w", err)
	}

	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("cdpbridge: probe targets: %w", err)
	}

	pageCount := 0
	for _, t := range targets {
		if t.Type == "page" {
			pageCount++
		}
	}

	return ProbeResult{
		Reachable: true,
		PageCount: pageCount,
		LatencyMS: time.Since(start).Milliseconds(),
	}, nil
}
