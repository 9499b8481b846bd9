package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tabvault/tabvault/internal/types"
)

// Notifier posts plain-text capture summaries to an NTFY-style endpoint.
// An empty endpoint disables notifications (New returns nil).
type Notifier struct {
	endpoint string
	client   *http.Client
}

// New returns a Notifier, or nil when endpoint is empty.
func New(endpoint string, client *http.Client) *Notifier {
	if strings.TrimSpace(endpoint) == "" {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Notifier{endpoint: endpoint, client: client}
}

// CaptureFinished sends a one-line summary of a capture result. Failures
// are logged, never propagated; notification is best effort.
func (n *Notifier) CaptureFinished(ctx context.Context, result types.CaptureResult) {
	var message string
	switch {
	case result.Error != "":
		message = fmt.Sprintf("tabvault capture failed: %s", result.Error)
	case result.SessionID == "":
		message = fmt.Sprintf("tabvault capture: nothing saved (%d skipped)", result.SkippedCount)
	default:
		message = fmt.Sprintf("tabvault capture: saved %d tabs, closed %d, skipped %d (session %s)",
			result.CapturedCount, result.ClosedCount, result.SkippedCount, result.SessionID)
	}
	if err := Send(ctx, n.client, n.endpoint, message); err != nil {
		slog.Debug("capture notification failed", "endpoint", n.endpoint, "error", err)
	}
}

// Send sends a message to the requested endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
