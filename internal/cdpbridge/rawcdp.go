package cdpbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// pageInfo is one entry of the /json/list endpoint. Entries come back in
// z-order, front-most first, which is the only focus signal the DevTools
// HTTP surface exposes.
type pageInfo struct {
	ID         target.ID
	Title      string
	URL        string
	FavIconURL string
}

// rawCDP is a minimal CDP client speaking browser-level commands over the
// DevTools WebSocket. It deliberately never attaches page sessions: the
// pipeline only creates, closes and activates targets, so the heavy
// auto-attach machinery (and its instability on some browser builds) is
// avoided entirely.
type rawCDP struct {
	httpBase string // e.g. "http://127.0.0.1:9222"

	mu   sync.Mutex
	conn net.Conn
	seq  atomic.Int64

	pending   map[int64]chan json.RawMessage
	pendingMu sync.Mutex
}

func newRawCDP(httpBase string) *rawCDP {
	return &rawCDP{
		httpBase: strings.TrimRight(httpBase, "/"),
		pending:  make(map[int64]chan json.RawMessage),
	}
}

// connect dials the browser-level WebSocket endpoint.
func (r *rawCDP) connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return nil
	}

	wsURL, err := r.browserWSURL(ctx)
	if err != nil {
		return fmt.Errorf("cdpbridge: browser ws url: %w", err)
	}

	slog.Debug("cdpbridge connecting", "ws_url", wsURL)
	conn, _, _, err := ws.Dial(ctx, wsURL)
	if err != nil {
		return fmt.Errorf("cdpbridge: dial: %w", err)
	}

	r.conn = conn
	r.pending = make(map[int64]chan json.RawMessage)
	go r.readLoop()
	return nil
}

func (r *rawCDP) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}

// readLoop dispatches command responses to their waiters. Events are
// ignored; nothing here subscribes to any.
func (r *rawCDP) readLoop() {
	for {
		r.mu.Lock()
		conn := r.conn
		r.mu.Unlock()
		if conn == nil {
			return
		}

		data, err := wsutil.ReadServerText(conn)
		if err != nil {
			slog.Debug("cdpbridge read loop exit", "error", err)
			r.closeAllPending()
			return
		}

		var msg struct {
			ID int64 `json:"id"`
		}
		if json.Unmarshal(data, &msg) != nil || msg.ID == 0 {
			continue
		}
		r.pendingMu.Lock()
		ch, ok := r.pending[msg.ID]
		if ok {
			delete(r.pending, msg.ID)
		}
		r.pendingMu.Unlock()
		if ok {
			ch <- json.RawMessage(data)
		}
	}
}

func (r *rawCDP) closeAllPending() {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	for id, ch := range r.pending {
		close(ch)
		delete(r.pending, id)
	}
}

func (r *rawCDP) deletePending(id int64) {
	r.pendingMu.Lock()
	delete(r.pending, id)
	r.pendingMu.Unlock()
}

// send issues one CDP command and waits for the matching response, then
// unwraps the inner result, surfacing protocol errors.
func (r *rawCDP) send(ctx context.Context, method string, params any) (json.RawMessage, error) {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("cdpbridge: not connected")
	}

	id := r.seq.Add(1)
	req := struct {
		ID     int64  `json:"id"`
		Method string `json:"method"`
		Params any    `json:"params,omitempty"`
	}{ID: id, Method: method, Params: params}

	ch := make(chan json.RawMessage, 1)
	r.pendingMu.Lock()
	r.pending[id] = ch
	r.pendingMu.Unlock()

	data, err := json.Marshal(req)
	if err != nil {
		r.deletePending(id)
		return nil, fmt.Errorf("cdpbridge: marshal: %w", err)
	}

	r.mu.Lock()
	err = wsutil.WriteClientText(conn, data)
	r.mu.Unlock()
	if err != nil {
		r.deletePending(id)
		return nil, fmt.Errorf("cdpbridge: send: %w", err)
	}

	var resp json.RawMessage
	select {
	case got, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("cdpbridge: connection closed")
		}
		resp = got
	case <-ctx.Done():
		r.deletePending(id)
		return nil, ctx.Err()
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp, &envelope); err != nil {
		return nil, fmt.Errorf("cdpbridge: unmarshal %s: %w", method, err)
	}
	if envelope.Error != nil {
		return nil, fmt.Errorf("cdpbridge: %s: %s", method, envelope.Error.Message)
	}
	return envelope.Result, nil
}

// createTarget opens a new page target. newWindow requests a fresh browser
// window; background opens the tab without stealing focus.
func (r *rawCDP) createTarget(ctx context.Context, url string, newWindow, background bool) (target.ID, error) {
	params := struct {
		URL        string `json:"url"`
		NewWindow  bool   `json:"newWindow,omitempty"`
		Background bool   `json:"background,omitempty"`
	}{URL: url, NewWindow: newWindow, Background: background}

	raw, err := r.send(ctx, "Target.createTarget", params)
	if err != nil {
		return "", err
	}
	var resp struct {
		TargetID target.ID `json:"targetId"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("cdpbridge: unmarshal createTarget: %w", err)
	}
	if resp.TargetID == "" {
		return "", fmt.Errorf("cdpbridge: createTarget returned no target id")
	}
	return resp.TargetID, nil
}

func (r *rawCDP) closeTarget(ctx context.Context, id target.ID) error {
	params := struct {
		TargetID target.ID `json:"targetId"`
	}{TargetID: id}
	_, err := r.send(ctx, "Target.closeTarget", params)
	return err
}

// activateTarget focuses a target, which also raises its window.
func (r *rawCDP) activateTarget(ctx context.Context, id target.ID) error {
	params := struct {
		TargetID target.ID `json:"targetId"`
	}{TargetID: id}
	_, err := r.send(ctx, "Target.activateTarget", params)
	return err
}

// windowForTarget resolves the browser window owning a target.
func (r *rawCDP) windowForTarget(ctx context.Context, id target.ID) (int64, error) {
	params := struct {
		TargetID target.ID `json:"targetId"`
	}{TargetID: id}
	raw, err := r.send(ctx, "Browser.getWindowForTarget", params)
	if err != nil {
		return 0, err
	}
	var resp struct {
		WindowID int64 `json:"windowId"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("cdpbridge: unmarshal getWindowForTarget: %w", err)
	}
	return resp.WindowID, nil
}

// listPages fetches open page targets via the HTTP /json/list endpoint,
// preserving its z-order.
func (r *rawCDP) listPages(ctx context.Context) ([]pageInfo, error) {
	listCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(listCtx, http.MethodGet, r.httpBase+"/json/list", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cdpbridge: /json/list: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var entries []struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Title      string `json:"title"`
		URL        string `json:"url"`
		FavIconURL string `json:"faviconUrl"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, err
	}

	pages := make([]pageInfo, 0, len(entries))
	for _, e := range entries {
		if e.Type != "page" {
			continue
		}
		pages = append(pages, pageInfo{
			ID:         target.ID(e.ID),
			Title:      e.Title,
			URL:        e.URL,
			FavIconURL: e.FavIconURL,
		})
	}
	return pages, nil
}

// browserWSURL fetches the WebSocket debugger URL from /json/version.
func (r *rawCDP) browserWSURL(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.httpBase+"/json/version", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cdpbridge: /json/version: HTTP %d", resp.StatusCode)
	}

	var info struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	if info.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("cdpbridge: empty webSocketDebuggerUrl")
	}
	return info.WebSocketDebuggerURL, nil
}
