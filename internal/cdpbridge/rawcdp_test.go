package cdpbridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListPagesFiltersAndPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/list" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"T1","type":"page","title":"Front","url":"https://front.test","faviconUrl":"https://front.test/f.ico"},
			{"id":"W1","type":"service_worker","title":"sw","url":"https://front.test/sw.js"},
			{"id":"T2","type":"page","title":"Back","url":"https://back.test"},
			{"id":"E1","type":"background_page","title":"ext","url":"chrome-extension://x/bg.html"}
		]`))
	}))
	defer srv.Close()

	client := newRawCDP(srv.URL)
	pages, err := client.listPages(context.Background())
	if err != nil {
		t.Fatalf("listPages() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2 (non-page targets filtered)", len(pages))
	}
	if string(pages[0].ID) != "T1" || string(pages[1].ID) != "T2" {
		t.Fatalf("pages = %+v, want z-order T1 then T2", pages)
	}
	if pages[0].FavIconURL != "https://front.test/f.ico" {
		t.Errorf("FavIconURL = %q", pages[0].FavIconURL)
	}
}

func TestListPagesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newRawCDP(srv.URL)
	if _, err := client.listPages(context.Background()); err == nil {
		t.Fatal("listPages() succeeded against a failing endpoint")
	}
}

func TestBrowserWSURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/version" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"webSocketDebuggerUrl":"ws://127.0.0.1:9222/devtools/browser/abc"}`))
	}))
	defer srv.Close()

	client := newRawCDP(srv.URL + "/") // trailing slash is trimmed
	wsURL, err := client.browserWSURL(context.Background())
	if err != nil {
		t.Fatalf("browserWSURL() error = %v", err)
	}
	if wsURL != "ws://127.0.0.1:9222/devtools/browser/abc" {
		t.Fatalf("wsURL = %q", wsURL)
	}
}

func TestBrowserWSURLMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newRawCDP(srv.URL)
	if _, err := client.browserWSURL(context.Background()); err == nil {
		t.Fatal("browserWSURL() succeeded without a debugger URL")
	}
}

func TestSendRequiresConnection(t *testing.T) {
	client := newRawCDP("http://127.0.0.1:0")
	if _, err := client.send(context.Background(), "Target.getTargets", nil); err == nil {
		t.Fatal("send() succeeded without a connection")
	}
}
