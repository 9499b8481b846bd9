package capture

import "testing"

func TestIsRestricted(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.com/page", false},
		{"http://localhost:8080", false},
		{"  https://example.com  ", false},
		{"", true},
		{"   ", true},
		{"chrome://settings", true},
		{"chrome-extension://abcdef/popup.html", true},
		{"devtools://devtools/bundled/inspector.html", true},
		{"about:blank", true},
		{"edge://flags", true},
		{"view-source:https://example.com", true},
		{"ftp://example.com/file", true},
		{"file:///tmp/x.html", true},
		{"javascript:alert(1)", true},
		{"not a url at all", true},
		{"CHROME://settings", true},
	}
	for _, tc := range cases {
		if got := IsRestricted(tc.url); got != tc.want {
			t.Errorf("IsRestricted(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
