package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tabvault/tabvault/internal/types"
)

// ExportVersion is the only envelope version this build reads or writes.
const ExportVersion = 1

// The envelope wire format uses camelCase keys. This is a compatibility
// boundary with exports produced by other frontends of the same format and
// is decoded defensively, field by field.

type exportItem struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	FavIconRef string `json:"favIconRef,omitempty"`
}

type exportSession struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	CreatedAt    int64        `json:"createdAt"`
	SkippedCount int          `json:"skippedCount"`
	Items        []exportItem `json:"items"`
}

// ExportEnvelope is the versioned JSON framing for one exported session.
type ExportEnvelope struct {
	Version    int           `json:"version"`
	ExportedAt int64         `json:"exportedAt"`
	Session    exportSession `json:"session"`
}

// ExportSession wraps a stored session in a version-1 envelope.
func (s *Store) ExportSession(ctx context.Context, id string) (*ExportEnvelope, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	out := exportSession{
		ID:           session.ID,
		Title:        session.Title,
		CreatedAt:    session.CreatedAt,
		SkippedCount: session.SkippedCount,
		Items:        make([]exportItem, 0, len(session.Items)),
	}
	for _, item := range session.Items {
		out.Items = append(out.Items, exportItem{Title: item.Title, URL: item.URL, FavIconRef: item.FavIconRef})
	}

	return &ExportEnvelope{
		Version:    ExportVersion,
		ExportedAt: time.Now().UnixMilli(),
		Session:    out,
	}, nil
}

// ImportSession validates a version-1 envelope and stores its session under
// a fresh ID. A wrong version or a structurally invalid session is rejected
// outright; malformed optional fields are defaulted, and item entries
// without a string URL are dropped silently.
func (s *Store) ImportSession(ctx context.Context, raw []byte) (*types.Session, error) {
	session, err := DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if err := s.AddSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DecodeEnvelope parses and validates an export envelope without touching
// storage. The returned session has no ID; AddSession assigns one.
func DecodeEnvelope(raw []byte) (*types.Session, error) {
	var env struct {
		Version *json.Number    `json:"version"`
		Session json.RawMessage `json:"session"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return nil, types.NewError(types.CodeImportInvalid, "envelope is not valid JSON", err)
	}
	if env.Version == nil {
		return nil, types.NewError(types.CodeImportInvalid, "envelope is missing a version", nil)
	}
	if v, err := env.Version.Int64(); err != nil || v != ExportVersion {
		return nil, types.NewError(types.CodeImportInvalid, fmt.Sprintf("unsupported export version %s", env.Version.String()), nil)
	}
	if len(env.Session) == 0 {
		return nil, types.NewError(types.CodeImportInvalid, "envelope has no session", nil)
	}

	var loose struct {
		Title        any               `json:"title"`
		CreatedAt    any               `json:"createdAt"`
		SkippedCount any               `json:"skippedCount"`
		Items        []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(env.Session, &loose); err != nil {
		return nil, types.NewError(types.CodeImportInvalid, "session is not a valid object", err)
	}

	session := &types.Session{
		Title:     "Imported session",
		CreatedAt: time.Now().UnixMilli(),
		Items:     []types.TabItem{},
	}
	if title, ok := loose.Title.(string); ok && strings.TrimSpace(title) != "" {
		session.Title = strings.TrimSpace(title)
	}
	if createdAt, ok := asInt64(loose.CreatedAt); ok && createdAt > 0 {
		session.CreatedAt = createdAt
	}
	if skipped, ok := asInt64(loose.SkippedCount); ok && skipped >= 0 {
		session.SkippedCount = int(skipped)
	}

	for _, rawItem := range loose.Items {
		var item struct {
			Title      any `json:"title"`
			URL        any `json:"url"`
			FavIconRef any `json:"favIconRef"`
		}
		if json.Unmarshal(rawItem, &item) != nil {
			continue
		}
		url, ok := item.URL.(string)
		url = strings.TrimSpace(url)
		if !ok || url == "" {
			// Entries without a usable URL are dropped, not fatal.
			continue
		}
		out := types.TabItem{URL: url, Title: url}
		if title, ok := item.Title.(string); ok && strings.TrimSpace(title) != "" {
			out.Title = strings.TrimSpace(title)
		}
		if ref, ok := item.FavIconRef.(string); ok {
			out.FavIconRef = ref
		}
		session.Items = append(session.Items, out)
	}

	return session, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
