package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabvault/tabvault/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleSession() *types.Session {
	return &types.Session{
		Title:        "Morning reading",
		CreatedAt:    1756600000000,
		SkippedCount: 2,
		Items: []types.TabItem{
			{Title: "A", URL: "https://a.test", FavIconRef: "https://a.test/favicon.ico"},
			{Title: "B", URL: "https://b.test"},
			{Title: "C", URL: "https://c.test"},
		},
	}
}

func TestSessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := sampleSession()
	require.NoError(t, store.AddSession(ctx, session))
	require.NotEmpty(t, session.ID, "AddSession must assign an ID")

	loaded, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, session.Title, loaded.Title)
	require.Equal(t, session.CreatedAt, loaded.CreatedAt)
	require.Equal(t, session.SkippedCount, loaded.SkippedCount)
	require.Equal(t, session.Items, loaded.Items, "items round-trip in capture order")

	summaries, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, session.ID, summaries[0].ID)
	require.Equal(t, 3, summaries[0].ItemCount)

	require.NoError(t, store.RenameSession(ctx, session.ID, "Evening reading"))
	renamed, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, "Evening reading", renamed.Title)
	require.Equal(t, session.Items, renamed.Items, "rename must not touch items")

	require.NoError(t, store.DeleteSession(ctx, session.ID))
	_, err = store.GetSession(ctx, session.ID)
	requireCode(t, err, types.CodeSessionNotFound)
}

func TestListSessionsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := &types.Session{Title: "older", CreatedAt: 1000}
	newer := &types.Session{Title: "newer", CreatedAt: 2000}
	require.NoError(t, store.AddSession(ctx, older))
	require.NoError(t, store.AddSession(ctx, newer))

	summaries, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "newer", summaries[0].Title)
	require.Equal(t, "older", summaries[1].Title)
}

func TestSessionNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetSession(ctx, "missing")
	requireCode(t, err, types.CodeSessionNotFound)

	requireCode(t, store.RenameSession(ctx, "missing", "new title"), types.CodeSessionNotFound)
	requireCode(t, store.DeleteSession(ctx, "missing"), types.CodeSessionNotFound)
}

func TestRenameRejectsEmptyTitle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := sampleSession()
	require.NoError(t, store.AddSession(ctx, session))
	requireCode(t, store.RenameSession(ctx, session.ID, "   "), types.CodeValidation)
}

func TestSettingsMissingRecordYieldsDefaults(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.LoadSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, types.DefaultSettings(), settings)
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings := types.DefaultSettings()
	settings.KeepActiveTab = false
	settings.SessionNamePrefix = "Stash"
	require.NoError(t, store.SaveSettings(ctx, settings))

	loaded, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)
}

func TestSettingsMalformedFieldsFallBackPerField(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Wrong types for two fields, one valid override, rest absent.
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO records (key, value) VALUES (?, ?)`,
		settingsKey,
		`{"keep_active_tab":"yes","session_name_prefix":42,"exclude_pinned_tabs":false}`)
	require.NoError(t, err)

	loaded, err := store.LoadSettings(ctx)
	require.NoError(t, err)

	want := types.DefaultSettings()
	want.ExcludePinnedTabs = false
	require.Equal(t, want, loaded)
}

func TestSettingsMalformedRecordYieldsDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx,
		`INSERT INTO records (key, value) VALUES (?, ?)`, settingsKey, `not json`)
	require.NoError(t, err)

	loaded, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, types.DefaultSettings(), loaded)
}

func TestLastCaptureSlot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.LoadCaptureResult(ctx)
	require.NoError(t, err)
	require.Nil(t, first, "no capture recorded yet")

	require.NoError(t, store.SaveCaptureResult(ctx, types.CaptureResult{SessionID: "one", CapturedCount: 3}))
	require.NoError(t, store.SaveCaptureResult(ctx, types.CaptureResult{SessionID: "two", CapturedCount: 5}))

	last, err := store.LoadCaptureResult(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	require.Equal(t, "two", last.SessionID, "slot holds only the latest result")
	require.Equal(t, 5, last.CapturedCount)
}

func TestDeleteSessionCascadesItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := sampleSession()
	require.NoError(t, store.AddSession(ctx, session))
	require.NoError(t, store.DeleteSession(ctx, session.ID))

	var count int
	err := store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_items WHERE session_id = ?`, session.ID).Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count, "items must be removed with their session")
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var coded *types.CodedError
	require.ErrorAs(t, err, &coded)
	require.Equal(t, code, coded.Code)
}
