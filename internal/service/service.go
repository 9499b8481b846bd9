package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/tabvault/tabvault/internal/capture"
	"github.com/tabvault/tabvault/internal/cdpbridge"
	"github.com/tabvault/tabvault/internal/notify"
	"github.com/tabvault/tabvault/internal/restore"
	"github.com/tabvault/tabvault/internal/types"
	"github.com/tabvault/tabvault/internal/vault"
)

// RestoreOptions carries one restore invocation's parameters. Nil booleans
// fall back to the stored settings defaults.
type RestoreOptions struct {
	Target         types.RestoreTarget
	Indices        []int
	SkipDuplicates *bool
	InBackground   *bool
	GroupTitle     string
	GroupColor     string
	OnProgress     func(types.RestoreProgress)
}

// Service wraps the capture/restore pipelines and the vault behind one
// surface shared by the REST API and the CLI. A mutex serializes pipeline
// invocations so each capture or restore runs as a single logical
// operation.
type Service struct {
	rt           types.BrowserRuntime
	store        *vault.Store
	orchestrator *capture.Orchestrator
	engine       *restore.Engine
	cdpURL       string
	notifier     *notify.Notifier

	pipelineMu sync.Mutex
}

func New(rt types.BrowserRuntime, store *vault.Store, cdpURL string, notifier *notify.Notifier) *Service {
	return &Service{
		rt:           rt,
		store:        store,
		orchestrator: capture.NewOrchestrator(rt, store),
		engine:       restore.NewEngine(rt),
		cdpURL:       cdpURL,
		notifier:     notifier,
	}
}

// Capture runs one capture of the current window.
func (s *Service) Capture(ctx context.Context, dryRun bool) (types.CaptureResult, error) {
	s.pipelineMu.Lock()
	defer s.pipelineMu.Unlock()

	result, err := s.orchestrator.CaptureCurrentWindow(ctx, dryRun)
	if err != nil {
		return result, types.NewError(types.CodeStoreFailure, "record capture result", err)
	}
	if s.notifier != nil && !dryRun {
		s.notifier.CaptureFinished(ctx, result)
	}
	return result, nil
}

// LastCapture returns the last recorded capture result, or nil.
func (s *Service) LastCapture(ctx context.Context) (*types.CaptureResult, error) {
	return s.store.LoadCaptureResult(ctx)
}

// Restore replays a stored session per the given options.
func (s *Service) Restore(ctx context.Context, sessionID string, opts RestoreOptions) (types.RestoreResult, error) {
	s.pipelineMu.Lock()
	defer s.pipelineMu.Unlock()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return types.RestoreResult{}, err
	}
	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		return types.RestoreResult{}, err
	}

	target := opts.Target
	if target == "" {
		target = types.TargetCurrentWindow
	}

	req := types.RestoreRequest{
		Items:            restore.SelectItems(session.Items, opts.Indices),
		Target:           target,
		SkipDuplicates:   settings.SkipDuplicatesOnRestore,
		OpenInBackground: settings.RestoreInBackgroundDefault,
		GroupTitle:       opts.GroupTitle,
		GroupColor:       opts.GroupColor,
		OnProgress:       opts.OnProgress,
	}
	if opts.SkipDuplicates != nil {
		req.SkipDuplicates = *opts.SkipDuplicates
	}
	if opts.InBackground != nil {
		req.OpenInBackground = *opts.InBackground
	}
	if req.GroupTitle == "" {
		req.GroupTitle = session.Title
	}

	slog.Info("restore starting",
		"session_id", sessionID,
		"target", string(req.Target),
		"items", len(req.Items),
		"skip_duplicates", req.SkipDuplicates,
	)
	return s.engine.Restore(ctx, req)
}

// ListSessions returns all session summaries, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]types.SessionSummary, error) {
	return s.store.ListSessions(ctx)
}

func (s *Service) GetSession(ctx context.Context, id string) (*types.Session, error) {
	return s.store.GetSession(ctx, strings.TrimSpace(id))
}

func (s *Service) RenameSession(ctx context.Context, id, title string) (*types.Session, error) {
	if err := s.store.RenameSession(ctx, strings.TrimSpace(id), title); err != nil {
		return nil, err
	}
	return s.store.GetSession(ctx, strings.TrimSpace(id))
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.store.DeleteSession(ctx, strings.TrimSpace(id))
}

func (s *Service) ExportSession(ctx context.Context, id string) (*vault.ExportEnvelope, error) {
	return s.store.ExportSession(ctx, strings.TrimSpace(id))
}

func (s *Service) ImportSession(ctx context.Context, envelope []byte) (*types.Session, error) {
	return s.store.ImportSession(ctx, envelope)
}

func (s *Service) GetSettings(ctx context.Context) (types.Settings, error) {
	return s.store.LoadSettings(ctx)
}

func (s *Service) UpdateSettings(ctx context.Context, settings types.Settings) (types.Settings, error) {
	if strings.TrimSpace(settings.SessionNamePrefix) == "" {
		settings.SessionNamePrefix = types.DefaultSettings().SessionNamePrefix
	}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return types.Settings{}, err
	}
	return settings, nil
}

// DeepHealth checks browser reachability through a chromedp probe.
func (s *Service) DeepHealth(ctx context.Context) (cdpbridge.ProbeResult, error) {
	result, err := cdpbridge.Probe(ctx, s.cdpURL)
	if err != nil {
		return cdpbridge.ProbeResult{}, types.NewError(types.CodeCDPUnavailable, "browser probe failed", err)
	}
	return result, nil
}
