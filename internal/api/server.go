package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tabvault/tabvault/internal/cdpbridge"
	"github.com/tabvault/tabvault/internal/service"
	"github.com/tabvault/tabvault/internal/types"
	"github.com/tabvault/tabvault/internal/vault"
)

// Service is the operation surface the REST handlers consume.
type Service interface {
	Capture(ctx context.Context, dryRun bool) (types.CaptureResult, error)
	LastCapture(ctx context.Context) (*types.CaptureResult, error)
	Restore(ctx context.Context, sessionID string, opts service.RestoreOptions) (types.RestoreResult, error)
	ListSessions(ctx context.Context) ([]types.SessionSummary, error)
	GetSession(ctx context.Context, id string) (*types.Session, error)
	RenameSession(ctx context.Context, id, title string) (*types.Session, error)
	DeleteSession(ctx context.Context, id string) error
	ExportSession(ctx context.Context, id string) (*vault.ExportEnvelope, error)
	ImportSession(ctx context.Context, envelope []byte) (*types.Session, error)
	GetSettings(ctx context.Context) (types.Settings, error)
	UpdateSettings(ctx context.Context, settings types.Settings) (types.Settings, error)
	DeepHealth(ctx context.Context) (cdpbridge.ProbeResult, error)
}

func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Tabvault API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerCaptureHandlers(api, svc)
	registerSessionHandlers(api, svc)
	registerSettingsHandlers(api, svc)
	registerHealthHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *types.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case types.CodeValidation, types.CodeImportInvalid:
			return huma.Error400BadRequest(coded.Message)
		case types.CodeSessionNotFound:
			return huma.Error404NotFound(coded.Message)
		case types.CodeCDPUnavailable:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
