package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tabvault/tabvault/internal/service"
	"github.com/tabvault/tabvault/internal/types"
	"github.com/tabvault/tabvault/internal/vault"
)

type sessionIDInput struct {
	SessionID string `path:"session_id"`
}

func registerSessionHandlers(api huma.API, svc Service) {
	type listSessionsOutput struct {
		Body struct {
			Sessions []types.SessionSummary `json:"sessions"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-sessions", Method: http.MethodGet, Path: "/api/v1/sessions", Summary: "List saved sessions, newest first", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *struct{}) (*listSessionsOutput, error) {
			sessions, err := svc.ListSessions(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listSessionsOutput{}
			out.Body.Sessions = sessions
			return out, nil
		})

	type sessionOutput struct {
		Body types.Session
	}
	huma.Register(api, huma.Operation{OperationID: "get-session", Method: http.MethodGet, Path: "/api/v1/sessions/{session_id}", Summary: "Get one session with its items", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *sessionIDInput) (*sessionOutput, error) {
			session, err := svc.GetSession(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionOutput{}
			out.Body = *session
			return out, nil
		})

	type renameSessionInput struct {
		SessionID string `path:"session_id"`
		Body      struct {
			Title string `json:"title" required:"true"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "rename-session", Method: http.MethodPatch, Path: "/api/v1/sessions/{session_id}", Summary: "Rename a session", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *renameSessionInput) (*sessionOutput, error) {
			session, err := svc.RenameSession(ctx, input.SessionID, input.Body.Title)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionOutput{}
			out.Body = *session
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "delete-session", Method: http.MethodDelete, Path: "/api/v1/sessions/{session_id}", Summary: "Delete a session", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *sessionIDInput) (*struct{}, error) {
			if err := svc.DeleteSession(ctx, input.SessionID); err != nil {
				return nil, mapErr(err)
			}
			return &struct{}{}, nil
		})

	type restoreInput struct {
		SessionID string `path:"session_id"`
		Body      struct {
			Target         string `json:"target,omitempty" enum:"current-window,new-window,new-window-with-group" doc:"Defaults to current-window."`
			Indices        []int  `json:"indices,omitempty" doc:"Item indices to restore; omit for all. Out-of-range and duplicate indices are ignored."`
			SkipDuplicates *bool  `json:"skip_duplicates,omitempty" doc:"Defaults to the stored setting."`
			InBackground   *bool  `json:"in_background,omitempty" doc:"Defaults to the stored setting."`
			GroupTitle     string `json:"group_title,omitempty"`
			GroupColor     string `json:"group_color,omitempty"`
		}
	}
	type restoreOutput struct {
		Body types.RestoreResult
	}
	huma.Register(api, huma.Operation{OperationID: "restore-session", Method: http.MethodPost, Path: "/api/v1/sessions/{session_id}/restore", Summary: "Restore a session's tabs into a window", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *restoreInput) (*restoreOutput, error) {
			result, err := svc.Restore(ctx, input.SessionID, service.RestoreOptions{
				Target:         types.RestoreTarget(input.Body.Target),
				Indices:        input.Body.Indices,
				SkipDuplicates: input.Body.SkipDuplicates,
				InBackground:   input.Body.InBackground,
				GroupTitle:     input.Body.GroupTitle,
				GroupColor:     input.Body.GroupColor,
			})
			if err != nil {
				return nil, mapErr(err)
			}
			out := &restoreOutput{}
			out.Body = result
			return out, nil
		})

	type exportOutput struct {
		Body vault.ExportEnvelope
	}
	huma.Register(api, huma.Operation{OperationID: "export-session", Method: http.MethodGet, Path: "/api/v1/sessions/{session_id}/export", Summary: "Export a session as a versioned envelope", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *sessionIDInput) (*exportOutput, error) {
			envelope, err := svc.ExportSession(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &exportOutput{}
			out.Body = *envelope
			return out, nil
		})

	type importInput struct {
		RawBody []byte `contentType:"application/json" doc:"A version-1 export envelope."`
	}
	huma.Register(api, huma.Operation{OperationID: "import-session", Method: http.MethodPost, Path: "/api/v1/sessions/import", Summary: "Import a previously exported session", Tags: []string{"Sessions"}, SkipValidateBody: true},
		func(ctx context.Context, input *importInput) (*sessionOutput, error) {
			session, err := svc.ImportSession(ctx, input.RawBody)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionOutput{}
			out.Body = *session
			return out, nil
		})
}
