package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tabvault/tabvault/internal/types"
)

func registerCaptureHandlers(api huma.API, svc Service) {
	type captureInput struct {
		Body struct {
			DryRun bool `json:"dry_run,omitempty" doc:"Plan and report without saving a session or closing tabs."`
		}
	}
	type captureOutput struct {
		Body types.CaptureResult
	}
	huma.Register(api, huma.Operation{OperationID: "capture", Method: http.MethodPost, Path: "/api/v1/capture", Summary: "Capture the current window into a session", Tags: []string{"Capture"}},
		func(ctx context.Context, input *captureInput) (*captureOutput, error) {
			result, err := svc.Capture(ctx, input.Body.DryRun)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &captureOutput{}
			out.Body = result
			return out, nil
		})

	type lastCaptureOutput struct {
		Body struct {
			Recorded bool                 `json:"recorded"`
			Result   *types.CaptureResult `json:"result,omitempty"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "last-capture", Method: http.MethodGet, Path: "/api/v1/capture/last", Summary: "Get the last capture result", Tags: []string{"Capture"}},
		func(ctx context.Context, input *struct{}) (*lastCaptureOutput, error) {
			result, err := svc.LastCapture(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &lastCaptureOutput{}
			out.Body.Recorded = result != nil
			out.Body.Result = result
			return out, nil
		})
}
