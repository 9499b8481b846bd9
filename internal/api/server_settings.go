package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tabvault/tabvault/internal/types"
)

func registerSettingsHandlers(api huma.API, svc Service) {
	type settingsOutput struct {
		Body types.Settings
	}
	huma.Register(api, huma.Operation{OperationID: "get-settings", Method: http.MethodGet, Path: "/api/v1/settings", Summary: "Get capture/restore settings", Tags: []string{"Settings"}},
		func(ctx context.Context, input *struct{}) (*settingsOutput, error) {
			settings, err := svc.GetSettings(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &settingsOutput{}
			out.Body = settings
			return out, nil
		})

	type updateSettingsInput struct {
		Body types.Settings
	}
	huma.Register(api, huma.Operation{OperationID: "update-settings", Method: http.MethodPut, Path: "/api/v1/settings", Summary: "Replace capture/restore settings", Tags: []string{"Settings"}},
		func(ctx context.Context, input *updateSettingsInput) (*settingsOutput, error) {
			settings, err := svc.UpdateSettings(ctx, input.Body)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &settingsOutput{}
			out.Body = settings
			return out, nil
		})
}
