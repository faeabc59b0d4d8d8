package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/videoprep/videoprep-server/internal/export"
	"github.com/videoprep/videoprep-server/internal/media"
)

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.Videos == nil {
			WriteError(w, http.StatusBadRequest, "videos array is required", "BAD_REQUEST")
			return
		}
		if len(*req.Videos) == 0 {
			WriteJSON(w, http.StatusOK, ExportResponse{Results: []export.Result{}})
			return
		}
		if req.GlobalSettings == nil {
			WriteError(w, http.StatusBadRequest, "globalSettings is required", "BAD_REQUEST")
			return
		}
		if strings.TrimSpace(req.OutputPath) == "" {
			WriteError(w, http.StatusBadRequest, "outputPath is required", "BAD_REQUEST")
			return
		}

		// The batch runs to completion even if the client goes away.
		ctx := context.WithoutCancel(r.Context())

		results, err := cfg.Exporter.Export(ctx, export.Batch{
			Items:      *req.Videos,
			Settings:   *req.GlobalSettings,
			OutputPath: req.OutputPath,
		})
		switch {
		case err == nil:
			WriteJSON(w, http.StatusOK, ExportResponse{Results: results})
		case errors.Is(err, media.ErrEncoderUnavailable):
			WriteError(w, http.StatusServiceUnavailable, "ffmpeg with libx264 is not available", "ENCODER_UNAVAILABLE")
		case errors.Is(err, export.ErrInvalidSettings):
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_SETTINGS")
		case errors.Is(err, export.ErrMissingOutputPath):
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		default:
			requestLogger(r, cfg.Logger).Error("export failed", "error", err)
			WriteError(w, http.StatusInternalServerError, err.Error(), "EXPORT_FAILED")
		}
	}
}
