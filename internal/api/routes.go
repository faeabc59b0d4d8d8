package api

import (
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/videoprep/videoprep-server/internal/playback"
)

const (
	defaultClipsLimit = 100
	maxClipsLimit     = 1000
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/health", healthHandler(cfg))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", statusHandler(cfg))
		r.Post("/upload", uploadHandler(cfg))
		r.Post("/export", exportHandler(cfg))
		r.Get("/thumbnail/{filename}", thumbnailHandler(cfg))
		r.Get("/progress/{jobId}", progressHandler(cfg))
		r.Get("/clips", listClipsHandler(cfg))
		r.Get("/clips/{id}", getClipHandler(cfg))
		r.Get("/clips/{id}/stream", streamClipHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Capabilities:   cfg.Capabilities,
			EncoderReady:   cfg.Capabilities.EncoderAvailable(),
			ProberReady:    cfg.Capabilities.ProberAvailable(),
			MaxUploadBytes: cfg.MaxUploadBytes,
		}
		if cfg.Repository != nil {
			resp.ClipsCount, _ = cfg.Repository.CountClips(r.Context())
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// progressHandler always reports completion; exports are synchronous and no
// job state is tracked.
func progressHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, ProgressResponse{Progress: 100, Status: "completed"})
	}
}

func thumbnailHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := pathParam(r, "filename")
		err := cfg.Thumbnails.ServeFile(w, r, name)
		switch {
		case err == nil:
		case errors.Is(err, playback.ErrInvalidName):
			WriteError(w, http.StatusBadRequest, "invalid thumbnail name", "BAD_REQUEST")
		case errors.Is(err, playback.ErrNotFound):
			WriteError(w, http.StatusNotFound, "thumbnail not found", "NOT_FOUND")
		default:
			requestLogger(r, cfg.Logger).Error("failed to serve thumbnail", "name", name, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to serve thumbnail", "INTERNAL_ERROR")
		}
	}
}

func listClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultClipsLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				WriteError(w, http.StatusBadRequest, "limit must be a positive integer", "BAD_REQUEST")
				return
			}
			limit = min(n, maxClipsLimit)
		}

		clips, err := cfg.Repository.ListClips(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list clips", "INTERNAL_ERROR")
			return
		}

		resp := ClipsResponse{Clips: make([]ClipResponse, len(clips))}
		for i, c := range clips {
			resp.Clips[i] = ClipToResponse(c)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, err := cfg.Repository.GetClip(r.Context(), pathParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if clip == nil {
			WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, ClipToResponse(clip))
	}
}

func streamClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, err := cfg.Repository.GetClip(r.Context(), pathParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if clip == nil {
			WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
			return
		}

		err = cfg.Uploads.ServeFile(w, r, filepath.Base(clip.Path))
		switch {
		case err == nil:
		case errors.Is(err, playback.ErrNotFound):
			WriteError(w, http.StatusNotFound, "clip file no longer exists", "NOT_FOUND")
		default:
			requestLogger(r, cfg.Logger).Error("failed to stream clip", "clip_id", clip.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to stream clip", "INTERNAL_ERROR")
		}
	}
}

// pathParam returns a decoded route parameter. chi matches on RawPath when
// the request carries one, and then leaves parameters escaped.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
