package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/videoprep/videoprep-server/internal/ingest"
)

const (
	uploadFieldName = "video"

	// Slack for multipart boundaries and part headers on top of the file
	// size limit.
	multipartOverhead = 1 << 20
)

func uploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes+multipartOverhead)
		}

		mr, err := r.MultipartReader()
		if err != nil {
			WriteError(w, http.StatusBadRequest, "expected a multipart/form-data upload", "BAD_REQUEST")
			return
		}

		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				WriteError(w, http.StatusBadRequest, "no video file uploaded", "NO_FILE")
				return
			}
			if err != nil {
				if isMaxBytesError(err) {
					writeTooLarge(w, cfg)
					return
				}
				WriteError(w, http.StatusBadRequest, "malformed multipart body", "BAD_REQUEST")
				return
			}
			if part.FormName() != uploadFieldName || part.FileName() == "" {
				part.Close()
				continue
			}

			clip, err := cfg.Ingester.Ingest(r.Context(), ingest.Upload{
				Body:        part,
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
			})
			part.Close()

			switch {
			case err == nil:
				WriteJSON(w, http.StatusOK, ClipToUploadResponse(clip))
			case errors.Is(err, ingest.ErrInvalidContentType):
				WriteError(w, http.StatusUnsupportedMediaType, "only video files are allowed", "INVALID_CONTENT_TYPE")
			case errors.Is(err, ingest.ErrPayloadTooLarge):
				writeTooLarge(w, cfg)
			default:
				requestLogger(r, cfg.Logger).Error("upload failed", "error", err)
				WriteError(w, http.StatusInternalServerError, "failed to store upload", "INTERNAL_ERROR")
			}
			return
		}
	}
}

func writeTooLarge(w http.ResponseWriter, cfg ServerConfig) {
	WriteError(w, http.StatusRequestEntityTooLarge,
		"file exceeds the "+humanize.IBytes(uint64(cfg.MaxUploadBytes))+" upload limit", "PAYLOAD_TOO_LARGE")
}

func isMaxBytesError(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
