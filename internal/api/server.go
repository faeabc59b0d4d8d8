package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/videoprep/videoprep-server/internal/catalog"
	"github.com/videoprep/videoprep-server/internal/export"
	"github.com/videoprep/videoprep-server/internal/ingest"
	"github.com/videoprep/videoprep-server/internal/media"
)

// Ingester runs the upload flow for one file.
type Ingester interface {
	Ingest(ctx context.Context, up ingest.Upload) (*catalog.StoredClip, error)
}

// BatchExporter runs a whole export batch.
type BatchExporter interface {
	Export(ctx context.Context, b export.Batch) ([]export.Result, error)
}

// FileServer serves plain file names out of one directory.
type FileServer interface {
	ServeFile(w http.ResponseWriter, r *http.Request, name string) error
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Addr           string
	Ingester       Ingester
	Exporter       BatchExporter
	Thumbnails     FileServer
	Uploads        FileServer
	Repository     catalog.Repository
	Capabilities   media.Capabilities
	MaxUploadBytes int64
	AllowedOrigins []string
	Logger         *slog.Logger
	StartTime      time.Time
	Version        string
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
			ReadTimeout:       0, // uploads may be large
			WriteTimeout:      0, // exports may run for a long time
			IdleTimeout:       60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
