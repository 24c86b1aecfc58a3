// Package server exposes the detection pipeline over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/billscan-dev/billscan/internal/common"
	"github.com/billscan-dev/billscan/internal/detect"
	"github.com/billscan-dev/billscan/internal/ocr"
)

type Service struct {
	cfg      *common.Config
	detector *detect.Detector
	ocrx     *ocr.Extractor
	logger   *slog.Logger
}

func NewService(cfg *common.Config, detector *detect.Detector, ocrx *ocr.Extractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, detector: detector, ocrx: ocrx, logger: logger}
}

// Routes builds the router: the detection endpoint plus liveness.
func (s *Service) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/v1/detect-amounts", s.DetectAmounts)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}
