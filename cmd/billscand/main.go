package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/billscan-dev/billscan/internal/common"
	"github.com/billscan-dev/billscan/internal/detect"
	"github.com/billscan-dev/billscan/internal/llm/openai"
	"github.com/billscan-dev/billscan/internal/llm/rules"
	"github.com/billscan-dev/billscan/internal/ocr"
	"github.com/billscan-dev/billscan/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// OCR extractor for image payloads
	ocrx := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftotext:     cfg.OCR.Pdftotext,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	// Classifiers: LLM primary when configured, rules always as fallback.
	var primary *openai.Client
	if cfg.LLM.APIKey != "" {
		primary = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			MaxRetries:  cfg.LLM.MaxRetries,
		}, logger)
		logger.Info("llm client initialized", "model", cfg.LLM.Model)
	} else {
		logger.Warn("OPENAI_API_KEY not configured; using rule-based classification only")
	}
	fallback := rules.NewClassifier(logger)

	detectorCfg := detect.Config{
		DefaultCurrency: cfg.Detect.DefaultCurrency,
		ContextWindow:   cfg.Detect.ContextWindow,
	}
	var detector *detect.Detector
	if primary != nil {
		detector = detect.NewDetector(logger, detectorCfg, primary, fallback)
	} else {
		detector = detect.NewDetector(logger, detectorCfg, nil, fallback)
	}

	svc := server.NewService(cfg, detector, ocrx, logger)
	srv := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     svc.Routes(),
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
