package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/billscan-dev/billscan/constants"
	"github.com/billscan-dev/billscan/internal/common"
	"github.com/billscan-dev/billscan/internal/detect"
	"github.com/billscan-dev/billscan/internal/export"
	"github.com/billscan-dev/billscan/internal/llm/openai"
	"github.com/billscan-dev/billscan/internal/llm/rules"
	"github.com/billscan-dev/billscan/internal/ocr"
)

// perFileTimeout bounds OCR plus classification for a single input file.
const perFileTimeout = 2 * time.Minute

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir = flag.String("dir", "", "directory of bills to process (required)")
		out = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
	)
	flag.Parse()

	// Validate required flags
	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	// If output file not specified, use parent directory with default filename
	if *out == "" {
		parentDir := filepath.Dir(*dir)
		*out = filepath.Join(parentDir, "amounts.xlsx")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	ctx := context.Background()
	cfg := common.LoadConfig()

	// Setup OCR
	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftotext:     cfg.OCR.Pdftotext,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	// Setup classifiers (graceful if key missing)
	fallback := rules.NewClassifier(logger)
	detectorCfg := detect.Config{
		DefaultCurrency: cfg.Detect.DefaultCurrency,
		ContextWindow:   cfg.Detect.ContextWindow,
	}
	var detector *detect.Detector
	if cfg.LLM.APIKey != "" {
		primary := openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			MaxRetries:  cfg.LLM.MaxRetries,
		}, logger)
		detector = detect.NewDetector(logger, detectorCfg, primary, fallback)
		logger.Info("llm client initialized", "model", cfg.LLM.Model)
	} else {
		detector = detect.NewDetector(logger, detectorCfg, nil, fallback)
		logger.Warn("OPENAI_API_KEY not configured; classification will be rule-based")
	}

	// Collect matching files
	var paths []string
	err := filepath.WalkDir(*dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to walk directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("starting batch run", "dir", *dir, "files", len(paths))

	// Process each file
	results := make([]export.FileResult, 0, len(paths))
	processed := 0
	failures := 0
	for _, path := range paths {
		logger.Info("processing file", "path", path)
		fileCtx, cancel := common.WithTimeout(ctx, perFileTimeout)
		res, err := extractor.Extract(fileCtx, path)
		if err != nil {
			cancel()
			logger.Error("failed to extract text", "path", path, "error", err)
			results = append(results, export.FileResult{Path: path, Err: err.Error()})
			failures++
			continue
		}
		detection := detector.Detect(fileCtx, res.Text)
		cancel()
		results = append(results, export.FileResult{Path: path, Result: detection})
		processed++
	}

	// Export to XLSX
	logger.Info("exporting to XLSX", "output", *out)
	exportService := export.NewService(logger)
	xlsxBytes, err := exportService.BuildXLSX(results)
	if err != nil {
		logger.Error("failed to build report", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	// Log summary
	logger.Info("batch processing complete",
		"files_found", len(paths),
		"files_processed", processed,
		"failures", failures,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files found: %d\n", len(paths))
	fmt.Printf("- Files processed: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}
