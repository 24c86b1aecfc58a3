package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/billscan-dev/billscan/internal/common"
)

// detectRequest is the JSON body for POST /v1/detect-amounts.
// Exactly one of DocumentText / ImageBase64 is expected; multipart uploads
// use the "file" form field instead.
type detectRequest struct {
	DocumentText string `json:"document_text"`
	ImageBase64  string `json:"image_base64"`
}

const minDocumentChars = 5

// DetectAmounts handles POST /v1/detect-amounts.
func (s *Service) DetectAmounts(w http.ResponseWriter, r *http.Request) {
	// Carry the request ID in the context so the pipeline and LLM client can
	// tag their log events with it.
	ctx := common.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
	r = r.WithContext(ctx)
	logger := s.logger.With("req_id", common.RequestIDFromContext(ctx))

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	text, err := s.documentText(r)
	if err != nil {
		if errors.Is(err, common.ErrInternal) {
			logger.Error("server.detect.internal_error", "error", err)
			common.InternalError(w, err.Error())
			return
		}
		logger.Warn("server.detect.bad_request", "error", err)
		common.BadRequestError(w, err.Error())
		return
	}
	if len(strings.TrimSpace(text)) < minDocumentChars {
		logger.Warn("server.detect.empty_document")
		common.BadRequestError(w, "no valid document_text or image provided")
		return
	}

	result := s.detector.Detect(ctx, text)
	logger.Info("server.detect.done",
		"status", result.Status,
		"amounts", len(result.Amounts),
		"currency", result.Currency,
		"confidence", result.Confidence,
	)
	common.WriteJSON(w, http.StatusOK, result)
}

// documentText resolves the request into raw document text, running OCR for
// image payloads.
func (s *Service) documentText(r *http.Request) (string, error) {
	ct := r.Header.Get("Content-Type")

	if strings.HasPrefix(ct, "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("file upload failed: %w", err)
		}
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("file upload failed: %w", err)
		}
		return s.ocrImageBytes(r, data)
	}

	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("invalid JSON body: %w", err)
	}

	if req.ImageBase64 != "" {
		data, err := decodeImageBase64(req.ImageBase64)
		if err != nil {
			return "", fmt.Errorf("image decode failed: %w", err)
		}
		return s.ocrImageBytes(r, data)
	}
	return req.DocumentText, nil
}

// ocrImageBytes writes the image to a temp file and runs tesseract on it.
func (s *Service) ocrImageBytes(r *http.Request, data []byte) (string, error) {
	ext, err := sniffImageExt(data)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "billscan-*."+ext)
	if err != nil {
		s.logger.Error("server.detect.tmpfile_error", "error", err)
		return "", fmt.Errorf("temp file: %w", common.ErrInternal)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		s.logger.Error("server.detect.tmpfile_error", "error", err)
		return "", fmt.Errorf("temp file: %w", common.ErrInternal)
	}
	if err := tmp.Close(); err != nil {
		s.logger.Error("server.detect.tmpfile_error", "error", err)
		return "", fmt.Errorf("temp file: %w", common.ErrInternal)
	}

	res, err := s.ocrx.ExtractImage(r.Context(), tmp.Name())
	if err != nil {
		s.logger.Error("server.detect.ocr_error",
			"req_id", common.RequestIDFromContext(r.Context()),
			"error", err,
		)
		return "", fmt.Errorf("ocr failed: %w", common.ErrInternal)
	}
	s.logger.Info("server.detect.ocr_ok",
		"req_id", common.RequestIDFromContext(r.Context()),
		"bytes", len(data),
		"text_len", len(res.Text),
		"confidence", res.Confidence,
	)
	return res.Text, nil
}

// decodeImageBase64 accepts bare base64 and data URLs.
func decodeImageBase64(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); i >= 0 {
		s = s[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// sniffImageExt picks a file extension from content, since tesseract keys off
// the decoder, not the name. Only formats tesseract reads are accepted.
func sniffImageExt(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "png", nil
	case "image/jpeg":
		return "jpg", nil
	case "image/bmp":
		return "bmp", nil
	case "image/tiff":
		return "tiff", nil
	default:
		return "", fmt.Errorf("unsupported image format")
	}
}
