package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billscan-dev/billscan/internal/common"
	"github.com/billscan-dev/billscan/internal/detect"
	"github.com/billscan-dev/billscan/internal/llm/rules"
	"github.com/billscan-dev/billscan/internal/ocr"
)

func newTestService() *Service {
	cfg := common.LoadConfig()
	detector := detect.NewDetector(nil, detect.Config{}, nil, rules.NewClassifier(nil))
	ocrx := ocr.NewExtractor(ocr.Config{}, nil)
	return NewService(cfg, detector, ocrx, nil)
}

func postJSON(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/detect-amounts", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestDetectAmountsOK(t *testing.T) {
	svc := newTestService()
	rec := postJSON(t, svc.Routes(), map[string]string{
		"document_text": "T0tal: Rs l200 | Pald: 1000 | Due: 200 ... tax 50",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var res detect.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, detect.StatusOK, res.Status)
	assert.Equal(t, "RS", res.Currency)
	assert.Len(t, res.Amounts, 4)
}

func TestDetectAmountsGuardrail(t *testing.T) {
	svc := newTestService()
	rec := postJSON(t, svc.Routes(), map[string]string{
		"document_text": "no numbers in this document",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var res detect.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, detect.StatusNoAmounts, res.Status)
	assert.NotEmpty(t, res.Reason)
	assert.Empty(t, res.Amounts)
}

func TestDetectAmountsEmptyDocument(t *testing.T) {
	svc := newTestService()

	for _, body := range []map[string]string{
		{},
		{"document_text": "    "},
		{"document_text": "hi"},
	} {
		rec := postJSON(t, svc.Routes(), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var envelope map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "BAD_REQUEST", envelope["code"])
	}
}

func TestDetectAmountsInvalidJSON(t *testing.T) {
	svc := newTestService()
	req := httptest.NewRequest(http.MethodPost, "/v1/detect-amounts", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	svc.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectAmountsBadImageBase64(t *testing.T) {
	svc := newTestService()
	rec := postJSON(t, svc.Routes(), map[string]string{
		"image_base64": "!!!not-base64!!!",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, envelope["message"], "image decode failed")
}

func TestDetectAmountsUnsupportedImageFormat(t *testing.T) {
	svc := newTestService()
	// Valid base64, but not an image tesseract can read.
	rec := postJSON(t, svc.Routes(), map[string]string{
		"image_base64": "aGVsbG8gd29ybGQ=", // "hello world"
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectAmountsOCRFailureIsInternal(t *testing.T) {
	// Valid PNG signature so the payload clears content sniffing, but OCR on
	// the garbage body fails; that is a server-side error, not a bad request.
	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 16)...)

	svc := newTestService()
	rec := postJSON(t, svc.Routes(), map[string]string{
		"image_base64": base64.StdEncoding.EncodeToString(png),
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "INTERNAL_ERROR", envelope["code"])
}

func TestHealthz(t *testing.T) {
	svc := newTestService()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	svc.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSniffImageExt(t *testing.T) {
	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 16)...)
	ext, err := sniffImageExt(png)
	require.NoError(t, err)
	assert.Equal(t, "png", ext)

	_, err = sniffImageExt([]byte("plain text payload"))
	assert.Error(t, err)
}
