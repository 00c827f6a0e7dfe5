package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/mfigueredo/comprobantes-tracker/internal/common"
)

// Engine is the OCR strategy. Exactly one variant is injected at
// construction: Tesseract for real recognition, Mock when the backend is not
// installed. Implementations must be safe for concurrent use; Tesseract gets
// a fresh client per call.
type Engine interface {
	// Recognize runs OCR over the image at path and returns the raw text.
	Recognize(ctx context.Context, imagePath string) (string, error)
	Name() string
}

// TesseractEngine recognizes text with a fixed configuration suited to
// comprobantes: Spanish language model, single-block page segmentation.
type TesseractEngine struct {
	Language string
}

func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "spa"
	}
	return &TesseractEngine{Language: language}
}

func (t *TesseractEngine) Name() string { return "tesseract" }

func (t *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.Language); err != nil {
		return "", fmt.Errorf("set ocr language %q: %w", t.Language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set ocr image %q: %w", imagePath, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr text extraction: %w", err)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text), nil
}

// TesseractAvailable reports whether the Tesseract backend is installed with
// at least one language pack. Used at startup to pick the engine variant.
func TesseractAvailable() bool {
	langs, err := gosseract.GetAvailableLanguages()
	return err == nil && len(langs) > 0
}

// mockSampleText is the fixed extraction the mock engine returns. It lets the
// rest of the pipeline run deterministically when Tesseract is not installed.
const mockSampleText = `FACTURA B
Número: 0001-00000001
Fecha: 01/01/2024
Subtotal: 100,00
IVA: 21,00
Total: 121,00
CUIT: 30-00000000-7
Comercio de Ejemplo S.A.`

// MockEngine is the degraded strategy used when no OCR backend is available.
// Recognize returns the fixed sample text together with ErrEngineUnavailable
// so the orchestrator can surface a diagnostic failure instead of crashing.
type MockEngine struct{}

func NewMockEngine() *MockEngine { return &MockEngine{} }

func (m *MockEngine) Name() string { return "mock" }

func (m *MockEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return mockSampleText, fmt.Errorf(
		"%w: tesseract is not installed, returning fixed sample text for %q",
		common.ErrEngineUnavailable, imagePath)
}
