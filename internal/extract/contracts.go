package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: file -> raw text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
}

// Result is the serializable record one extraction run produces. Invariants:
// confidence is always in [0,1]; success=false implies a non-nil Error and
// all field pointers nil; success=true expresses missing fields as nil, not
// as failure.
type Result struct {
	Success      bool     `json:"success"`
	Tipo         *string  `json:"tipo"`
	Numero       *string  `json:"numero"`
	FechaEmision *string  `json:"fecha_emision"`
	Total        *float64 `json:"total"`
	Subtotal     *float64 `json:"subtotal"`
	IVA          *float64 `json:"iva"`
	CUITEmisor   *string  `json:"cuit_emisor"`
	RazonSocial  *string  `json:"razon_social"`
	Confidence   float64  `json:"confidence"`
	RawText      string   `json:"raw_text"`
	FileFormat   string   `json:"file_format"`
	Error        *string  `json:"error"`
}
