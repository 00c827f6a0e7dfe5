package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mfigueredo/comprobantes-tracker/constants"
	"github.com/mfigueredo/comprobantes-tracker/internal/common"
	"github.com/mfigueredo/comprobantes-tracker/internal/extract"
	"github.com/mfigueredo/comprobantes-tracker/internal/fields"
)

// Orchestrator runs the whole extraction pipeline for one file: format
// routing, text extraction, field detection, confidence scoring. It never
// returns an error and never panics; every failure becomes a Result with
// Success=false, a diagnostic in Error, and all field pointers nil.
type Orchestrator struct {
	extractor extract.TextExtractor
	logger    *slog.Logger
}

func NewOrchestrator(extractor extract.TextExtractor, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{extractor: extractor, logger: logger}
}

// Extract processes the file at filePath. originalFilename carries the
// user-facing name when filePath is a temp copy; it decides format routing
// and feeds the document-type keyword lookup. Pass "" to use filePath.
func (o *Orchestrator) Extract(ctx context.Context, filePath, originalFilename string) (res *extract.Result) {
	name := originalFilename
	if name == "" {
		name = filePath
	}
	ext := constants.NormalizeExt(filepath.Ext(name))
	format := constants.MapExtToFormat(ext)

	// The record carries the matched extension, not the format family.
	fileFormat := ""
	if format != "" {
		fileFormat = ext
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("extraction panicked", "path", filePath, "panic", r)
			res = failureResult(fileFormat, "", fmt.Sprintf("internal error: %v", r))
		}
	}()

	if format == "" {
		o.logger.Warn("rejected unsupported file", "filename", name, "extension", ext)
		err := fmt.Errorf("%w %q, allowed: %s", common.ErrUnsupportedFormat,
			ext, strings.Join(constants.AllowedExtensions(), ", "))
		return failureResult("", "", err.Error())
	}

	ter, err := o.extractor.Extract(ctx, filePath)
	if err != nil {
		o.logger.Error("text extraction failed", "path", filePath, "error", err)
		// An unavailable engine still produced its fixed sample text; keep
		// it in the record so callers can see what the run worked with.
		raw := ""
		if errors.Is(err, common.ErrEngineUnavailable) {
			raw = ter.Text
		}
		return failureResult(fileFormat, raw, err.Error())
	}

	f := fields.Extract(ter.Text, name)
	confidence := fields.Score(ter.Text, f)
	tipo := string(f.Tipo)

	o.logger.Info("extraction complete",
		"filename", name,
		"format", format,
		"method", ter.Method,
		"pages", ter.Pages,
		"confidence", confidence,
		"total_from_fallback", f.TotalFromFallback,
	)

	return &extract.Result{
		Success:      true,
		Tipo:         &tipo,
		Numero:       f.Numero,
		FechaEmision: f.FechaEmision,
		Total:        f.Total,
		Subtotal:     f.Subtotal,
		IVA:          f.IVA,
		CUITEmisor:   f.CUITEmisor,
		RazonSocial:  f.RazonSocial,
		Confidence:   confidence,
		RawText:      ter.Text,
		FileFormat:   fileFormat,
		Error:        nil,
	}
}

func failureResult(fileFormat, rawText, msg string) *extract.Result {
	return &extract.Result{
		Success:    false,
		Confidence: 0,
		RawText:    rawText,
		FileFormat: fileFormat,
		Error:      &msg,
	}
}
