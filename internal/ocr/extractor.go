package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mfigueredo/comprobantes-tracker/constants"
	"github.com/mfigueredo/comprobantes-tracker/internal/common"
)

type Config struct {
	Language string // Tesseract language, default "spa"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // 0 = no limit
}

type Result struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
}

// Extractor recovers raw text from a comprobante file, routing by extension.
type Extractor struct {
	cfg    Config
	engine Engine
	pre    *Preprocessor
	logger *slog.Logger

	// Injection points for tests.
	embedText func(path string, maxPages int) (string, int, error)
	rasterize func(path string, dpi, maxPages int) ([]image.Image, error)
}

func NewExtractor(cfg Config, engine Engine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Language == "" {
		cfg.Language = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{
		cfg:       cfg,
		engine:    engine,
		pre:       NewPreprocessor(logger),
		logger:    logger,
		embedText: pdfEmbeddedText,
		rasterize: fitzRasterize,
	}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext, "engine", e.engine.Name())

	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := e.extractImage(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		return Result{}, fmt.Errorf("%w: extension %q", common.ErrUnsupportedFormat, ext)
	}
}
