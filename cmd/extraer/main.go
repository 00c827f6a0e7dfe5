package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/mfigueredo/comprobantes-tracker/internal/common"
	"github.com/mfigueredo/comprobantes-tracker/internal/extract"
	"github.com/mfigueredo/comprobantes-tracker/internal/ocr"
	"github.com/mfigueredo/comprobantes-tracker/internal/pipeline"
)

// extraer runs the extraction pipeline over a single file and prints the
// result record as JSON on stdout. Diagnostics go to stderr so the output
// stays pipeable.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "extraer <comprobante-file>")
		os.Exit(2)
	}
	path := os.Args[1]
	if _, err := os.Stat(path); err != nil {
		logger.Error("cannot read file", "path", path, "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()

	var engine ocr.Engine
	if cfg.OCR.Mock || !ocr.TesseractAvailable() {
		logger.Warn("using mock OCR engine")
		engine = ocr.NewMockEngine()
	} else {
		engine = ocr.NewTesseractEngine(cfg.OCR.Language)
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Language: cfg.OCR.Language,
		DPI:      cfg.OCR.DPI,
		MaxPages: cfg.OCR.MaxPages,
	}, engine, logger)
	orch := pipeline.NewOrchestrator(extract.NewOCRAdapter(extractor), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res := orch.Extract(ctx, path, "")
	if err := extract.ValidateResult(res); err != nil {
		logger.Error("result failed contract validation", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	if !res.Success {
		os.Exit(1)
	}
}
