package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfigueredo/comprobantes-tracker/internal/common"
	"github.com/mfigueredo/comprobantes-tracker/internal/export"
	"github.com/mfigueredo/comprobantes-tracker/internal/extract"
	"github.com/mfigueredo/comprobantes-tracker/internal/ocr"
	"github.com/mfigueredo/comprobantes-tracker/internal/pipeline"
	"github.com/mfigueredo/comprobantes-tracker/internal/repository"
	"github.com/mfigueredo/comprobantes-tracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	}, logger)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	engine := selectEngine(cfg, logger)
	extractor := ocr.NewExtractor(ocr.Config{
		Language: cfg.OCR.Language,
		DPI:      cfg.OCR.DPI,
		MaxPages: cfg.OCR.MaxPages,
	}, engine, logger)
	orch := pipeline.NewOrchestrator(extract.NewOCRAdapter(extractor), logger)

	repo := repository.NewComprobanteRepository(db)
	exporter := export.NewService(repo, logger)
	handler := server.NewComprobanteHandler(orch, repo, exporter, cfg.Server, logger)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr, "engine", engine.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}

// selectEngine picks the OCR engine: mock when forced by config, or when no
// tesseract installation is reachable.
func selectEngine(cfg *common.Config, logger *slog.Logger) ocr.Engine {
	if cfg.OCR.Mock {
		logger.Warn("OCR_MOCK set, using mock engine")
		return ocr.NewMockEngine()
	}
	if !ocr.TesseractAvailable() {
		logger.Warn("tesseract not available, falling back to mock engine")
		return ocr.NewMockEngine()
	}
	return ocr.NewTesseractEngine(cfg.OCR.Language)
}
