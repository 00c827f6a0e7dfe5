package ocr

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"

	"github.com/mfigueredo/comprobantes-tracker/constants"
	"github.com/mfigueredo/comprobantes-tracker/internal/common"
)

// minEmbeddedTextLen is the cutoff below which a PDF is treated as scanned:
// shorter embedded text is discarded and the pages are rasterized and OCR'd.
const minEmbeddedTextLen = 50

func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	text, pages, err := e.embedText(path, e.cfg.MaxPages)
	if err == nil && len(strings.TrimSpace(text)) >= minEmbeddedTextLen {
		return Result{
			Text:       strings.TrimSpace(text),
			Pages:      pages,
			SourceType: constants.PDF,
			Method:     "pdf-text",
			Language:   e.cfg.Language,
		}, nil
	}

	var warns []string
	if err != nil {
		warns = append(warns, err.Error())
		e.logger.Warn("embedded pdf text extraction failed, falling back to ocr", "path", path, "error", err)
	} else {
		e.logger.Debug("embedded pdf text too short, falling back to ocr", "path", path, "chars", len(strings.TrimSpace(text)))
	}
	return e.pdfOCR(ctx, path, warns)
}

// pdfEmbeddedText pulls the embedded text layer page by page, joined with
// newlines. Pages that fail to render are skipped, not fatal.
func pdfEmbeddedText(path string, maxPages int) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	pages := 0
	for i := 1; i <= r.NumPage(); i++ {
		if maxPages > 0 && i > maxPages {
			break
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
		pages++
	}
	return b.String(), pages, nil
}

// pdfOCR rasterizes every page at the configured DPI and OCRs each one. The
// per-page raster lives in a temp file scoped to that page only.
func (e *Extractor) pdfOCR(ctx context.Context, path string, warns []string) (Result, error) {
	imgs, err := e.rasterize(path, e.cfg.DPI, e.cfg.MaxPages)
	if err != nil {
		return Result{SourceType: constants.PDF, Method: "pdf-ocr", Warnings: warns},
			common.WrapError(err, "rasterize pdf")
	}
	if len(imgs) == 0 {
		return Result{SourceType: constants.PDF, Method: "pdf-ocr", Warnings: warns},
			errors.New("pdf produced no page images")
	}

	var b strings.Builder
	for i, img := range imgs {
		txt, err := e.ocrPage(ctx, img)
		if err != nil {
			if errors.Is(err, common.ErrEngineUnavailable) {
				return Result{
					Text:       txt,
					Pages:      len(imgs),
					SourceType: constants.PDF,
					Method:     "pdf-ocr",
					Language:   e.cfg.Language,
					Warnings:   warns,
				}, err
			}
			warns = append(warns, err.Error())
			e.logger.Warn("page ocr failed", "path", path, "page", i+1, "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}

	return Result{
		Text:       b.String(),
		Pages:      len(imgs),
		SourceType: constants.PDF,
		Method:     "pdf-ocr",
		Language:   e.cfg.Language,
		Warnings:   warns,
	}, nil
}

// ocrPage writes one rasterized page to a temp PNG, preprocesses it, and runs
// the engine. The temp file is removed on every exit path before returning.
func (e *Extractor) ocrPage(ctx context.Context, img image.Image) (string, error) {
	tmp, err := os.CreateTemp("", "cmp-page-*.png")
	if err != nil {
		return "", common.WrapError(err, "create page temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := png.Encode(tmp, img); err != nil {
		_ = tmp.Close()
		return "", common.WrapError(err, "encode page raster")
	}
	if err := tmp.Close(); err != nil {
		return "", common.WrapError(err, "close page raster")
	}

	prePath, cleanup := e.pre.Prepare(tmp.Name())
	defer cleanup()
	return e.engine.Recognize(ctx, prePath)
}

func fitzRasterize(path string, dpi, maxPages int) ([]image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = doc.Close() }()

	n := doc.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return imgs, nil
}
