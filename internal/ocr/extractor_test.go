package ocr

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueredo/comprobantes-tracker/constants"
	"github.com/mfigueredo/comprobantes-tracker/internal/common"
)

type fakeEngine struct {
	text  string
	err   error
	calls int
	paths []string
}

func (f *fakeEngine) Recognize(_ context.Context, imagePath string) (string, error) {
	f.calls++
	f.paths = append(f.paths, imagePath)
	return f.text, f.err
}

func (f *fakeEngine) Name() string { return "fake" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func grayPage() image.Image {
	return image.NewGray(image.Rect(0, 0, 24, 24))
}

func TestExtractUnsupportedExtension(t *testing.T) {
	e := NewExtractor(Config{}, &fakeEngine{}, testLogger())

	_, err := e.Extract(context.Background(), "contrato.docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "docx")
}

func TestExtractPDFEmbeddedTextSufficient(t *testing.T) {
	engine := &fakeEngine{}
	e := NewExtractor(Config{}, engine, testLogger())
	e.embedText = func(string, int) (string, int, error) {
		return "FACTURA B con suficiente texto embebido para no rasterizar nada", 1, nil
	}
	e.rasterize = func(string, int, int) ([]image.Image, error) {
		t.Fatal("rasterize must not run when embedded text is sufficient")
		return nil, nil
	}

	res, err := e.Extract(context.Background(), "factura.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Equal(t, 1, res.Pages)
	assert.Zero(t, engine.calls)
}

func TestExtractPDFShortEmbeddedTextFallsBackToOCR(t *testing.T) {
	engine := &fakeEngine{text: "RECIBO reconocido"}
	e := NewExtractor(Config{}, engine, testLogger())
	e.embedText = func(string, int) (string, int, error) { return "corto", 1, nil }
	e.rasterize = func(string, int, int) ([]image.Image, error) {
		return []image.Image{grayPage(), grayPage()}, nil
	}

	res, err := e.Extract(context.Background(), "escaneado.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "RECIBO reconocido\nRECIBO reconocido", res.Text)

	// exactly one OCR call per rasterized page
	assert.Equal(t, 2, engine.calls)

	// every raster the engine saw is gone after Extract returns
	for _, p := range engine.paths {
		_, statErr := os.Stat(p)
		assert.True(t, os.IsNotExist(statErr), "temp raster %s still exists", p)
	}
}

func TestExtractPDFFallbackCleansUpOnPageFailure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("glyph soup")}
	e := NewExtractor(Config{}, engine, testLogger())
	e.embedText = func(string, int) (string, int, error) { return "", 0, errors.New("no text layer") }
	e.rasterize = func(string, int, int) ([]image.Image, error) {
		return []image.Image{grayPage(), grayPage()}, nil
	}

	res, err := e.Extract(context.Background(), "roto.pdf")
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Len(t, res.Warnings, 3) // embedded-text failure plus one per page

	for _, p := range engine.paths {
		_, statErr := os.Stat(p)
		assert.True(t, os.IsNotExist(statErr), "temp raster %s still exists", p)
	}
}

func TestExtractPDFEngineUnavailableKeepsSampleText(t *testing.T) {
	e := NewExtractor(Config{}, NewMockEngine(), testLogger())
	e.embedText = func(string, int) (string, int, error) { return "", 0, errors.New("no text layer") }
	e.rasterize = func(string, int, int) ([]image.Image, error) {
		return []image.Image{grayPage()}, nil
	}

	res, err := e.Extract(context.Background(), "escaneado.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEngineUnavailable)
	assert.Equal(t, mockSampleText, res.Text)
}

func TestExtractImageEngineUnavailable(t *testing.T) {
	e := NewExtractor(Config{}, NewMockEngine(), testLogger())

	res, err := e.Extract(context.Background(), "recibo.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEngineUnavailable)
	assert.Equal(t, mockSampleText, res.Text)
	assert.Equal(t, constants.IMAGE, res.SourceType)
	assert.Equal(t, "image-ocr", res.Method)
}

func TestExtractImageRetriesOriginalOnPreprocessedFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recibo.png")
	writePNG(t, path)

	engine := &fakeEngine{err: errors.New("bad contrast")}
	e := NewExtractor(Config{}, engine, testLogger())

	_, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	// one attempt on the preprocessed temp, one retry on the original
	require.Equal(t, 2, engine.calls)
	assert.NotEqual(t, path, engine.paths[0])
	assert.Equal(t, path, engine.paths[1])
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, grayPage()))
	require.NoError(t, f.Close())
}
