package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueredo/comprobantes-tracker/internal/common"
	"github.com/mfigueredo/comprobantes-tracker/internal/extract"
)

const sampleFacturaB = "FACTURA B\nNúmero: 0001-00000042\nFecha: 01/09/2025\nSubtotal: 100.00\nIVA: 21.00\nTotal: 121.00\nCUIT: 20-11222333-4\nAcme S.A."

type stubExtractor struct {
	res      extract.TextExtractionResult
	err      error
	panicMsg string
}

func (s *stubExtractor) Extract(context.Context, string) (extract.TextExtractionResult, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.res, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOrchestratorSuccess(t *testing.T) {
	stub := &stubExtractor{res: extract.TextExtractionResult{
		Text: sampleFacturaB, Pages: 1, Method: "pdf-text",
	}}
	o := NewOrchestrator(stub, testLogger())

	res := o.Extract(context.Background(), "/tmp/upload123.pdf", "factura.pdf")
	require.NoError(t, extract.ValidateResult(res))

	assert.True(t, res.Success)
	assert.Nil(t, res.Error)
	assert.Equal(t, "pdf", res.FileFormat)
	assert.Equal(t, sampleFacturaB, res.RawText)

	require.NotNil(t, res.Tipo)
	assert.Equal(t, "factura_b", *res.Tipo)
	require.NotNil(t, res.Numero)
	assert.Equal(t, "0001-00000042", *res.Numero)
	require.NotNil(t, res.FechaEmision)
	assert.Equal(t, "2025-09-01T00:00:00", *res.FechaEmision)
	require.NotNil(t, res.Subtotal)
	assert.Equal(t, 100.00, *res.Subtotal)
	require.NotNil(t, res.IVA)
	assert.Equal(t, 21.00, *res.IVA)
	require.NotNil(t, res.Total)
	assert.Equal(t, 121.00, *res.Total)
	require.NotNil(t, res.CUITEmisor)
	assert.Equal(t, "20112223334", *res.CUITEmisor)
	require.NotNil(t, res.RazonSocial)
	assert.Contains(t, *res.RazonSocial, "Acme S.A.")

	assert.GreaterOrEqual(t, res.Confidence, 0.9)
	assert.LessOrEqual(t, res.Confidence, 1.0)
}

func TestOrchestratorUnsupportedFormat(t *testing.T) {
	o := NewOrchestrator(&stubExtractor{}, testLogger())

	res := o.Extract(context.Background(), "/tmp/upload123.docx", "")
	require.NoError(t, extract.ValidateResult(res))

	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "docx")
	assert.Contains(t, *res.Error, "pdf")
	assertAllFieldsNil(t, res)
	assert.Zero(t, res.Confidence)
}

func TestOrchestratorEngineUnavailableKeepsSampleText(t *testing.T) {
	stub := &stubExtractor{
		res: extract.TextExtractionResult{Text: "TEXTO DE MUESTRA"},
		err: fmt.Errorf("%w: tesseract is not installed", common.ErrEngineUnavailable),
	}
	o := NewOrchestrator(stub, testLogger())

	res := o.Extract(context.Background(), "recibo.png", "")
	require.NoError(t, extract.ValidateResult(res))

	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "tesseract")
	assert.Equal(t, "TEXTO DE MUESTRA", res.RawText)
	assert.Equal(t, "png", res.FileFormat)
	assertAllFieldsNil(t, res)
}

func TestOrchestratorRecordsMatchedExtension(t *testing.T) {
	stub := &stubExtractor{res: extract.TextExtractionResult{Text: sampleFacturaB}}
	o := NewOrchestrator(stub, testLogger())

	cases := []struct {
		filename string
		want     string
	}{
		{"factura.pdf", "pdf"},
		{"recibo.JPG", "jpg"},
		{"recibo.jpeg", "jpeg"},
		{"scan.tiff", "tiff"},
		{"scan.bmp", "bmp"},
	}
	for _, tc := range cases {
		res := o.Extract(context.Background(), "/tmp/upload", tc.filename)
		require.True(t, res.Success, tc.filename)
		assert.Equal(t, tc.want, res.FileFormat, tc.filename)
	}
}

func TestOrchestratorGenericExtractionFailure(t *testing.T) {
	stub := &stubExtractor{err: errors.New("pdf produced no page images")}
	o := NewOrchestrator(stub, testLogger())

	res := o.Extract(context.Background(), "roto.pdf", "")
	require.NoError(t, extract.ValidateResult(res))

	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Empty(t, res.RawText)
	assertAllFieldsNil(t, res)
}

func TestOrchestratorNeverPanics(t *testing.T) {
	stub := &stubExtractor{panicMsg: "index out of range"}
	o := NewOrchestrator(stub, testLogger())

	var res *extract.Result
	require.NotPanics(t, func() {
		res = o.Extract(context.Background(), "recibo.jpg", "")
	})
	require.NoError(t, extract.ValidateResult(res))

	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "index out of range")
	assertAllFieldsNil(t, res)
}

func assertAllFieldsNil(t *testing.T, res *extract.Result) {
	t.Helper()
	assert.Nil(t, res.Tipo)
	assert.Nil(t, res.Numero)
	assert.Nil(t, res.FechaEmision)
	assert.Nil(t, res.Total)
	assert.Nil(t, res.Subtotal)
	assert.Nil(t, res.IVA)
	assert.Nil(t, res.CUITEmisor)
	assert.Nil(t, res.RazonSocial)
}
