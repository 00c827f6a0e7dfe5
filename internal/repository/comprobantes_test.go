package repository_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueredo/comprobantes-tracker/internal/common"
	"github.com/mfigueredo/comprobantes-tracker/internal/entity"
	"github.com/mfigueredo/comprobantes-tracker/internal/repository"
)

func openTestDB(t *testing.T) repository.ComprobanteRepository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.Open(repository.Config{
		DSN: filepath.Join(t.TempDir(), "test.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, logger) })
	return repository.NewComprobanteRepository(db)
}

func sampleComprobante() *entity.Comprobante {
	tipo := "factura_b"
	numero := "0001-00000042"
	fecha := "2025-09-01T00:00:00"
	total := 121.0
	subtotal := 100.0
	iva := 21.0
	cuit := "20112223334"
	razon := "Acme S.A."
	return &entity.Comprobante{
		ID:           uuid.New(),
		Filename:     "factura.pdf",
		FileFormat:   "pdf",
		Tipo:         &tipo,
		Numero:       &numero,
		FechaEmision: &fecha,
		Total:        &total,
		Subtotal:     &subtotal,
		IVA:          &iva,
		CUITEmisor:   &cuit,
		RazonSocial:  &razon,
		Confidence:   1.0,
		RawText:      "FACTURA B ...",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestComprobanteRoundTrip(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	c := sampleComprobante()
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.Filename, got.Filename)
	assert.Equal(t, c.FileFormat, got.FileFormat)
	assert.Equal(t, c.Tipo, got.Tipo)
	assert.Equal(t, c.Numero, got.Numero)
	assert.Equal(t, c.FechaEmision, got.FechaEmision)
	assert.Equal(t, c.Total, got.Total)
	assert.Equal(t, c.Subtotal, got.Subtotal)
	assert.Equal(t, c.IVA, got.IVA)
	assert.Equal(t, c.CUITEmisor, got.CUITEmisor)
	assert.Equal(t, c.RazonSocial, got.RazonSocial)
	assert.Equal(t, c.Confidence, got.Confidence)
	assert.Equal(t, c.RawText, got.RawText)
	assert.WithinDuration(t, c.CreatedAt, got.CreatedAt, time.Second)
}

func TestComprobanteNullableFields(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	tipo := "recibo"
	c := &entity.Comprobante{
		ID:         uuid.New(),
		Filename:   "recibo.jpg",
		FileFormat: "jpg",
		Tipo:       &tipo,
		Confidence: 0,
		RawText:    "texto sin campos",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Numero)
	assert.Nil(t, got.FechaEmision)
	assert.Nil(t, got.Total)
	assert.Nil(t, got.Subtotal)
	assert.Nil(t, got.IVA)
	assert.Nil(t, got.CUITEmisor)
	assert.Nil(t, got.RazonSocial)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := openTestDB(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	older := sampleComprobante()
	older.Filename = "vieja.pdf"
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleComprobante()
	newer.Filename = "nueva.pdf"

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	recs, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "nueva.pdf", recs[0].Filename)
	assert.Equal(t, "vieja.pdf", recs[1].Filename)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "vieja.pdf", page[0].Filename)
}

func TestListCreatedBetween(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	old := sampleComprobante()
	old.Filename = "enero.pdf"
	old.CreatedAt = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	recent := sampleComprobante()
	recent.Filename = "agosto.pdf"
	recent.CreatedAt = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, recent))

	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	recs, err := repo.ListCreatedBetween(ctx, &from, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "agosto.pdf", recs[0].Filename)

	all, err := repo.ListCreatedBetween(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
