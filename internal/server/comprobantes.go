package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mfigueredo/comprobantes-tracker/constants"
	"github.com/mfigueredo/comprobantes-tracker/internal/common"
	"github.com/mfigueredo/comprobantes-tracker/internal/entity"
	"github.com/mfigueredo/comprobantes-tracker/internal/export"
	"github.com/mfigueredo/comprobantes-tracker/internal/extract"
	"github.com/mfigueredo/comprobantes-tracker/internal/pipeline"
	"github.com/mfigueredo/comprobantes-tracker/internal/repository"
)

// ComprobanteHandler serves the upload/query/export endpoints.
type ComprobanteHandler struct {
	orch     *pipeline.Orchestrator
	repo     repository.ComprobanteRepository
	exporter *export.Service
	cfg      common.ServerConfig
	logger   *slog.Logger
}

func NewComprobanteHandler(
	orch *pipeline.Orchestrator,
	repo repository.ComprobanteRepository,
	exporter *export.Service,
	cfg common.ServerConfig,
	logger *slog.Logger,
) *ComprobanteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComprobanteHandler{orch: orch, repo: repo, exporter: exporter, cfg: cfg, logger: logger}
}

type uploadResponse struct {
	ID     *uuid.UUID      `json:"id,omitempty"`
	Result *extract.Result `json:"result"`
}

// Upload receives a multipart file, runs the extraction pipeline, and stores
// the record when extraction succeeds. Failed extractions come back as 422
// with the structured failure result, not as a bare error.
func (h *ComprobanteHandler) Upload(w http.ResponseWriter, r *http.Request) {
	maxSize := h.cfg.MaxUploadSize
	if r.ContentLength > maxSize {
		h.respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte upload limit", maxSize))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	format := constants.MapExtToFormat(ext)
	if format == "" {
		h.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported file extension %q", ext))
		return
	}

	tmpPath, err := h.spoolUpload(file, ext)
	if err != nil {
		h.logger.Error("failed to spool upload", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(tmpPath)

	res := h.orch.Extract(r.Context(), tmpPath, header.Filename)
	if err := extract.ValidateResult(res); err != nil {
		h.logger.Error("result failed contract validation", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !res.Success {
		h.respondJSON(w, http.StatusUnprocessableEntity, uploadResponse{Result: res})
		return
	}

	c := &entity.Comprobante{
		ID:           uuid.New(),
		Filename:     header.Filename,
		FileFormat:   res.FileFormat,
		Tipo:         res.Tipo,
		Numero:       res.Numero,
		FechaEmision: res.FechaEmision,
		Total:        res.Total,
		Subtotal:     res.Subtotal,
		IVA:          res.IVA,
		CUITEmisor:   res.CUITEmisor,
		RazonSocial:  res.RazonSocial,
		Confidence:   res.Confidence,
		RawText:      res.RawText,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.repo.Create(r.Context(), c); err != nil {
		h.logger.Error("failed to persist comprobante", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to persist comprobante")
		return
	}

	h.logger.Info("comprobante stored",
		"id", c.ID.String(),
		"filename", c.Filename,
		"confidence", c.Confidence,
	)
	h.respondJSON(w, http.StatusCreated, uploadResponse{ID: &c.ID, Result: res})
}

func (h *ComprobanteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid comprobante id")
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "comprobante not found")
			return
		}
		h.logger.Error("failed to load comprobante", "id", id.String(), "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondJSON(w, http.StatusOK, c)
}

func (h *ComprobanteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	recs, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list comprobantes", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"comprobantes": recs,
		"count":        len(recs),
	})
}

// Export streams an XLSX workbook; optional from/to query params
// (YYYY-MM-DD) bound the storage-date window.
func (h *ComprobanteHandler) Export(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
		return
	}

	data, err := h.exporter.ExportComprobantesXLSX(r.Context(), from, to)
	if err != nil {
		h.logger.Error("export failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	filename := fmt.Sprintf("comprobantes-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// spoolUpload writes the uploaded stream to a temp file that keeps the
// original extension, so the pipeline's format routing still applies.
func (h *ComprobanteHandler) spoolUpload(src io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp(h.cfg.UploadTmpDir, "cmp-upload-*."+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return tmp.Name(), nil
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func (h *ComprobanteHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *ComprobanteHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.logger.Warn("request error", "status", status, "error", message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
