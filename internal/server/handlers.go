package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-assets/constants"
	"github.com/joseph-ayodele/invoice-assets/internal/assets"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
)

var uploadExt = map[string]struct{}{
	".pdf": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".tif": {}, ".tiff": {},
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	if a.deps.Health != nil {
		if err := a.deps.Health.HealthCheck(r.Context(), a.cfg.HealthTimeout); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// scan handles POST /scan: a multipart "file" upload parsed into bill info.
func (a *API) scan(w http.ResponseWriter, r *http.Request) {
	log := common.LoggerFromContext(r.Context(), a.logger)
	if a.deps.Scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "scanner not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := uploadExt[ext]; !ok {
		writeError(w, http.StatusBadRequest, "Only PDF and image files are supported")
		return
	}

	tmp, err := os.CreateTemp("", "scan-*"+ext)
	if err != nil {
		log.Error("scan.tmp.failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not buffer upload")
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}
	if err := tmp.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, "could not buffer upload")
		return
	}

	res, err := a.deps.Scanner.Scan(r.Context(), tmp.Name())
	if err != nil {
		log.Warn("scan.failed", "filename", header.Filename, "error", err)
		writeError(w, httpStatus(err), err.Error())
		return
	}
	if res.Bill.Degraded() {
		log.Info("scan.rejected", "filename", header.Filename, "chars", len(res.Text.Text))
		writeError(w, http.StatusUnprocessableEntity, common.ErrDegradedBill.Error())
		return
	}

	log.Info("scan.ok", "filename", header.Filename, "items", len(res.Bill.Assets), "cached", res.Cached)
	writeJSON(w, http.StatusOK, scanResponse{
		RawText:       res.Text.Text,
		ExtractedInfo: groupBill(res.Bill),
		Method:        res.Text.Method,
		Pages:         res.Text.Pages,
		Cached:        res.Cached,
	})
}

// extract handles POST /extract for text already pulled from a document.
func (a *API) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Tables) == 0 {
		writeError(w, http.StatusBadRequest, "text or tables is required")
		return
	}
	writeJSON(w, http.StatusOK, invoice.ExtractWithTables(req.Text, req.Tables))
}

func (a *API) registerBill(w http.ResponseWriter, r *http.Request) {
	log := common.LoggerFromContext(r.Context(), a.logger)
	if a.deps.Registrar == nil {
		writeError(w, http.StatusServiceUnavailable, "registration not configured")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	bill := req.BillInfo
	if bill.Assets == nil {
		bill.Assets = []invoice.ExtractedAsset{}
	}
	if bill.Degraded() {
		writeError(w, http.StatusUnprocessableEntity, common.ErrDegradedBill.Error())
		return
	}

	v := common.NewValidator().
		Field("bill_number", bill.BillNumber, common.MaxLength(64)).
		Field("vendor_name", bill.VendorName, common.MaxLength(200)).
		Field("vendor_gstin", bill.VendorGSTIN, common.GSTIN).
		Field("total_amount", bill.TotalAmount, common.NonNegative)
	for i, it := range bill.Assets {
		v.Field(fmt.Sprintf("assets[%d].name", i), it.Name, common.Required).
			Field(fmt.Sprintf("assets[%d].quantity", i), it.Quantity, common.NonNegative, common.MaxValue(assets.MaxUnitsPerBill))
	}
	if err := v.Error(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch out := a.deps.Registrar.Register(r.Context(), bill, req.RawText).(type) {
	case assets.Persisted:
		log.Info("bills.register.ok", "bill_id", out.BillID, "assets", len(out.Assets))
		writeJSON(w, http.StatusCreated, map[string]any{
			"bill_id": out.BillID,
			"bill":    out.Bill,
			"assets":  out.Assets,
		})
	case assets.Unpersisted:
		code := httpStatus(out.Err)
		if errors.Is(out.Err, assets.ErrNoStore) {
			code = http.StatusServiceUnavailable
		}
		log.Error("bills.register.failed", "error", out.Err)
		writeJSON(w, code, map[string]any{
			"error":   out.Err.Error(),
			"preview": out.Preview,
		})
	}
}

func (a *API) billAssets(w http.ResponseWriter, r *http.Request) {
	if a.deps.Bills == nil || a.deps.Assets == nil {
		writeError(w, http.StatusServiceUnavailable, "storage not configured")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bill id must be a UUID")
		return
	}
	if _, err := a.deps.Bills.Get(r.Context(), id); err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	list, err := a.deps.Assets.ListByBill(r.Context(), id)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bill_id": id, "assets": list})
}

func (a *API) getAsset(w http.ResponseWriter, r *http.Request) {
	if a.deps.Assets == nil {
		writeError(w, http.StatusServiceUnavailable, "storage not configured")
		return
	}
	row, err := a.deps.Assets.GetByAssetID(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (a *API) updateAssetStatus(w http.ResponseWriter, r *http.Request) {
	if a.deps.Assets == nil {
		writeError(w, http.StatusServiceUnavailable, "storage not configured")
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	assetID := chi.URLParam(r, "assetID")
	if err := a.deps.Assets.UpdateStatus(r.Context(), assetID, constants.AssetStatus(req.Status)); err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"asset_id": assetID, "status": req.Status})
}

func (a *API) exportXLSX(w http.ResponseWriter, r *http.Request) {
	if a.deps.Exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export not configured")
		return
	}
	b, err := a.deps.Exporter.ExportAssetsXLSX(r.Context())
	if err != nil {
		common.LoggerFromContext(r.Context(), a.logger).Error("export.xlsx.failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="asset-register.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
