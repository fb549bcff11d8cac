package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/javier-prieto-uwu/taller3d/internal/material"
)

func seedFilament(t *testing.T, srv *server) material.Material {
	t.Helper()

	m := material.Material{
		ID:                  "f1",
		Category:            material.Filament,
		Name:                "PLA Mate Rojo",
		PricePerPackage:     "20.00",
		PackageSize:         "1000",
		PackageCount:        "2",
		InitialPackageCount: "2",
		RemainingQuantity:   "2500",
		Color:               "Rojo",
		Type:                "PLA",
		Subtype:             "Mate",
	}
	if err := srv.store.InsertMaterial(m); err != nil {
		t.Fatalf("seed material: %v", err)
	}
	return m
}

func jobPayload() map[string]any {
	return map[string]any{
		"nombre": "Maceta hexagonal",
		"materiales": []map[string]any{
			{"material_id": "f1", "cantidad_consumida": "250"},
		},
		"horas_mano_obra":   "2",
		"tarifa_hora":       "50",
		"consumo_watts":     "0.2",
		"costo_kwh":         "1.5",
		"horas_impresion":   "3",
		"margen_porcentaje": 30,
	}
}

func TestHandleJobSubmit_PersistsJobAndDeductsStock(t *testing.T) {
	srv := newTestServer(t)
	seedFilament(t, srv)

	rr := postJSON(t, srv.handleJobSubmit, "/jobs", jobPayload())

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp submitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Job.TotalCost != "105.00" {
		t.Fatalf("total = %s, want 105.00", resp.Job.TotalCost)
	}
	if resp.Job.SalePrice != "136.50" {
		t.Fatalf("sale price = %s, want 136.50", resp.Job.SalePrice)
	}
	if resp.Draft.Name != "" || len(resp.Draft.Usages) != 0 {
		t.Fatalf("draft not reset: %+v", resp.Draft)
	}

	stored, found, err := srv.store.GetJob(resp.Job.ID)
	if err != nil || !found {
		t.Fatalf("job not persisted: found=%v err=%v", found, err)
	}
	if stored.Usages[0].Material.PricePerPackage != "20.00" {
		t.Fatalf("job lost its material snapshot: %+v", stored.Usages)
	}

	m, _, err := srv.store.GetMaterial("f1")
	if err != nil {
		t.Fatalf("get material: %v", err)
	}
	if m.RemainingQuantity != "2250" {
		t.Fatalf("remaining = %s, want 2250", m.RemainingQuantity)
	}
	if m.PackageCount != "2" {
		t.Fatalf("package count = %s, want 2 (floor of 2.25)", m.PackageCount)
	}
	if m.InitialPackageCount != "2" {
		t.Fatalf("initial package count changed: %s", m.InitialPackageCount)
	}
}

func TestHandleJobSubmit_RejectsEmptyName(t *testing.T) {
	srv := newTestServer(t)
	seedFilament(t, srv)

	payload := jobPayload()
	payload["nombre"] = ""
	rr := postJSON(t, srv.handleJobSubmit, "/jobs", payload)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); msg != "nombre del trabajo es requerido" {
		t.Fatalf("unexpected error message: %q", msg)
	}

	jobs, err := srv.store.ListJobs("")
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("rejected submission persisted a job")
	}
}

func TestHandleJobSubmit_SingleMaterialMustExist(t *testing.T) {
	srv := newTestServer(t)

	rr := postJSON(t, srv.handleJobSubmit, "/jobs", jobPayload())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if msg := decodeError(t, rr); msg != "el material seleccionado ya no existe" {
		t.Fatalf("unexpected error message: %q", msg)
	}
}

func TestHandleJobSubmit_DeductOptOutLeavesStockUntouched(t *testing.T) {
	srv := newTestServer(t)
	before := seedFilament(t, srv)

	payload := jobPayload()
	payload["materiales"] = []map[string]any{
		{"material_id": "f1", "cantidad_consumida": "250", "descontar": false},
	}
	rr := postJSON(t, srv.handleJobSubmit, "/jobs", payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	after, _, err := srv.store.GetMaterial("f1")
	if err != nil {
		t.Fatalf("get material: %v", err)
	}
	if after != before {
		t.Fatalf("stock fields changed despite deduct=false:\n before %+v\n after  %+v", before, after)
	}
}

func TestHandleJobPreview_ComputesWithoutPersisting(t *testing.T) {
	srv := newTestServer(t)
	seedFilament(t, srv)

	rr := postJSON(t, srv.handleJobPreview, "/jobs/preview", jobPayload())

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp previewResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if resp.MaterialsCost != "5.00" || resp.LaborCost != "100.00" || resp.PowerCost != "0.00" {
		t.Fatalf("unexpected breakdown: %+v", resp)
	}
	if resp.TotalCost != "105.00" || resp.SalePrice != "136.50" {
		t.Fatalf("unexpected totals: %+v", resp)
	}

	jobs, err := srv.store.ListJobs("")
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("preview persisted a job")
	}

	m, _, err := srv.store.GetMaterial("f1")
	if err != nil {
		t.Fatalf("get material: %v", err)
	}
	if m.RemainingQuantity != "2500" {
		t.Fatalf("preview touched stock: %s", m.RemainingQuantity)
	}
}

func TestHandleSettings_RoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rr := postJSON(t, srv.handleSettingsUpdate, "/settings", settings{
		LaborRatePerHour: 50,
		CostPerKwh:       1.5,
		KwhRating:        0.2,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	st, err := srv.getSettings()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if st.LaborRatePerHour != 50 || st.CostPerKwh != 1.5 || st.KwhRating != 0.2 {
		t.Fatalf("unexpected settings: %+v", st)
	}
	if st.Currency != "MXN" {
		t.Fatalf("currency = %q, want MXN", st.Currency)
	}
}

func TestHandleSettingsUpdate_RejectsNegativeValues(t *testing.T) {
	srv := newTestServer(t)

	rr := postJSON(t, srv.handleSettingsUpdate, "/settings", settings{LaborRatePerHour: -1})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
