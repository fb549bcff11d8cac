package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/javier-prieto-uwu/taller3d/internal/config"
	"github.com/javier-prieto-uwu/taller3d/internal/db"
	"github.com/javier-prieto-uwu/taller3d/internal/job"
	"github.com/javier-prieto-uwu/taller3d/internal/material"
	"github.com/javier-prieto-uwu/taller3d/internal/migrations"
	"github.com/javier-prieto-uwu/taller3d/internal/pricing"
	"github.com/javier-prieto-uwu/taller3d/internal/seed"
	"github.com/javier-prieto-uwu/taller3d/internal/store"
)

type server struct {
	auth      *authService
	db        *sql.DB
	store     *store.Store
	assembler *job.Assembler
}

type settings struct {
	LaborRatePerHour float64 `json:"tarifa_hora"`
	CostPerKwh       float64 `json:"costo_kwh"`
	KwhRating        float64 `json:"consumo_watts"`
	Currency         string  `json:"moneda"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type usageLine struct {
	MaterialID string `json:"material_id"`
	Quantity   string `json:"cantidad_consumida"`
	Deduct     *bool  `json:"descontar"`
}

type jobDraftRequest struct {
	Name          string      `json:"nombre"`
	Notes         string      `json:"notas"`
	Usages        []usageLine `json:"materiales"`
	LaborHours    string      `json:"horas_mano_obra"`
	LaborRate     string      `json:"tarifa_hora"`
	KwhRating     string      `json:"consumo_watts"`
	CostPerKwh    string      `json:"costo_kwh"`
	PrintHours    string      `json:"horas_impresion"`
	Extras        []string    `json:"extras"`
	MarginPercent int64       `json:"margen_porcentaje"`
	Failed        bool        `json:"fallido"`
}

type previewResponse struct {
	MaterialsCost string `json:"costo_materiales"`
	LaborCost     string `json:"costo_mano_obra"`
	PowerCost     string `json:"costo_luz"`
	ExtrasCost    string `json:"costo_extras"`
	TotalCost     string `json:"costo_total"`
	SalePrice     string `json:"precio_venta"`
}

type submitResponse struct {
	Job   job.Job   `json:"trabajo"`
	Draft job.Draft `json:"borrador"`
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		log.Fatalf("failed to run startup seed: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seed: %d inserts", stats.Inserts)
	}

	st := store.New(database)
	srv := &server{
		auth:      newAuthService(database, cfg.SessionSecret),
		db:        database,
		store:     st,
		assembler: job.NewAssembler(st),
	}

	if err := srv.ensureSettings(); err != nil {
		log.Fatalf("failed to ensure settings: %v", err)
	}

	r := chi.NewRouter()
	r.Use(srv.authMiddleware)
	r.Post("/login", srv.handleLogin)
	r.Post("/logout", srv.handleLogout)
	r.Get("/settings", srv.handleSettingsGet)
	r.Post("/settings", srv.handleSettingsUpdate)
	r.Get("/materials", srv.handleMaterialsList)
	r.Post("/materials", srv.handleMaterialCreate)
	r.Get("/materials/{id}", srv.handleMaterialGet)
	r.Post("/materials/{id}", srv.handleMaterialUpdate)
	r.Post("/jobs/preview", srv.handleJobPreview)
	r.Post("/jobs", srv.handleJobSubmit)
	r.Get("/jobs", srv.handleJobsList)
	r.Get("/jobs/{id}", srv.handleJobGet)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	valid, err := s.auth.validateCredentials(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error de autenticación")
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, "credenciales inválidas")
		return
	}

	s.auth.setSessionCookie(w, req.Email)
	writeJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	st, err := s.getSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "no se pudo leer la configuración")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	if err := validateSettings(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.updateSettings(req); err != nil {
		writeError(w, http.StatusInternalServerError, "no se pudo guardar la configuración")
		return
	}

	req.Currency = "MXN"
	writeJSON(w, http.StatusOK, req)
}

func validateSettings(st settings) error {
	for field, value := range map[string]float64{
		"tarifa_hora":   st.LaborRatePerHour,
		"costo_kwh":     st.CostPerKwh,
		"consumo_watts": st.KwhRating,
	} {
		if value < 0 {
			return fmt.Errorf("%s debe ser mayor o igual a 0", field)
		}
	}
	return nil
}

func (s *server) handleMaterialsList(w http.ResponseWriter, r *http.Request) {
	materials, err := s.store.ListMaterials()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "no se pudo leer el catálogo")
		return
	}

	if cat := strings.TrimSpace(r.URL.Query().Get("categoria")); cat != "" {
		filtered := make([]material.Material, 0, len(materials))
		for _, m := range materials {
			if string(m.Category) == cat {
				filtered = append(filtered, m)
			}
		}
		materials = filtered
	}

	writeJSON(w, http.StatusOK, materials)
}

func (s *server) handleMaterialCreate(w http.ResponseWriter, r *http.Request) {
	var m material.Material
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	if strings.TrimSpace(string(m.Category)) == "" {
		writeError(w, http.StatusBadRequest, "categoria es requerida")
		return
	}

	policy := material.PolicyFor(m.Category)
	if err := policy.Validate(m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m.ID = uuid.NewString()
	m.InitialPackageCount = m.PackageCount
	m.RemainingQuantity = initialRemaining(policy, m)
	if strings.TrimSpace(m.Name) == "" {
		m.Name = policy.DisplayName(m)
	}

	if err := s.store.InsertMaterial(m); err != nil {
		writeError(w, http.StatusInternalServerError, "no se pudo crear el material")
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// initialRemaining derives the starting stock from the packaging
// fields: packages times package size for weight and volume
// categories, bare package count for count-based ones.
func initialRemaining(policy material.Policy, m material.Material) string {
	count := material.ParseDecimalOrZero(m.PackageCount)
	if policy.Unit() == material.Count {
		return count.String()
	}
	return count.Mul(material.ParseDecimalOrZero(m.PackageSize)).String()
}

func (s *server) handleMaterialGet(w http.ResponseWriter, r *http.Request) {
	m, found, err := s.store.GetMaterial(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "no se pudo leer el material")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "material no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleMaterialUpdate is the direct edit workflow: the caller sends
// the full document and may reset remaining quantity and package count
// independently of each other.
func (s *server) handleMaterialUpdate(w http.ResponseWriter, r *http.Request) {
	var m material.Material
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	m.ID = chi.URLParam(r, "id")
	policy := material.PolicyFor(m.Category)
	if err := policy.Validate(m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(m.Name) == "" {
		m.Name = policy.DisplayName(m)
	}

	found, err := s.store.UpdateMaterial(m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "no se pudo actualizar el material")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "material no encontrado")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (s *server) handleJobPreview(w http.ResponseWriter, r *http.Request) {
	draft, err := s.parseJobDraft(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := job.Price(draft)
	writeJSON(w, http.StatusOK, previewResponse{
		MaterialsCost: result.Breakdown.MaterialsCost.StringFixed(2),
		LaborCost:     result.Breakdown.LaborCost.StringFixed(2),
		PowerCost:     result.Breakdown.PowerCost.StringFixed(2),
		ExtrasCost:    result.Breakdown.ExtrasCost.StringFixed(2),
		TotalCost:     result.Total.StringFixed(2),
		SalePrice:     pricing.SalePrice(result.Total, draft.MarginPercent).StringFixed(2),
	})
}

func (s *server) handleJobSubmit(w http.ResponseWriter, r *http.Request) {
	draft, err := s.parseJobDraft(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	j, reset, err := s.assembler.Submit(draft)
	if err != nil {
		var verr *job.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Reason)
			return
		}
		log.Printf("job submission failed: %v", err)
		writeError(w, http.StatusInternalServerError, "no se pudo guardar el trabajo")
		return
	}

	writeJSON(w, http.StatusCreated, submitResponse{Job: j, Draft: reset})
}

func (s *server) handleJobsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	jobs, err := s.store.ListJobs(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "no se pudo leer los trabajos")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *server) handleJobGet(w http.ResponseWriter, r *http.Request) {
	j, found, err := s.store.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "no se pudo leer el trabajo")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "trabajo no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// parseJobDraft builds the calculation state from a request body,
// snapshotting each referenced material from the catalog. A material
// that no longer exists yields an id-only snapshot: its line costs
// zero and single-material validation rejects it at submission.
func (s *server) parseJobDraft(r *http.Request) (job.Draft, error) {
	var req jobDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return job.Draft{}, fmt.Errorf("cuerpo de solicitud inválido")
	}

	draft := job.NewDraft().
		WithName(req.Name).
		WithNotes(req.Notes).
		WithLabor(orZero(req.LaborHours), orZero(req.LaborRate)).
		WithPower(orZero(req.KwhRating), orZero(req.CostPerKwh), orZero(req.PrintHours)).
		WithExtras(req.Extras...).
		WithMargin(req.MarginPercent).
		WithFailed(req.Failed)

	for i, line := range req.Usages {
		m, found, err := s.store.GetMaterial(line.MaterialID)
		if err != nil {
			return job.Draft{}, fmt.Errorf("no se pudo leer el material %s", line.MaterialID)
		}
		if !found {
			m = material.Material{ID: line.MaterialID}
		}
		draft = draft.WithUsage(m, orZero(line.Quantity))
		if line.Deduct != nil {
			draft = draft.WithUsageDeduct(i, *line.Deduct)
		}
	}

	return draft, nil
}

func orZero(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "0"
	}
	return raw
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			next.ServeHTTP(w, r)
			return
		}

		if !isAuthenticated(r, s.auth) {
			writeError(w, http.StatusUnauthorized, "sesión requerida")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request, auth *authService) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}

	_, ok := auth.verifySessionValue(cookie.Value)
	return ok
}

func (s *server) ensureSettings() error {
	_, err := s.db.Exec(`
		INSERT INTO settings (id, labor_rate_per_hour, cost_per_kwh, kwh_rating, currency)
		VALUES (1, 0, 0, 0, 'MXN')
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("insert default settings: %w", err)
	}
	return nil
}

func (s *server) getSettings() (settings, error) {
	if err := s.ensureSettings(); err != nil {
		return settings{}, err
	}

	var st settings
	err := s.db.QueryRow(`
		SELECT labor_rate_per_hour, cost_per_kwh, kwh_rating, currency
		FROM settings
		WHERE id = 1
	`).Scan(&st.LaborRatePerHour, &st.CostPerKwh, &st.KwhRating, &st.Currency)
	if err != nil {
		return settings{}, fmt.Errorf("query settings: %w", err)
	}
	return st, nil
}

func (s *server) updateSettings(st settings) error {
	if err := s.ensureSettings(); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		UPDATE settings
		SET
			labor_rate_per_hour = ?,
			cost_per_kwh = ?,
			kwh_rating = ?,
			currency = 'MXN',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, st.LaborRatePerHour, st.CostPerKwh, st.KwhRating)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	return nil
}
