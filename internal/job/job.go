// Package job holds the costed print record, the in-progress draft a
// user edits during cost entry, and the assembler that turns a draft
// into a persisted job plus its inventory deductions.
package job

import (
	"time"

	"github.com/javier-prieto-uwu/taller3d/internal/material"
)

// Usage is one material line item of a job. Material is a snapshot of
// the catalog record at entry time; the job's cost is computed from it
// even if the catalog record changes or disappears afterwards.
type Usage struct {
	Material material.Material `json:"material"`
	Quantity string            `json:"cantidad_consumida"`
	Deduct   bool              `json:"descontar"`
}

// Job is a costed print record. It is written once at submission and
// never updated. Cost fields are decimal strings with two decimals.
type Job struct {
	ID            string    `json:"id"`
	Name          string    `json:"nombre"`
	Notes         string    `json:"notas,omitempty"`
	Usages        []Usage   `json:"materiales"`
	LaborCost     string    `json:"costo_mano_obra"`
	ExtrasCost    string    `json:"costo_extras"`
	PowerCost     string    `json:"costo_luz"`
	MaterialsCost string    `json:"costo_materiales"`
	TotalCost     string    `json:"costo_total"`
	SalePrice     string    `json:"precio_venta"`
	MarginPercent int64     `json:"margen_porcentaje"`
	Failed        bool      `json:"fallido"`
	CreatedAt     time.Time `json:"creado_en"`
}
