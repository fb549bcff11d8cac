package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javier-prieto-uwu/taller3d/internal/inventory"
	"github.com/javier-prieto-uwu/taller3d/internal/material"
	"github.com/javier-prieto-uwu/taller3d/internal/pricing"
)

// Store is the slice of the document store the assembler needs. The
// job write and each material write are independent requests; there is
// no transactional grouping across them.
type Store interface {
	ListMaterials() ([]material.Material, error)
	InsertJob(j Job) error
	// UpdateMaterialStock persists a deduction. found is false when the
	// material no longer exists, which the assembler treats as
	// non-fatal.
	UpdateMaterialStock(id, remainingQuantity, packageCount string) (found bool, err error)
}

// ValidationError is a rejected submission: the draft is incomplete
// and nothing was written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Assembler orchestrates one job submission: validate the draft,
// compute the cost snapshot, persist the job, then persist the
// inventory deductions.
type Assembler struct {
	store Store
}

func NewAssembler(store Store) *Assembler {
	return &Assembler{store: store}
}

// Submit finalizes a draft.
//
// On success it returns the persisted job and a fresh empty draft (the
// calculation state resets once a job is saved). On a validation error
// the original draft comes back untouched and nothing is written.
//
// If the job write succeeds but a material write then fails, the error
// is reported and the already-persisted job is still returned: there
// is no compensating rollback, callers needing stronger consistency
// must reconcile externally.
func (a *Assembler) Submit(d Draft) (Job, Draft, error) {
	if err := a.validate(d); err != nil {
		return Job{}, d, err
	}

	catalog, err := a.loadCatalog()
	if err != nil {
		return Job{}, d, fmt.Errorf("leer catalogo: %w", err)
	}

	if len(d.Usages) == 1 {
		// Single-material mode: the selected material must still exist.
		if _, ok := catalog[d.Usages[0].Material.ID]; !ok {
			return Job{}, d, &ValidationError{Reason: "el material seleccionado ya no existe"}
		}
	}

	result := pricing.Calculate(pricingInput(d))
	j := materialize(d, result)

	if err := a.store.InsertJob(j); err != nil {
		return Job{}, d, fmt.Errorf("guardar trabajo: %w", err)
	}

	updates := inventory.Apply(catalog, deductions(d))
	for _, up := range updates {
		found, err := a.store.UpdateMaterialStock(up.MaterialID, up.RemainingQuantity, up.PackageCount)
		if err != nil {
			return j, d, fmt.Errorf("guardar material %s: %w", up.MaterialID, err)
		}
		if !found {
			// Deleted between read and write; the cost snapshot stands.
			continue
		}
	}

	return j, NewDraft(), nil
}

// Price computes the cost breakdown of a draft without persisting
// anything, for the live preview during cost entry.
func Price(d Draft) pricing.Result {
	return pricing.Calculate(pricingInput(d))
}

func (a *Assembler) validate(d Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Reason: "nombre del trabajo es requerido"}
	}
	if len(d.Usages) == 0 {
		return &ValidationError{Reason: "agrega al menos un material"}
	}
	for _, u := range d.Usages {
		if strings.TrimSpace(u.Material.ID) == "" {
			return &ValidationError{Reason: "cada linea debe tener un material seleccionado"}
		}
	}
	return nil
}

func (a *Assembler) loadCatalog() (map[string]material.Material, error) {
	list, err := a.store.ListMaterials()
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]material.Material, len(list))
	for _, m := range list {
		catalog[m.ID] = m
	}
	return catalog, nil
}

func pricingInput(d Draft) pricing.JobInput {
	in := pricing.JobInput{
		LaborHours: material.ParseDecimalOrZero(d.LaborHours),
		LaborRate:  material.ParseDecimalOrZero(d.LaborRate),
		KwhRating:  material.ParseDecimalOrZero(d.KwhRating),
		CostPerKwh: material.ParseDecimalOrZero(d.CostPerKwh),
		PrintHours: material.ParseDecimalOrZero(d.PrintHours),
	}
	for _, u := range d.Usages {
		in.Usages = append(in.Usages, pricing.UsageInput{
			Material: u.Material,
			Quantity: material.ParseDecimalOrZero(u.Quantity),
		})
	}
	for _, e := range d.Extras {
		in.Extras = append(in.Extras, material.ParseDecimalOrZero(e))
	}
	return in
}

func deductions(d Draft) []inventory.Usage {
	usages := make([]inventory.Usage, 0, len(d.Usages))
	for _, u := range d.Usages {
		usages = append(usages, inventory.Usage{
			MaterialID: u.Material.ID,
			Quantity:   material.ParseDecimalOrZero(u.Quantity),
			Deduct:     u.Deduct,
		})
	}
	return usages
}

func materialize(d Draft, result pricing.Result) Job {
	usages := make([]Usage, 0, len(d.Usages))
	for _, u := range d.Usages {
		usages = append(usages, Usage{
			Material: u.Material,
			Quantity: u.Quantity,
			Deduct:   u.Deduct,
		})
	}

	return Job{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(d.Name),
		Notes:         strings.TrimSpace(d.Notes),
		Usages:        usages,
		LaborCost:     result.Breakdown.LaborCost.StringFixed(2),
		ExtrasCost:    result.Breakdown.ExtrasCost.StringFixed(2),
		PowerCost:     result.Breakdown.PowerCost.StringFixed(2),
		MaterialsCost: result.Breakdown.MaterialsCost.StringFixed(2),
		TotalCost:     result.Total.StringFixed(2),
		SalePrice:     pricing.SalePrice(result.Total, d.MarginPercent).StringFixed(2),
		MarginPercent: d.MarginPercent,
		Failed:        d.Failed,
		CreatedAt:     time.Now().UTC(),
	}
}
