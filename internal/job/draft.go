package job

import "github.com/javier-prieto-uwu/taller3d/internal/material"

// DraftUsage is one material line on the cost entry form.
type DraftUsage struct {
	Material material.Material `json:"material"`
	Quantity string            `json:"cantidad_consumida"`
	Deduct   bool              `json:"descontar"`
}

// Draft is the calculation state of a job being entered. It is an
// immutable value: every transition returns a new Draft, so stale form
// state can never leak between edits; a Job is materialized only at
// submission. Numeric fields are decimal strings, "0" when untouched.
type Draft struct {
	Name          string       `json:"nombre"`
	Notes         string       `json:"notas,omitempty"`
	Usages        []DraftUsage `json:"materiales"`
	LaborHours    string       `json:"horas_mano_obra"`
	LaborRate     string       `json:"tarifa_hora"`
	KwhRating     string       `json:"consumo_watts"`
	CostPerKwh    string       `json:"costo_kwh"`
	PrintHours    string       `json:"horas_impresion"`
	Extras        []string     `json:"extras,omitempty"`
	MarginPercent int64        `json:"margen_porcentaje"`
	Failed        bool         `json:"fallido"`
}

// NewDraft returns the empty calculation state.
func NewDraft() Draft {
	return Draft{
		LaborHours: "0",
		LaborRate:  "0",
		KwhRating:  "0",
		CostPerKwh: "0",
		PrintHours: "0",
	}
}

func (d Draft) cloneUsages() []DraftUsage {
	if len(d.Usages) == 0 {
		return nil
	}
	usages := make([]DraftUsage, len(d.Usages))
	copy(usages, d.Usages)
	return usages
}

// WithName sets the job name.
func (d Draft) WithName(name string) Draft {
	d.Name = name
	return d
}

// WithNotes sets free-form notes.
func (d Draft) WithNotes(notes string) Draft {
	d.Notes = notes
	return d
}

// WithUsage appends a material line. Deduction defaults to on; it is
// toggled per line with WithUsageDeduct.
func (d Draft) WithUsage(m material.Material, quantity string) Draft {
	usages := d.cloneUsages()
	d.Usages = append(usages, DraftUsage{Material: m, Quantity: quantity, Deduct: true})
	return d
}

// WithUsageQuantity replaces the consumed quantity of line i. Out of
// range indices are ignored.
func (d Draft) WithUsageQuantity(i int, quantity string) Draft {
	if i < 0 || i >= len(d.Usages) {
		return d
	}
	usages := d.cloneUsages()
	usages[i].Quantity = quantity
	d.Usages = usages
	return d
}

// WithUsageDeduct toggles whether line i draws from inventory on
// submission.
func (d Draft) WithUsageDeduct(i int, deduct bool) Draft {
	if i < 0 || i >= len(d.Usages) {
		return d
	}
	usages := d.cloneUsages()
	usages[i].Deduct = deduct
	d.Usages = usages
	return d
}

// WithoutUsage removes line i.
func (d Draft) WithoutUsage(i int) Draft {
	if i < 0 || i >= len(d.Usages) {
		return d
	}
	usages := d.cloneUsages()
	d.Usages = append(usages[:i], usages[i+1:]...)
	return d
}

// WithLabor sets worked hours and the hourly rate.
func (d Draft) WithLabor(hours, ratePerHour string) Draft {
	d.LaborHours = hours
	d.LaborRate = ratePerHour
	return d
}

// WithPower sets the printer wattage, electricity tariff and print time.
func (d Draft) WithPower(kwhRating, costPerKwh, printHours string) Draft {
	d.KwhRating = kwhRating
	d.CostPerKwh = costPerKwh
	d.PrintHours = printHours
	return d
}

// WithExtras replaces the ad-hoc extra cost inputs.
func (d Draft) WithExtras(extras ...string) Draft {
	if len(extras) == 0 {
		d.Extras = nil
		return d
	}
	d.Extras = append([]string(nil), extras...)
	return d
}

// WithMargin sets the profit margin percent used for the suggested
// sale price.
func (d Draft) WithMargin(percent int64) Draft {
	d.MarginPercent = percent
	return d
}

// WithFailed marks the job as a recorded failure. Deduction still
// follows each line's flag.
func (d Draft) WithFailed(failed bool) Draft {
	d.Failed = failed
	return d
}
