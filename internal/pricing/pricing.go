// Package pricing computes the cost breakdown of a print job from its
// material usages, labor, power and ad-hoc extras. Everything here is a
// pure function over a job snapshot; re-invoking with updated inputs
// recomputes from scratch.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/javier-prieto-uwu/taller3d/internal/material"
)

// UsageInput is one material line item: a catalog snapshot plus the
// quantity consumed, in the material's consumption unit.
type UsageInput struct {
	Material material.Material
	Quantity decimal.Decimal
}

// JobInput carries every cost input of a job.
type JobInput struct {
	Usages     []UsageInput
	LaborHours decimal.Decimal
	LaborRate  decimal.Decimal
	KwhRating  decimal.Decimal
	CostPerKwh decimal.Decimal
	PrintHours decimal.Decimal
	Extras     []decimal.Decimal
}

// Breakdown contains the line-item values of the calculation, each
// rounded to cents.
type Breakdown struct {
	MaterialsCost decimal.Decimal
	LaborCost     decimal.Decimal
	PowerCost     decimal.Decimal
	ExtrasCost    decimal.Decimal
}

// Result groups the full pricing output.
type Result struct {
	Breakdown Breakdown
	Total     decimal.Decimal
}

// UsageCost prices one line item: cost per consumption unit times
// quantity, rounded to cents. Never negative, regardless of how
// malformed the record is.
func UsageCost(m material.Material, qty decimal.Decimal) decimal.Decimal {
	cost := material.PolicyFor(m.Category).CostPerUnit(m).Mul(qty).Round(2)
	if cost.Sign() < 0 {
		return decimal.Zero
	}
	return cost
}

// MaterialsCost sums UsageCost over all usages. Every usage counts,
// whether or not it will be deducted from stock: a user may cost a
// material without drawing it from inventory.
func MaterialsCost(usages []UsageInput) decimal.Decimal {
	sum := decimal.Zero
	for _, u := range usages {
		sum = sum.Add(UsageCost(u.Material, u.Quantity))
	}
	return sum
}

// LaborCost is hours times the hourly rate.
func LaborCost(hours, ratePerHour decimal.Decimal) decimal.Decimal {
	return hours.Mul(ratePerHour)
}

// PowerCost estimates electricity: the printer's rating is given in
// watts, the tariff per kWh.
func PowerCost(kwhRating, costPerKwh, printHours decimal.Decimal) decimal.Decimal {
	return kwhRating.Div(decimal.NewFromInt(1000)).Mul(costPerKwh).Mul(printHours)
}

// ExtrasCost is a flat sum of ad-hoc inputs (glue, hardware, inserts)
// with no unit conversion.
func ExtrasCost(extras ...decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range extras {
		sum = sum.Add(e)
	}
	return sum
}

// Calculate computes the full breakdown and total. The total is the
// production cost and the cost basis for the sale price; there is no
// separate margin-inclusive production figure.
func Calculate(in JobInput) Result {
	b := Breakdown{
		MaterialsCost: MaterialsCost(in.Usages),
		LaborCost:     LaborCost(in.LaborHours, in.LaborRate).Round(2),
		PowerCost:     PowerCost(in.KwhRating, in.CostPerKwh, in.PrintHours).Round(2),
		ExtrasCost:    ExtrasCost(in.Extras...).Round(2),
	}
	total := b.MaterialsCost.Add(b.LaborCost).Add(b.ExtrasCost).Add(b.PowerCost)
	return Result{Breakdown: b, Total: total}
}

// SalePrice applies an integer profit margin percent to a total.
func SalePrice(total decimal.Decimal, marginPercent int64) decimal.Decimal {
	factor := decimal.NewFromInt(100 + marginPercent).Div(decimal.NewFromInt(100))
	return total.Mul(factor).Round(2)
}
