package material

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Policy holds the per-category unit rules: how packaging fields map to
// a cost per consumption unit, how remaining stock maps back to whole
// packages, and what a complete registration for the category looks
// like. Implementations are pure; all category branching in the engine
// lives in this table.
type Policy interface {
	// Unit is the measurement basis jobs consume this category in.
	Unit() Unit

	// CostPerUnit converts the packaging record into a cost per
	// consumption unit. Returns zero when the record cannot support the
	// division (missing, malformed, or non-positive package size).
	CostPerUnit(m Material) decimal.Decimal

	// PackagesRemaining converts remaining stock into a whole-package
	// count. roundUp selects the display estimate ("how many rolls are
	// left"); the deduction recompute always floors, since a partially
	// consumed package is not a whole unit owned. Only gram-based
	// categories distinguish the two.
	PackagesRemaining(m Material, roundUp bool) int64

	// LegacyRemaining estimates remaining stock for old documents that
	// predate the RemainingQuantity field.
	LegacyRemaining(m Material) decimal.Decimal

	// Validate checks category-specific registration completeness.
	Validate(m Material) error

	// DisplayName builds the deterministic catalog name for the record.
	DisplayName(m Material) string
}

var policies = map[Category]Policy{
	Filament: spoolPolicy{},
	Resin:    spoolPolicy{},
	Paint:    paintPolicy{},
	Keychain: countPolicy{fixedName: "Argolla de llavero"},
}

// PolicyFor returns the policy for a category. Unknown categories are
// user-defined and priced per unit, like keychain rings.
func PolicyFor(c Category) Policy {
	if p, ok := policies[c]; ok {
		return p
	}
	return countPolicy{}
}

// spoolPolicy covers filament and resin: packages are rolls or bottles
// measured in grams, consumed by weight.
type spoolPolicy struct{}

func (spoolPolicy) Unit() Unit { return Grams }

func (spoolPolicy) CostPerUnit(m Material) decimal.Decimal {
	return dividePerUnit(m.PricePerPackage, m.PackageSize)
}

func (spoolPolicy) PackagesRemaining(m Material, roundUp bool) int64 {
	return dividePackages(m.RemainingQuantity, m.PackageSize, roundUp)
}

func (spoolPolicy) LegacyRemaining(m Material) decimal.Decimal {
	// Old documents carried no remaining quantity; assume one
	// package's worth is left.
	return ParseDecimalOrZero(m.PackageSize)
}

func (spoolPolicy) Validate(m Material) error {
	if strings.TrimSpace(m.Type) == "" {
		return fmt.Errorf("tipo es requerido")
	}
	if strings.TrimSpace(m.Subtype) == "" {
		return fmt.Errorf("subtipo es requerido")
	}
	if strings.TrimSpace(m.Color) == "" {
		return fmt.Errorf("color es requerido")
	}
	if ParseDecimalOrZero(m.PackageSize).Sign() <= 0 {
		return fmt.Errorf("tamano_paquete debe ser mayor a 0")
	}
	if ParseDecimalOrZero(m.PricePerPackage).Sign() <= 0 {
		return fmt.Errorf("precio_paquete debe ser mayor a 0")
	}
	return nil
}

func (spoolPolicy) DisplayName(m Material) string {
	return joinNonEmpty(m.Type, m.Subtype, m.Color)
}

// paintPolicy covers paint bottles: consumed by volume in milliliters.
//
// PackageSize here is the declared volume per bottle. The field
// descends from one historically named "cantidad", which some old call
// paths read as a bottle count; it is treated as volume-per-package
// everywhere in this engine.
type paintPolicy struct{}

func (paintPolicy) Unit() Unit { return Milliliters }

func (paintPolicy) CostPerUnit(m Material) decimal.Decimal {
	return dividePerUnit(m.PricePerPackage, m.PackageSize)
}

func (paintPolicy) PackagesRemaining(m Material, _ bool) int64 {
	return dividePackages(m.RemainingQuantity, m.PackageSize, false)
}

func (paintPolicy) LegacyRemaining(m Material) decimal.Decimal {
	return ParseDecimalOrZero(m.PackageCount)
}

func (paintPolicy) Validate(m Material) error {
	if strings.TrimSpace(m.Type) == "" {
		return fmt.Errorf("tipo de pintura es requerido")
	}
	if strings.TrimSpace(m.Color) == "" {
		return fmt.Errorf("color es requerido")
	}
	if ParseDecimalOrZero(m.PackageSize).Sign() <= 0 {
		return fmt.Errorf("tamano_paquete (ml por frasco) debe ser mayor a 0")
	}
	if ParseDecimalOrZero(m.PricePerPackage).Sign() <= 0 {
		return fmt.Errorf("precio_paquete debe ser mayor a 0")
	}
	return nil
}

func (paintPolicy) DisplayName(m Material) string {
	return joinNonEmpty("Pintura", m.Type, m.Color)
}

// countPolicy covers keychain rings and user-defined categories: each
// package is one item, priced and consumed per unit.
type countPolicy struct {
	fixedName string
}

func (countPolicy) Unit() Unit { return Count }

func (countPolicy) CostPerUnit(m Material) decimal.Decimal {
	price := ParseDecimalOrZero(m.PricePerPackage)
	if price.Sign() < 0 {
		return decimal.Zero
	}
	return price
}

func (countPolicy) PackagesRemaining(m Material, _ bool) int64 {
	n := ParseDecimalOrZero(m.RemainingQuantity).Floor().IntPart()
	if n < 0 {
		return 0
	}
	return n
}

func (countPolicy) LegacyRemaining(m Material) decimal.Decimal {
	return ParseDecimalOrZero(m.PackageCount)
}

func (p countPolicy) Validate(m Material) error {
	if p.fixedName == "" && strings.TrimSpace(m.Name) == "" && strings.TrimSpace(string(m.Category)) == "" {
		return fmt.Errorf("nombre es requerido")
	}
	if ParseDecimalOrZero(m.PricePerPackage).Sign() <= 0 {
		return fmt.Errorf("precio_paquete debe ser mayor a 0")
	}
	return nil
}

func (p countPolicy) DisplayName(m Material) string {
	if p.fixedName != "" {
		return p.fixedName
	}
	if name := strings.TrimSpace(m.Name); name != "" {
		return name
	}
	return strings.TrimSpace(string(m.Category))
}

func dividePerUnit(price, size string) decimal.Decimal {
	s := ParseDecimalOrZero(size)
	if s.Sign() <= 0 {
		return decimal.Zero
	}
	q := ParseDecimalOrZero(price).Div(s)
	if q.Sign() < 0 {
		return decimal.Zero
	}
	return q
}

func dividePackages(remaining, size string, roundUp bool) int64 {
	s := ParseDecimalOrZero(size)
	if s.Sign() <= 0 {
		return 0
	}
	q := ParseDecimalOrZero(remaining).Div(s)
	var n int64
	if roundUp {
		n = q.Ceil().IntPart()
	} else {
		n = q.Floor().IntPart()
	}
	if n < 0 {
		return 0
	}
	return n
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
