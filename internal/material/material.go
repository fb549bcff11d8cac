// Package material defines the stocked-consumable record and the
// per-category unit rules used by pricing and inventory.
package material

// Category identifies the kind of consumable. The four known categories
// have fixed unit rules; any other non-empty string is a user-defined
// category and behaves as count-based stock.
type Category string

const (
	Filament Category = "filamento"
	Resin    Category = "resina"
	Paint    Category = "pintura"
	Keychain Category = "argolla_llavero"
)

// Unit is the measurement basis a job consumes material in.
type Unit string

const (
	Grams       Unit = "g"
	Milliliters Unit = "ml"
	Count       Unit = "u"
)

// Material is a stocked consumable as persisted in the catalog.
//
// Numeric fields are decimal strings: records come from user-entered
// forms and older documents, so any of them may be empty or malformed.
// Arithmetic never trusts them directly; it goes through
// ParseDecimalOrZero so bad input degrades to zero instead of failing.
//
// RemainingQuantity is the authoritative stock value, expressed in the
// category's consumption unit. PackageCount is the derived "packages
// currently owned" display value recomputed after each deduction.
// InitialPackageCount records the stock at registration time and is
// never touched by deductions.
type Material struct {
	ID                  string   `json:"id"`
	Category            Category `json:"categoria"`
	Name                string   `json:"nombre,omitempty"`
	PricePerPackage     string   `json:"precio_paquete"`
	PackageSize         string   `json:"tamano_paquete,omitempty"`
	PackageCount        string   `json:"cantidad_paquetes"`
	InitialPackageCount string   `json:"cantidad_paquetes_inicial,omitempty"`
	RemainingQuantity   string   `json:"cantidad_restante"`
	Color               string   `json:"color,omitempty"`
	Brand               string   `json:"marca,omitempty"`
	Type                string   `json:"tipo,omitempty"`
	Subtype             string   `json:"subtipo,omitempty"`
}
