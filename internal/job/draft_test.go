package job

import (
	"testing"

	"github.com/javier-prieto-uwu/taller3d/internal/material"
)

func TestNewDraft_NumericFieldsStartAtZero(t *testing.T) {
	d := NewDraft()
	for name, value := range map[string]string{
		"LaborHours": d.LaborHours,
		"LaborRate":  d.LaborRate,
		"KwhRating":  d.KwhRating,
		"CostPerKwh": d.CostPerKwh,
		"PrintHours": d.PrintHours,
	} {
		if value != "0" {
			t.Fatalf("%s = %q, want \"0\"", name, value)
		}
	}
	if d.Name != "" || len(d.Usages) != 0 {
		t.Fatalf("new draft is not empty: %+v", d)
	}
}

func TestDraft_TransitionsDoNotMutateTheOriginal(t *testing.T) {
	m := material.Material{ID: "f1", Category: material.Filament}

	base := NewDraft().WithName("Soporte mural").WithUsage(m, "250")
	modified := base.WithUsageQuantity(0, "900").WithUsageDeduct(0, false).WithName("Otro")

	if base.Usages[0].Quantity != "250" || !base.Usages[0].Deduct {
		t.Fatalf("base draft mutated: %+v", base.Usages[0])
	}
	if base.Name != "Soporte mural" {
		t.Fatalf("base name mutated: %q", base.Name)
	}
	if modified.Usages[0].Quantity != "900" || modified.Usages[0].Deduct {
		t.Fatalf("modified draft wrong: %+v", modified.Usages[0])
	}
}

func TestDraft_WithUsageDefaultsToDeduct(t *testing.T) {
	d := NewDraft().WithUsage(material.Material{ID: "f1"}, "100")
	if !d.Usages[0].Deduct {
		t.Fatalf("new usage should deduct by default")
	}
}

func TestDraft_WithoutUsageRemovesLine(t *testing.T) {
	d := NewDraft().
		WithUsage(material.Material{ID: "a"}, "1").
		WithUsage(material.Material{ID: "b"}, "2").
		WithUsage(material.Material{ID: "c"}, "3")

	d = d.WithoutUsage(1)

	if len(d.Usages) != 2 || d.Usages[0].Material.ID != "a" || d.Usages[1].Material.ID != "c" {
		t.Fatalf("unexpected usages after removal: %+v", d.Usages)
	}
}

func TestDraft_OutOfRangeIndexesAreIgnored(t *testing.T) {
	d := NewDraft().WithUsage(material.Material{ID: "a"}, "1")

	same := d.WithUsageQuantity(5, "9").WithUsageDeduct(-1, false).WithoutUsage(3)

	if len(same.Usages) != 1 || same.Usages[0].Quantity != "1" {
		t.Fatalf("out of range transition changed the draft: %+v", same.Usages)
	}
}

func TestDraft_WithExtrasCopiesInput(t *testing.T) {
	extras := []string{"1.50", "2.00"}
	d := NewDraft().WithExtras(extras...)
	extras[0] = "99"

	if d.Extras[0] != "1.50" {
		t.Fatalf("extras alias the caller's slice: %+v", d.Extras)
	}

	if cleared := d.WithExtras(); cleared.Extras != nil {
		t.Fatalf("expected extras cleared, got %+v", cleared.Extras)
	}
}
