// Package inventory derives the stock updates a finalized job causes.
package inventory

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/javier-prieto-uwu/taller3d/internal/material"
)

// Usage is one deduction request: which material, how much was
// consumed (in the material's consumption unit), and whether this line
// item should touch stock at all.
type Usage struct {
	MaterialID string
	Quantity   decimal.Decimal
	Deduct     bool
}

// Update is the write emitted for one material after a deduction. Both
// values are decimal strings ready to persist into the document.
type Update struct {
	MaterialID        string
	RemainingQuantity string
	PackageCount      string
}

// Apply computes the updates for every usage with Deduct set, reading
// current stock from the catalog snapshot.
//
// Rules, per usage:
//   - Deduct false: skipped entirely, no read and no write.
//   - Material missing from the catalog: skipped silently. The job's
//     cost was already computed from its own snapshot, so a reference
//     that went stale between entry and submission is non-fatal.
//   - New remaining is clamped at zero; stock never goes negative.
//   - The package count is recomputed with the floor rule: a partially
//     consumed package does not count as a whole unit owned.
func Apply(catalog map[string]material.Material, usages []Usage) []Update {
	updates := make([]Update, 0, len(usages))
	for _, u := range usages {
		if !u.Deduct {
			continue
		}
		m, ok := catalog[u.MaterialID]
		if !ok {
			continue
		}

		policy := material.PolicyFor(m.Category)
		current := material.ParseDecimalOrZero(m.RemainingQuantity)
		if strings.TrimSpace(m.RemainingQuantity) == "" {
			// Documents from before remaining stock was tracked.
			current = policy.LegacyRemaining(m)
		}

		remaining := current.Sub(u.Quantity)
		if remaining.Sign() < 0 {
			remaining = decimal.Zero
		}

		m.RemainingQuantity = remaining.String()
		count := policy.PackagesRemaining(m, false)

		updates = append(updates, Update{
			MaterialID:        u.MaterialID,
			RemainingQuantity: remaining.String(),
			PackageCount:      strconv.FormatInt(count, 10),
		})
	}
	return updates
}
