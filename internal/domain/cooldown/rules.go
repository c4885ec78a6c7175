package cooldown

import (
	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/internal/domain/usage"
)

// AllowsDoubleApplication reports whether ab may be assigned more than once to ev:
// only tank-buster abilities that are not raid-wide, on a tank-buster event,
// with more than one charge or instance.
func AllowsDoubleApplication(ab *model.Ability, ev model.Event, totalCharges, totalInstances int) bool {
	if !ev.IsTankBuster || !ab.ForTankBusters || ab.ForRaidWide {
		return false
	}
	return totalCharges > 1 || totalInstances > 1
}

// AlreadyAssigned reports whether existing (one event's entries) already holds ab.
// Tank-bound abilities are compared per position when a specific tank is requested.
func AlreadyAssigned(ab *model.Ability, existing []model.Assignment, position model.TankPosition) bool {
	perTank := ab.PositionBound() && position.Specific()
	for _, a := range existing {
		if a.AbilityID != ab.ID {
			continue
		}
		if !perTank || a.TankPosition == position {
			return true
		}
	}
	return false
}

// WindowActive reports whether some use in history covers at: t <= at <= t+duration.
func WindowActive(history []usage.Record, at, duration float64) bool {
	for _, r := range usage.Before(history, at) {
		if at <= r.Time+duration {
			return true
		}
	}
	return false
}

// GroupCooldown returns the longest cooldown among the group members at level.
// Unknown members are ignored.
func GroupCooldown(catalog *model.Catalog, members []string, level int) float64 {
	longest := 0.0
	for _, id := range members {
		ab, ok := catalog.Ability(id)
		if !ok {
			continue
		}
		if cd := ab.CooldownAt(level); cd > longest {
			longest = cd
		}
	}
	return longest
}
