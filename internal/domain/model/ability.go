package model

// Target describes who an ability affects.
type Target string

// Ability targets.
const (
	TargetSelf   Target = "self"
	TargetSingle Target = "single"
	TargetParty  Target = "party"
	TargetRaid   Target = "raid"
)

// Window requires another ability's effect to be active when this ability is used.
type Window struct {
	AbilityID string  `json:"abilityId" yaml:"abilityId" validate:"required"`
	Duration  float64 `json:"duration" yaml:"duration" validate:"gt=0"`
}

// Ability is a read-only catalogue record.
type Ability struct {
	ID       string  `json:"id" yaml:"id" validate:"required"`
	Name     string  `json:"name" yaml:"name"`
	Cooldown float64 `json:"cooldown" yaml:"cooldown" validate:"gte=0"`
	// LevelCooldowns overrides Cooldown from the given level upwards.
	LevelCooldowns map[int]float64 `json:"levelCooldowns,omitempty" yaml:"levelCooldowns,omitempty"`
	Charges        int             `json:"charges,omitempty" yaml:"charges,omitempty" validate:"gte=0"`
	// LevelCharges overrides Charges from the given level upwards.
	LevelCharges map[int]int `json:"levelCharges,omitempty" yaml:"levelCharges,omitempty"`
	// Duration bounds how far ahead of an event the ability may be precast.
	Duration       float64  `json:"duration" yaml:"duration" validate:"gte=0"`
	Target         Target   `json:"target,omitempty" yaml:"target,omitempty" validate:"omitempty,oneof=self single party raid"`
	IsRoleShared   bool     `json:"isRoleShared,omitempty" yaml:"isRoleShared,omitempty"`
	Jobs           []string `json:"jobs" yaml:"jobs"`
	ForTankBusters bool     `json:"forTankBusters,omitempty" yaml:"forTankBusters,omitempty"`
	ForRaidWide    bool     `json:"forRaidWide,omitempty" yaml:"forRaidWide,omitempty"`
	ConsumesStack  bool     `json:"consumesStack,omitempty" yaml:"consumesStack,omitempty"`
	ProvidesStack  bool     `json:"providesStack,omitempty" yaml:"providesStack,omitempty"`
	// SharedCooldownGroup links abilities that share one cooldown timer.
	SharedCooldownGroup string  `json:"sharedCooldownGroup,omitempty" yaml:"sharedCooldownGroup,omitempty"`
	RequiresActiveWindow *Window `json:"requiresActiveWindow,omitempty" yaml:"requiresActiveWindow,omitempty"`
}

// CooldownAt returns the cooldown that applies at level. The override with the
// greatest level not above the given level wins.
func (a *Ability) CooldownAt(level int) float64 {
	cd := a.Cooldown
	best := -1
	for lvl, v := range a.LevelCooldowns {
		if lvl <= level && lvl > best {
			best, cd = lvl, v
		}
	}
	return cd
}

// ChargesAt returns the charge count at level, never less than one.
func (a *Ability) ChargesAt(level int) int {
	n := a.Charges
	best := -1
	for lvl, v := range a.LevelCharges {
		if lvl <= level && lvl > best {
			best, n = lvl, v
		}
	}
	if n < 1 {
		return 1
	}
	return n
}

// HasJob reports whether job can provide the ability.
func (a *Ability) HasJob(job string) bool {
	for _, j := range a.Jobs {
		if j == job {
			return true
		}
	}
	return false
}

// PositionBound reports whether assignments of this ability are scoped to a tank.
func (a *Ability) PositionBound() bool {
	return a.Target == TargetSingle && a.ForTankBusters
}
