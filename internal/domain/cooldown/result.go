// Package cooldown decides whether an ability can be used at a point of the
// encounter timeline. The Manager resolves ability metadata, applies the
// assignment rules, dispatches to the charge, instance and stack trackers and
// owns every cache.
package cooldown

// Reason explains why an ability is unavailable. The set is closed.
type Reason string

// Reasons.
const (
	ReasonNone                 Reason = ""
	ReasonAbilityNotFound      Reason = "ability_not_found"
	ReasonOnCooldown           Reason = "on_cooldown"
	ReasonSharedCooldown       Reason = "shared_cooldown"
	ReasonNoCharges            Reason = "no_charges"
	ReasonNoInstances          Reason = "no_instances"
	ReasonAlreadyAssigned      Reason = "already_assigned"
	ReasonRequiresActiveWindow Reason = "requires_active_window"
	ReasonJobNotSelected       Reason = "job_not_selected"
	ReasonNoStackResource      Reason = "no_stack_resource"
)

// Reasons lists every unavailability reason.
func Reasons() []Reason {
	return []Reason{
		ReasonAbilityNotFound, ReasonOnCooldown, ReasonSharedCooldown, ReasonNoCharges,
		ReasonNoInstances, ReasonAlreadyAssigned, ReasonRequiresActiveWindow,
		ReasonJobNotSelected, ReasonNoStackResource,
	}
}

// LastUse describes the most recent use at or before the query time.
type LastUse struct {
	Time      float64 `json:"time"`
	EventID   string  `json:"eventId"`
	EventName string  `json:"eventName"`
}

// Result is the availability of one ability at one instant. Results are shared
// through the cache and must be treated as read-only.
type Result struct {
	AbilityID          string   `json:"abilityId"`
	IsAvailable        bool     `json:"isAvailable"`
	Reason             Reason   `json:"reason,omitempty"`
	AvailableCharges   int      `json:"availableCharges"`
	TotalCharges       int      `json:"totalCharges"`
	AvailableInstances int      `json:"availableInstances"`
	TotalInstances     int      `json:"totalInstances"`
	AvailableStacks    int      `json:"availableStacks,omitempty"`
	TotalStacks        int      `json:"totalStacks,omitempty"`
	NextAvailableTime  *float64 `json:"nextAvailableTime,omitempty"`
	NextStackRefill    *float64 `json:"nextStackRefill,omitempty"`
	LastUsed           *LastUse `json:"lastUsed,omitempty"`
}

// CanAssign reports whether a new assignment may be made.
func (r Result) CanAssign() bool {
	return r.IsAvailable && (r.AvailableCharges > 0 || r.AvailableInstances > 0)
}

// Preview is a what-if comparison around a hypothetical use.
type Preview struct {
	AbilityID string  `json:"abilityId"`
	EventID   string  `json:"eventId"`
	Time      float64 `json:"time"`
	Before    Result  `json:"before"`
	After     Result  `json:"after"`
}

func ptr(v float64) *float64 { return &v }
