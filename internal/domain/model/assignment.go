package model

import "time"

// TankPosition disambiguates the tank an assignment targets.
type TankPosition string

// Tank positions.
const (
	PositionNone     TankPosition = ""
	PositionShared   TankPosition = "shared"
	PositionMainTank TankPosition = "mainTank"
	PositionOffTank  TankPosition = "offTank"
)

// Specific reports whether p names one tank.
func (p TankPosition) Specific() bool {
	return p == PositionMainTank || p == PositionOffTank
}

// Valid reports whether p is a known position.
func (p TankPosition) Valid() bool {
	switch p {
	case PositionNone, PositionShared, PositionMainTank, PositionOffTank:
		return true
	}
	return false
}

// Assignment plans one ability use against one event.
type Assignment struct {
	// ID is assigned by the store and identifies one written entry.
	ID             string       `json:"id,omitempty" yaml:"id,omitempty"`
	AbilityID      string       `json:"abilityId" yaml:"abilityId" validate:"required"`
	TankPosition   TankPosition `json:"tankPosition,omitempty" yaml:"tankPosition,omitempty" validate:"omitempty,oneof=shared mainTank offTank"`
	CasterJobID    string       `json:"casterJobId,omitempty" yaml:"casterJobId,omitempty"`
	PrecastSeconds float64      `json:"precastSeconds,omitempty" yaml:"precastSeconds,omitempty"`
	InstanceID     string       `json:"instanceId,omitempty" yaml:"instanceId,omitempty"`
	ChargeIndex    int          `json:"chargeIndex,omitempty" yaml:"chargeIndex,omitempty"`
	// UpdatedAt is when the entry was last written; zero when unknown.
	UpdatedAt time.Time `json:"updatedAt,omitzero" yaml:"updatedAt,omitempty"`
}

// Slot identifies an assignment within one event for merge and removal.
type Slot struct {
	AbilityID    string
	TankPosition TankPosition
}

// Slot returns the merge key of a.
func (a Assignment) Slot() Slot {
	return Slot{AbilityID: a.AbilityID, TankPosition: a.TankPosition}
}

// Assignments maps an event id to the abilities planned against it.
type Assignments map[string][]Assignment

// Clone returns a deep copy.
func (as Assignments) Clone() Assignments {
	out := make(Assignments, len(as))
	for id, list := range as {
		out[id] = append([]Assignment(nil), list...)
	}
	return out
}

// Add appends a to eventID in place.
func (as Assignments) Add(eventID string, a Assignment) {
	as[eventID] = append(as[eventID], a)
}

// Remove drops the first entry on eventID matching slot and reports whether one was found.
func (as Assignments) Remove(eventID string, slot Slot) bool {
	list := as[eventID]
	for i, a := range list {
		if a.Slot() != slot {
			continue
		}
		next := append(append([]Assignment(nil), list[:i]...), list[i+1:]...)
		if len(next) == 0 {
			delete(as, eventID)
		} else {
			as[eventID] = next
		}
		return true
	}
	return false
}

// RemoveID drops the entry on eventID whose ID is id and reports whether one was found.
func (as Assignments) RemoveID(eventID, id string) bool {
	for i, a := range as[eventID] {
		if a.ID != id {
			continue
		}
		list := as[eventID]
		next := append(append([]Assignment(nil), list[:i]...), list[i+1:]...)
		if len(next) == 0 {
			delete(as, eventID)
		} else {
			as[eventID] = next
		}
		return true
	}
	return false
}

// Count returns the total number of entries.
func (as Assignments) Count() int {
	n := 0
	for _, list := range as {
		n += len(list)
	}
	return n
}
