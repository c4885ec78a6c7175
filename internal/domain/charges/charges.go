// Package charges tracks abilities with several identically-timed charges.
package charges

import "github.com/okian/mitiplan/internal/domain/usage"

// State is the charge availability at one instant.
type State struct {
	Available int
	Total     int
	// NextRecovery is the earliest instant a held charge comes back; valid when HasNext.
	NextRecovery float64
	HasNext      bool
}

// Evaluate computes charge state at target from a sorted history.
//
// Only the total most recent uses can still hold a charge, so older records are
// never inspected. A charge used at t is held for [t, t+cooldown).
func Evaluate(history []usage.Record, target, cooldown float64, total int) State {
	if total < 1 {
		total = 1
	}
	st := State{Total: total}
	prior := usage.Before(history, target)
	if len(prior) > total {
		prior = prior[len(prior)-total:]
	}
	held := 0
	for _, r := range prior {
		if target-r.Time >= cooldown {
			continue
		}
		held++
		back := r.Time + cooldown
		if !st.HasNext || back < st.NextRecovery {
			st.NextRecovery, st.HasNext = back, true
		}
	}
	st.Available = total - held
	return st
}
