package bond

import "olympuspro/core/decimal"

// AdjustmentPhase describes where the control-variable controller stands.
type AdjustmentPhase uint8

const (
	AdjustmentIdle AdjustmentPhase = iota
	AdjustmentPending
	AdjustmentReady
)

func (p AdjustmentPhase) String() string {
	switch p {
	case AdjustmentPending:
		return "pending"
	case AdjustmentReady:
		return "ready"
	default:
		return "idle"
	}
}

// PhaseAt reports the controller phase at now.
func (a Adjustment) PhaseAt(now uint64) AdjustmentPhase {
	if a.Rate.IsZero() {
		return AdjustmentIdle
	}
	if elapsedSince(a.LastTime, now) < a.Buffer {
		return AdjustmentPending
	}
	return AdjustmentReady
}

// Adjust performs at most one tick of the controller. It reports whether a
// tick happened and the control variable before the tick.
func Adjust(st *State, now uint64) (bool, decimal.Decimal, error) {
	adj := &st.Adjustment
	initial := st.Terms.ControlVariable
	if adj.PhaseAt(now) != AdjustmentReady {
		return false, initial, nil
	}
	if adj.Addition {
		next, err := initial.Add(adj.Rate)
		if err != nil {
			return false, initial, err
		}
		st.Terms.ControlVariable = next
		if !next.LT(adj.Target) {
			adj.Rate = decimal.Zero()
		}
	} else {
		next := decimal.Zero()
		if adj.Rate.LT(initial) {
			var err error
			if next, err = initial.Sub(adj.Rate); err != nil {
				return false, initial, err
			}
		}
		st.Terms.ControlVariable = next
		if !next.GT(adj.Target) {
			adj.Rate = decimal.Zero()
		}
	}
	adj.LastTime = now
	return true, initial, nil
}

func validateIncrement(controlVariable, increment decimal.Decimal) error {
	limit, err := controlVariable.Mul(MaxAdjustmentShare)
	if err != nil {
		return err
	}
	if increment.GT(limit) {
		return ErrIncrementTooLarge
	}
	return nil
}
