package bond

import "olympuspro/core/decimal"

func elapsedSince(last, now uint64) uint64 {
	if now <= last {
		return 0
	}
	return now - last
}

// DebtDecay returns the portion of total debt that has decayed since the last
// decay. Once a full vesting term has elapsed the whole debt has decayed.
func DebtDecay(st *State, now uint64) (decimal.Uint, error) {
	elapsed := elapsedSince(st.LastDecay, now)
	if st.Terms.VestingTerm == 0 || elapsed >= st.Terms.VestingTerm {
		return st.TotalDebt, nil
	}
	decay, err := st.TotalDebt.MulRatio(decimal.NewUint(elapsed), decimal.NewUint(st.Terms.VestingTerm))
	if err != nil {
		return decimal.Uint{}, err
	}
	return decay.Min(st.TotalDebt), nil
}

// CurrentDebt returns total debt net of decay at now.
func CurrentDebt(st *State, now uint64) (decimal.Uint, error) {
	decay, err := DebtDecay(st, now)
	if err != nil {
		return decimal.Uint{}, err
	}
	return st.TotalDebt.Sub(decay)
}

// DecayDebt applies the decay to the ledger and stamps LastDecay.
func DecayDebt(st *State, now uint64) error {
	current, err := CurrentDebt(st, now)
	if err != nil {
		return err
	}
	st.TotalDebt = current
	st.LastDecay = now
	return nil
}
