package bond

import "olympuspro/core/decimal"

// PendingPayout returns the linearly vested part of info at now, never more
// than the outstanding payout.
func PendingPayout(info *BondInfo, now uint64) (decimal.Uint, error) {
	if info == nil {
		return decimal.ZeroUint(), nil
	}
	elapsed := elapsedSince(info.LastTime, now)
	if info.Vesting == 0 || elapsed >= info.Vesting {
		return info.Payout, nil
	}
	pending, err := info.Payout.MulRatio(decimal.NewUint(elapsed), decimal.NewUint(info.Vesting))
	if err != nil {
		return decimal.Uint{}, err
	}
	return pending.Min(info.Payout), nil
}

// vest releases the pending payout from info. It reports the released amount
// and whether the position is fully redeemed.
func vest(info *BondInfo, now uint64) (decimal.Uint, bool, error) {
	pending, err := PendingPayout(info, now)
	if err != nil {
		return decimal.Uint{}, false, err
	}
	if pending.IsZero() {
		return decimal.Uint{}, false, ErrNothingToRedeem
	}
	remaining, err := info.Payout.Sub(pending)
	if err != nil {
		return decimal.Uint{}, false, err
	}
	if remaining.IsZero() {
		info.Payout = remaining
		return pending, true, nil
	}
	elapsed := elapsedSince(info.LastTime, now)
	info.Payout = remaining
	info.Vesting -= elapsed
	info.LastTime = now
	return pending, false, nil
}
