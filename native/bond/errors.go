package bond

import "errors"

var (
	ErrOnlySubsidyController = errors.New("only subsidy controller")
	ErrInvalidCW20Token      = errors.New("invalid cw20 token")
	ErrInvalidDenom          = errors.New("invalid denom received")
	ErrTokenPrincipal        = errors.New("not support cw20 token")
	ErrVestingTooShort       = errors.New("vesting must be longer than 36 hours")
	ErrPayoutAboveOnePercent = errors.New("payout cannot be above 1 percent")
	ErrIncrementTooLarge     = errors.New("increment too large")
	ErrDebtNotZero           = errors.New("debt must be 0 for initialization")
	ErrTierLengthMismatch    = errors.New("tier length and fee length not the same")
	ErrSlippageLimit         = errors.New("slippage limit: more than max price")
	ErrBondTooSmall          = errors.New("bond too small")
	ErrBondTooLarge          = errors.New("bond too large")
	ErrMaxCapacity           = errors.New("max capacity reached")
	ErrNothingToRedeem       = errors.New("nothing to redeem")
	ErrBondNotInitialized    = errors.New("bond not initialized")

	errNilState       = errors.New("bond engine: state not configured")
	errNilQuerier     = errors.New("bond engine: querier not configured")
	errConfigNotFound = errors.New("bond engine: config not found")
	errStateNotFound  = errors.New("bond engine: state not found")
	errZeroSupply     = errors.New("bond engine: payout supply is zero")
	errInvalidHook    = errors.New("bond engine: unknown receive hook")
)
