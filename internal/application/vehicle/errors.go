package vehicle

import "stocktochain-backend/internal/pkg/apperror"

// Every rejected operation returns one of these, possibly wrapped.
var (
	ErrNotOwner = apperror.New(apperror.KindAuthorization, "NOT_OWNER", "Caller is not the owner")

	ErrInvalidTransition   = apperror.New(apperror.KindState, "INVALID_WORKFLOW_TRANSITION", "Invalid workflow transition")
	ErrSaleNotActive       = apperror.New(apperror.KindState, "SALE_NOT_ACTIVE", "Sale is not active")
	ErrBuybackNotActive    = apperror.New(apperror.KindState, "BUYBACK_NOT_ACTIVE", "Buyback not active")
	ErrBuybackBegun        = apperror.New(apperror.KindState, "BUYBACK_ALREADY_STARTED", "Buyback price is already fixed")
	ErrBuybackFinalized    = apperror.New(apperror.KindState, "BUYBACK_FINALIZED", "Buyback is already finalized")
	ErrPaused              = apperror.New(apperror.KindState, "PAUSED", "Operations are paused")
	ErrNotPaused           = apperror.New(apperror.KindState, "NOT_PAUSED", "Operations are not paused")
	ErrRoundInProgress     = apperror.New(apperror.KindState, "PROFIT_ROUND_IN_PROGRESS", "Previous profit distribution is not finished")
	ErrRoundCompleted      = apperror.New(apperror.KindState, "PROFIT_ROUND_COMPLETED", "Profit distribution is already finished")
	ErrStateNotInitialized = apperror.New(apperror.KindInternal, "STATE_NOT_INITIALIZED", "Vehicle state is not initialized")

	ErrNotWhitelisted    = apperror.New(apperror.KindValidation, "NOT_WHITELISTED", "Address not whitelisted")
	ErrZeroUnits         = apperror.New(apperror.KindValidation, "ZERO_AMOUNT", "Amount must be greater than 0")
	ErrExceedsMaxSupply  = apperror.New(apperror.KindValidation, "EXCEEDS_MAX_SUPPLY", "Exceeds total supply")
	ErrNoProfits         = apperror.New(apperror.KindValidation, "NO_PROFITS_TO_DISTRIBUTE", "No profits to distribute")
	ErrNothingToClaim    = apperror.New(apperror.KindValidation, "NO_PROFITS_TO_CLAIM", "No profits to claim")
	ErrInvalidRange      = apperror.New(apperror.KindValidation, "INVALID_INDEX_RANGE", "Invalid index range")
	ErrZeroAddress       = apperror.New(apperror.KindValidation, "ZERO_ADDRESS", "Zero address is not allowed")
	ErrZeroValue         = apperror.New(apperror.KindValidation, "ZERO_VALUE", "Receive: Zero value")
	ErrOwnToken          = apperror.New(apperror.KindValidation, "CANNOT_WITHDRAW_OWN_TOKEN", "Cannot withdraw contract's own token")
	ErrInvalidAsset      = apperror.New(apperror.KindValidation, "INVALID_ASSET", "Asset identifier is not accepted here")
	ErrNothingToWithdraw = apperror.New(apperror.KindValidation, "NOTHING_TO_WITHDRAW", "No balance to withdraw")

	ErrInsufficientPayment = apperror.New(apperror.KindFunds, "INSUFFICIENT_PAYMENT", "Insufficient payment")
	ErrInsufficientFunds   = apperror.New(apperror.KindFunds, "INSUFFICIENT_BUYBACK_FUNDS", "Insufficient funds for buyback")

	ErrNoCirculation     = apperror.New(apperror.KindInvariant, "NO_TOKENS_IN_CIRCULATION", "No tokens in circulation")
	ErrNoTokensToBuyBack = apperror.New(apperror.KindInvariant, "NO_TOKENS_TO_BUY_BACK", "No tokens to buy back")
	ErrAmountOverflow    = apperror.New(apperror.KindInvariant, "AMOUNT_OVERFLOW", "Amount overflows 256 bits")

	ErrProfitsLocked = apperror.New(apperror.KindTimelock, "PROFITS_LOCKED", "Must wait for the lock period before claiming profits")

	ErrInvestorNotFound = apperror.New(apperror.KindNotFound, "INVESTOR_NOT_FOUND", "Investor not found")
	ErrRoundNotFound    = apperror.New(apperror.KindNotFound, "PROFIT_ROUND_NOT_FOUND", "Profit round not found")
)
