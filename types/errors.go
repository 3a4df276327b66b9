package types

import "errors"

// Every failure aborts the whole operation with no partial state change;
// callers decide whether to retry.
var (
	// ErrNotAuthorized: the caller lacks module approval, asset-level
	// transfer rights, or an admin role.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrPriceTooLow: a listing price or auction reserve is below the
	// resolved floor for the (collection, currency) pair.
	ErrPriceTooLow = errors.New("price too low")

	// ErrNotEnoughTokens: the seller's available balance cannot cover the
	// requested quantity plus outstanding listings.
	ErrNotEnoughTokens = errors.New("not enough tokens")

	// ErrMinimumBidNotMet: a bid fails to meet the reserve or to exceed
	// the standing bid by the required margin.
	ErrMinimumBidNotMet = errors.New("minimum bid not met")

	// ErrAuctionNotActive: the auction does not exist, has not started,
	// has ended, or is already terminal.
	ErrAuctionNotActive = errors.New("auction not active")

	// ErrBuyNowNotActive: buy-now is disabled, already triggered, the
	// auction is not accepting bids, or the amount is below the buy-now
	// price.
	ErrBuyNowNotActive = errors.New("buy now not active")

	// ErrInsufficientBalance: the underlying ledger cannot satisfy a
	// transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrStaleTerms: a fill's price or currency does not exactly match
	// the stored listing.
	ErrStaleTerms = errors.New("terms do not match listing")
)
