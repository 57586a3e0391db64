package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100002
	// ErrInsufficientBalance balance too low for the transfer
	ErrInsufficientBalance ErrorCode = 100003

	// ErrAssetAlreadyRegistered duplicated token
	ErrAssetAlreadyRegistered ErrorCode = 100100
	// ErrAssetNotRegistered unknown token
	ErrAssetNotRegistered ErrorCode = 100101
	// ErrNotCollateral token registered as plain asset
	ErrNotCollateral ErrorCode = 100102
	// ErrDefaultThresholdZero invalid collateral config
	ErrDefaultThresholdZero ErrorCode = 100103
	// ErrRefPerTokThresholdTooLow invalid collateral config
	ErrRefPerTokThresholdTooLow ErrorCode = 100104
	// ErrInvalidCollateralConfig other collateral config errors
	ErrInvalidCollateralConfig ErrorCode = 100105
	// ErrIllegalStatusTransition leaving DISABLED
	ErrIllegalStatusTransition ErrorCode = 100106
	// ErrPriceUnavailable oracle failed or stale
	ErrPriceUnavailable ErrorCode = 100107
	// ErrInvalidPrice non-positive price
	ErrInvalidPrice ErrorCode = 100108

	// ErrInvalidBasket malformed prime basket or backup config
	ErrInvalidBasket ErrorCode = 100200
	// ErrBasketUnset no basket selected yet
	ErrBasketUnset ErrorCode = 100201

	// ErrFurnaceGetsRSR furnace must get 0% of RSR
	ErrFurnaceGetsRSR ErrorCode = 100300
	// ErrStRSRGetsRToken strsr must get 0% of RToken
	ErrStRSRGetsRToken ErrorCode = 100301
	// ErrRSRDistributionTooHigh rsr share above max
	ErrRSRDistributionTooHigh ErrorCode = 100302
	// ErrRTokenDistributionTooHigh rtoken share above max
	ErrRTokenDistributionTooHigh ErrorCode = 100303
	// ErrDistributeToken only RSR or RToken can be distributed
	ErrDistributeToken ErrorCode = 100304
	// ErrNothingToDistribute totals are zero for the token
	ErrNothingToDistribute ErrorCode = 100305
	// ErrEmptyDistribution both totals zero
	ErrEmptyDistribution ErrorCode = 100306

	// ErrTradeAlreadyOpen one open trade per trader and sell token
	ErrTradeAlreadyOpen ErrorCode = 100400
	// ErrAuctionBelowMinimum clearing price below the trade's minimum
	ErrAuctionBelowMinimum ErrorCode = 100401
	// ErrAuctionNotFound unknown auction id
	ErrAuctionNotFound ErrorCode = 100402
	// ErrAuctionNotEnded settle before end time
	ErrAuctionNotEnded ErrorCode = 100403
	// ErrAuctionClosed bid or settle on a settled auction
	ErrAuctionClosed ErrorCode = 100404
	// ErrInvalidBid bid with wrong token amounts
	ErrInvalidBid ErrorCode = 100405
)

var errorMessages = map[ErrorCode]string{
	ErrUnknown:                   "unknown",
	ErrOperationForbidden:        "operation forbidden",
	ErrInvalidAmount:             "invalid amount",
	ErrInsufficientBalance:       "insufficient balance",
	ErrAssetAlreadyRegistered:    "asset already registered",
	ErrAssetNotRegistered:        "asset not registered",
	ErrNotCollateral:             "token is not collateral",
	ErrDefaultThresholdZero:      "defaultThreshold zero",
	ErrRefPerTokThresholdTooLow:  "refPerTokThreshold minimum 1",
	ErrInvalidCollateralConfig:   "invalid collateral config",
	ErrIllegalStatusTransition:   "illegal collateral status transition",
	ErrPriceUnavailable:          "price unavailable",
	ErrInvalidPrice:              "invalid price",
	ErrInvalidBasket:             "invalid basket",
	ErrBasketUnset:               "basket unset",
	ErrFurnaceGetsRSR:            "Furnace must get 0% of RSR",
	ErrStRSRGetsRToken:           "StRSR must get 0% of RToken",
	ErrRSRDistributionTooHigh:    "RSR distribution too high",
	ErrRTokenDistributionTooHigh: "RToken distribution too high",
	ErrDistributeToken:           "RSR or RToken",
	ErrNothingToDistribute:       "nothing to distribute",
	ErrEmptyDistribution:         "no revenue destination",
	ErrTradeAlreadyOpen:          "trade already open",
	ErrAuctionBelowMinimum:       "auction cleared below minimum",
	ErrAuctionNotFound:           "auction not found",
	ErrAuctionNotEnded:           "auction not ended",
	ErrAuctionClosed:             "auction closed",
	ErrInvalidBid:                "invalid bid",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}

	return e.String()
}
