package rmath

import (
	"rtoken/pkg/number"

	"github.com/shopspring/decimal"
)

var (
	// One one whole unit
	One = decimal.NewFromInt(1)
)

// SplitRevenue split amount between the rsr and rtoken traders
// to_rsr = floor(amount * rsr_total / (rsr_total + rtoken_total))
// to_rtoken = amount - to_rsr
func SplitRevenue(amount decimal.Decimal, rsrTotal, rTokenTotal uint64) (toRSR, toRToken decimal.Decimal) {
	total := rsrTotal + rTokenTotal
	if total == 0 || amount.Sign() <= 0 {
		return decimal.Zero, decimal.Zero
	}

	toRSR = ShareOf(amount, rsrTotal, total)
	return toRSR, amount.Sub(toRSR)
}

// ShareOf floor(amount * share / total)
func ShareOf(amount decimal.Decimal, share, total uint64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}

	return number.MulDiv(amount, decimal.NewFromInt(int64(share)), decimal.NewFromInt(int64(total)))
}

// SellAmount amount sold in one auction
// sell_amount = min(balance, max_trade_volume / sell_price)
func SellAmount(balance, maxTradeVolume, sellPrice decimal.Decimal) decimal.Decimal {
	if sellPrice.Sign() <= 0 {
		return decimal.Zero
	}

	return decimal.Min(balance, number.Div(maxTradeVolume, sellPrice))
}

// BuyAmount buy tokens worth the sold tokens
// buy_amount = floor(sell_amount * sell_price / buy_price)
func BuyAmount(sellAmount, sellPrice, buyPrice decimal.Decimal) decimal.Decimal {
	return number.MulDiv(sellAmount, sellPrice, buyPrice)
}

// MinBuyAmount buy amount tolerating the max slippage
// min_buy = buy_amount - floor(buy_amount * slippage)
func MinBuyAmount(sellAmount, sellPrice, buyPrice, slippage decimal.Decimal) decimal.Decimal {
	buy := BuyAmount(sellAmount, sellPrice, buyPrice)
	return buy.Sub(number.Floor(buy.Mul(slippage)))
}

// IsDust value of amount below the min trade volume
func IsDust(amount, price, minTradeVolume decimal.Decimal) bool {
	return amount.Mul(price).LessThan(minTradeVolume)
}

// MintAmount rtoken minted for baskets held above baskets needed, keeping rtoken per basket
// mint = floor(supply * (held - needed) / needed)
func MintAmount(supply, held, needed decimal.Decimal) decimal.Decimal {
	if needed.Sign() <= 0 || held.LessThanOrEqual(needed) {
		return decimal.Zero
	}

	return number.MulDiv(supply, held.Sub(needed), needed)
}

// RTokenPrice rtoken_price = basket_price * baskets_needed / supply
func RTokenPrice(basketPrice, basketsNeeded, supply decimal.Decimal) decimal.Decimal {
	if supply.Sign() <= 0 {
		return basketPrice
	}

	return number.MulDiv(basketPrice, basketsNeeded, supply)
}

// Quantity tokens per basket unit, quantity = ceil(ref_amt / ref_per_tok)
func Quantity(refAmt, refPerTok decimal.Decimal) decimal.Decimal {
	if refPerTok.Sign() <= 0 {
		return decimal.Zero
	}

	return number.DivCeil(refAmt, refPerTok)
}

// BasketsHeld baskets covered by balance, floor(balance / quantity)
func BasketsHeld(balance, quantity decimal.Decimal) decimal.Decimal {
	if quantity.Sign() <= 0 {
		return decimal.Zero
	}

	return number.Div(balance, quantity)
}

// MeltAmount rtoken melted after periods elapsed
// melt = balance * (1 - (1 - ratio) ^ periods)
func MeltAmount(balance, ratio decimal.Decimal, periods int64) decimal.Decimal {
	if periods <= 0 || ratio.Sign() <= 0 || balance.Sign() <= 0 {
		return decimal.Zero
	}

	if ratio.GreaterThanOrEqual(One) {
		return balance
	}

	left := balance
	keep := One.Sub(ratio)
	for i := int64(0); i < periods && left.Sign() > 0; i++ {
		left = number.Floor(left.Mul(keep))
	}

	return balance.Sub(left)
}
