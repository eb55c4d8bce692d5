package tradequote

import (
	"errors"
	"fmt"
	"strings"

	"swapscout/internal/domain"
	"swapscout/internal/fees"
	"swapscout/internal/swapper"

	"github.com/shopspring/decimal"
)

var ErrMissingSellAccountNumber = errors.New("sell account number is required for a quote")

// Inputs are the user-controlled values a quote request depends on. Any
// change is pushed through Engine.Update.
type Inputs struct {
	SellAsset                          domain.Asset        `json:"sell_asset"`
	BuyAsset                           domain.Asset        `json:"buy_asset"`
	SellAmountCryptoPrecision          decimal.Decimal     `json:"sell_amount_crypto_precision"`
	SellAssetUsdRate                   decimal.Decimal     `json:"sell_asset_usd_rate"`
	SlippageTolerancePercentageDecimal string              `json:"slippage_tolerance_percentage_decimal,omitempty"`
	SellAccountID                      string              `json:"sell_account_id,omitempty"`
	SellAccountNumber                  *int                `json:"sell_account_number,omitempty"`
	SellAccountType                    string              `json:"sell_account_type,omitempty"`
	ReceiveAccountNumber               *int                `json:"receive_account_number,omitempty"`
	SendAddress                        string              `json:"send_address,omitempty"`
	ReceiveAddress                     string              `json:"receive_address,omitempty"`
	FoxVotingPower                     decimal.Decimal     `json:"fox_voting_power"`
	ThorVotingPower                    decimal.Decimal     `json:"thor_voting_power"`
	VotingPowerPending                 bool                `json:"voting_power_pending"`
	IsLedger                           bool                `json:"is_ledger"`
	QuoteOrRate                        swapper.QuoteOrRate `json:"quote_or_rate,omitempty"`
}

func (in Inputs) kind() swapper.QuoteOrRate {
	if in.QuoteOrRate == "" {
		return swapper.KindQuote
	}
	return in.QuoteOrRate
}

// SellAmountUsd is the trade size in USD, or "" without a USD rate.
func (in Inputs) SellAmountUsd() string {
	if !in.SellAssetUsdRate.IsPositive() {
		return ""
	}
	return in.SellAmountCryptoPrecision.Mul(in.SellAssetUsdRate).String()
}

// BuildInput turns Inputs into the request every swapper receives. skip is
// true when the request cannot be made yet (zero amount, no sell account or
// receive address, voting power still loading); err is set for inputs that
// can never produce a firm quote.
func BuildInput(calc *fees.Calculator, in Inputs) (input swapper.GetTradeQuoteInput, skip bool, err error) {
	kind := in.kind()
	if !in.SellAmountCryptoPrecision.IsPositive() {
		return input, true, nil
	}
	if kind == swapper.KindQuote && (in.SellAccountID == "" || in.ReceiveAddress == "" || in.VotingPowerPending) {
		return input, true, nil
	}

	result, err := calc.CalculateFees(fees.Input{
		TradeAmountUsd: in.SellAssetUsdRate.Mul(in.SellAmountCryptoPrecision),
		FoxHeld:        in.FoxVotingPower,
		ThorHeld:       in.ThorVotingPower,
		FeeModel:       fees.ModelSwapper,
	})
	if err != nil {
		return input, false, fmt.Errorf("calculate fees: %w", err)
	}

	if kind == swapper.KindQuote && in.SellAccountNumber == nil {
		return input, false, ErrMissingSellAccountNumber
	}

	input = swapper.GetTradeQuoteInput{
		SellAsset:                          in.SellAsset,
		BuyAsset:                           in.BuyAsset,
		SellAccountNumber:                  in.SellAccountNumber,
		ReceiveAccountNumber:               in.ReceiveAccountNumber,
		SendAddress:                        in.SendAddress,
		ReceiveAddress:                     in.ReceiveAddress,
		AllowMultiHop:                      true,
		AffiliateBps:                       result.AffiliateBps(),
		PotentialAffiliateBps:              result.PotentialAffiliateBps(),
		SlippageTolerancePercentageDecimal: in.SlippageTolerancePercentageDecimal,
		QuoteOrRate:                        kind,
	}
	input.SellAmountIncludingProtocolFeesCryptoBaseUnit = swapper.ToBaseUnit(in.SellAmountCryptoPrecision, in.SellAsset.Precision)
	if in.IsLedger && in.SellAccountID != "" {
		input.PubKey = accountFromAccountID(in.SellAccountID)
	}
	return input, false, nil
}

// accountFromAccountID strips the chain id from a "<chainId>:<account>" id.
func accountFromAccountID(accountID string) string {
	if i := strings.LastIndex(accountID, ":"); i >= 0 {
		return accountID[i+1:]
	}
	return accountID
}
