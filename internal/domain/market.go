package domain

import "swapscout/internal/caip"

// Asset is read-only reference data from the asset catalog.
type Asset struct {
	AssetID         caip.AssetID `json:"asset_id" yaml:"asset_id"`
	ChainID         caip.ChainID `json:"chain_id" yaml:"chain_id"`
	Symbol          string       `json:"symbol" yaml:"symbol"`
	Name            string       `json:"name" yaml:"name"`
	Precision       int32        `json:"precision" yaml:"precision"`
	IsPool          bool         `json:"is_pool,omitempty" yaml:"is_pool"`
	RelatedAssetKey caip.AssetID `json:"related_asset_key,omitempty" yaml:"related_asset_key"`
}

// AssetsByID indexes assets by their CAIP-19 id.
type AssetsByID map[caip.AssetID]Asset

// MarketData is the latest market snapshot for an asset. Numeric fields other
// than the 24h change are decimal strings.
type MarketData struct {
	Price             string  `json:"price"`
	MarketCap         string  `json:"market_cap"`
	Volume            string  `json:"volume"`
	ChangePercent24Hr float64 `json:"change_percent_24hr"`
	SupplyCirculating string  `json:"supply,omitempty"`
	MaxSupply         string  `json:"max_supply,omitempty"`
}

// ZeroMarketData is the documented default for assets without market data (NFTs).
func ZeroMarketData() MarketData {
	return MarketData{
		Price:             "0",
		MarketCap:         "0",
		Volume:            "0",
		ChangePercent24Hr: 0,
	}
}

// MarketCapResult maps asset ids to their market data.
type MarketCapResult map[caip.AssetID]MarketData

// HistoryPoint is one price sample; Date is unix milliseconds.
type HistoryPoint struct {
	Date  int64   `json:"date"`
	Price float64 `json:"price"`
}

// HistoryTimeframe selects the span of a price history query.
type HistoryTimeframe string

const (
	TimeframeHour  HistoryTimeframe = "1H"
	TimeframeDay   HistoryTimeframe = "24H"
	TimeframeWeek  HistoryTimeframe = "1W"
	TimeframeMonth HistoryTimeframe = "1M"
	TimeframeYear  HistoryTimeframe = "1Y"
	TimeframeAll   HistoryTimeframe = "All"
)

// SupportedTimeframes lists the accepted history timeframes.
var SupportedTimeframes = []HistoryTimeframe{
	TimeframeHour, TimeframeDay, TimeframeWeek, TimeframeMonth, TimeframeYear, TimeframeAll,
}

// IsValid reports whether tf is one of SupportedTimeframes.
func (tf HistoryTimeframe) IsValid() bool {
	for _, s := range SupportedTimeframes {
		if s == tf {
			return true
		}
	}
	return false
}

// Days converts the timeframe to a whole number of days, 0 meaning "max".
func (tf HistoryTimeframe) Days() int {
	switch tf {
	case TimeframeHour, TimeframeDay:
		return 1
	case TimeframeWeek:
		return 7
	case TimeframeMonth:
		return 30
	case TimeframeYear:
		return 365
	default:
		return 0
	}
}

// SortKey orders a FindAll result set.
type SortKey string

const (
	SortMarketCapDesc SortKey = "market_cap_desc"
	SortVolumeDesc    SortKey = "volume_desc"
)

// FindAllArgs bounds a FindAll query.
type FindAllArgs struct {
	Count int `json:"count"`
	Page  int `json:"page"`
}
