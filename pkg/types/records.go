package types

import "time"

// Domain records returned by providers. Each type declares its own
// field-to-output mapping through JSON tags; nothing is serialized by
// reflection over unexported state.

// FXQuote is the latest price for a currency, metal, or commodity.
type FXQuote struct {
	Symbol      string    `json:"symbol"`
	Institution string    `json:"institution,omitempty"`
	Last        float64   `json:"last"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	UpdateTime  time.Time `json:"update_time"`
}

// Candle is one daily OHLC bar.
type Candle struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// BankRate is one institution's buy/sell quote for a currency.
type BankRate struct {
	Bank     string  `json:"bank"`
	BankName string  `json:"bank_name"`
	Currency string  `json:"currency"`
	Buy      float64 `json:"buy"`
	Sell     float64 `json:"sell"`
	Spread   float64 `json:"spread"`
}

// RateRecord is one central-bank rate observation. Borrowing and Lending are
// pointers because TCMB publishes "-" for sides that do not apply (the policy
// rate has no borrowing leg).
type RateRecord struct {
	Type      string     `json:"type"`
	Date      *time.Time `json:"date,omitempty"`
	Borrowing *float64   `json:"borrowing"`
	Lending   *float64   `json:"lending"`
}

// IndexComponent is one constituent of a BIST index.
type IndexComponent struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// IndexInfo describes one BIST index and its constituent count.
type IndexInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// EurobondRecord is one Turkish sovereign Eurobond row.
type EurobondRecord struct {
	ISIN           string     `json:"isin"`
	Maturity       *time.Time `json:"maturity,omitempty"`
	DaysToMaturity int        `json:"days_to_maturity"`
	Currency       string     `json:"currency"`
	BidPrice       *float64   `json:"bid_price"`
	BidYield       *float64   `json:"bid_yield"`
	AskPrice       *float64   `json:"ask_price"`
	AskYield       *float64   `json:"ask_yield"`
}

// FundRecord is one TEFAS fund price observation.
type FundRecord struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Date      time.Time `json:"date"`
	DailyPct  float64   `json:"daily_pct"`
	Investors int       `json:"investors,omitempty"`
}

// Snapshot is an audit record of one cache-miss fetch, persisted by the
// storage layer. It is not a cache: the in-memory cache is never rebuilt
// from snapshots.
type Snapshot struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Payload   []byte    `json:"payload"`
}
