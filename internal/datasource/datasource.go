// Package datasource implements the market data collaborators consumed by
// the contrarian pipeline: Yahoo Finance for the base record, Finviz for
// short interest, and Reddit plus StockTwits for retail chatter.
package datasource

import (
	"errors"
	"strings"
)

// ErrNoData means the source answered but had nothing for the ticker.
var ErrNoData = errors.New("no data")

const (
	DefaultYahooURL      = "https://query2.finance.yahoo.com"
	DefaultFinvizURL     = "https://finviz.com"
	DefaultRedditAuthURL = "https://www.reddit.com"
	DefaultRedditAPIURL  = "https://oauth.reddit.com"
	DefaultStockTwitsURL = "https://api.stocktwits.com/api/2"
)

// yahooSymbol converts class-share tickers (BRK.B) to Yahoo's form (BRK-B).
func yahooSymbol(ticker string) string {
	return strings.ReplaceAll(strings.ToUpper(ticker), ".", "-")
}
