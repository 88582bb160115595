package entities

import (
	"time"
)

// MarketQuote is an opaque price snapshot from the external odds feed.
// The core does not interpret it beyond attaching it to wager creation as
// a reference price.
type MarketQuote struct {
	MarketID string    `json:"market_id"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	Odds     int       `json:"odds"`
	QuotedAt time.Time `json:"quoted_at"`
	Source   string    `json:"source"`
}
