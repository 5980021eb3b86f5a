package markets

import "time"

// Platform identifies the venue a market is listed on.
type Platform string

const (
	PlatformPolymarket Platform = "polymarket"
	PlatformKalshi     Platform = "kalshi"
)

// Category is the coarse topic taxonomy shared across platforms.
type Category string

const (
	CategoryPolitics Category = "POLITICS"
	CategoryCrypto   Category = "CRYPTO"
	CategorySports   Category = "SPORTS"
	CategoryFinance  Category = "FINANCE"
	CategoryScience  Category = "SCIENCE"
	CategoryOther    Category = "OTHER"
)

// Status is the lifecycle state reported by a platform.
type Status string

const (
	StatusOpen     Status = "open"
	StatusClosed   Status = "closed"
	StatusResolved Status = "resolved"
)

// Side selects one of a binary market's outcomes.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Market is a normalized listing produced by a platform collector.
// Category, CloseTime, prices, and Liquidity are optional: collectors leave
// them nil when the platform does not report them, and the matching engine
// falls back to neutral scores instead of guessing.
type Market struct {
	ID        string     `json:"id"`
	Platform  Platform   `json:"platform"`
	Question  string     `json:"question"`
	Category  *Category  `json:"category,omitempty"`
	CloseTime *time.Time `json:"close_time,omitempty"`
	YesPrice  *float64   `json:"yes_price,omitempty"`
	NoPrice   *float64   `json:"no_price,omitempty"`
	Liquidity *float64   `json:"liquidity,omitempty"`
	Status    Status     `json:"status,omitempty"`
}

// Price returns the market's price for the given side, or nil when the
// platform reported none.
func (m *Market) Price(side Side) *float64 {
	if m == nil {
		return nil
	}
	switch side {
	case SideYes:
		return m.YesPrice
	case SideNo:
		return m.NoPrice
	default:
		return nil
	}
}

// Key returns the platform-qualified identifier used by caches and stores.
func (m *Market) Key() string {
	if m == nil {
		return ""
	}
	return string(m.Platform) + ":" + m.ID
}
