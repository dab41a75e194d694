// Package bar implements the immutable OHLCV bar that the execution engine
// decides fills against.
package bar

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidBar is returned by New when the OHLC invariants don't hold or the
// date is zero.
var ErrInvalidBar = errors.New("bar: invalid OHLC data")

// Bar is an immutable OHLCV price bar. Zero value is not valid; always
// construct through New.
type Bar struct {
	Date   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// New validates the OHLC relationships (high must dominate, low must be
// dominated) and returns a Bar, or ErrInvalidBar with detail.
func New(date time.Time, open, high, low, close decimal.Decimal, volume int64) (Bar, error) {
	if date.IsZero() {
		return Bar{}, fmt.Errorf("%w: date is zero", ErrInvalidBar)
	}
	b := Bar{Date: date, Open: open, High: high, Low: low, Close: close, Volume: volume}
	if err := b.validate(); err != nil {
		return Bar{}, err
	}
	return b, nil
}

func (b Bar) validate() error {
	if b.High.LessThan(b.Low) {
		return fmt.Errorf("%w: high (%s) < low (%s)", ErrInvalidBar, b.High, b.Low)
	}
	if b.High.LessThan(b.Open) {
		return fmt.Errorf("%w: high (%s) < open (%s)", ErrInvalidBar, b.High, b.Open)
	}
	if b.High.LessThan(b.Close) {
		return fmt.Errorf("%w: high (%s) < close (%s)", ErrInvalidBar, b.High, b.Close)
	}
	if b.Low.GreaterThan(b.Open) {
		return fmt.Errorf("%w: low (%s) > open (%s)", ErrInvalidBar, b.Low, b.Open)
	}
	if b.Low.GreaterThan(b.Close) {
		return fmt.Errorf("%w: low (%s) > close (%s)", ErrInvalidBar, b.Low, b.Close)
	}
	return nil
}

// IsBullish reports whether close > open — the polarity that decides which
// of the two fragment-walk orderings the trailing-stop decider uses.
func (b Bar) IsBullish() bool {
	return b.Close.GreaterThan(b.Open)
}

// Displace returns the "modified bar" a child order sees once its parent has
// filled at price: the open is rewritten to the fill price and the extremes
// are widened (never narrowed) so the bar stays internally consistent. The
// close is preserved verbatim.
func (b Bar) Displace(price decimal.Decimal) Bar {
	return Bar{
		Date:   b.Date,
		Open:   price,
		High:   decimal.Max(price, b.High),
		Low:    decimal.Min(price, b.Low),
		Close:  b.Close,
		Volume: b.Volume,
	}
}

// Fragments returns the four-price intra-bar path assumed by the
// trailing-stop walk: open, low, high, close on a bullish bar (close >
// open), open, high, low, close otherwise.
func (b Bar) Fragments() [4]decimal.Decimal {
	if b.IsBullish() {
		return [4]decimal.Decimal{b.Open, b.Low, b.High, b.Close}
	}
	return [4]decimal.Decimal{b.Open, b.High, b.Low, b.Close}
}
