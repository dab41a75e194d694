package engine

import (
	"github.com/evdnx/execsim/bar"
	"github.com/evdnx/execsim/fill"
	"github.com/evdnx/execsim/order"
	"github.com/evdnx/execsim/result"
	"github.com/evdnx/execsim/types"
	"github.com/shopspring/decimal"
)

// fillMarket always fills at the bar's open (§4.2 Market).
func (e *Engine) fillMarket(ord *order.Order, b bar.Bar, parentID int64) result.ExecutionResult {
	f := fill.New(ord, b.Date, b.Open, parentID)
	e.recordFill(ord, f)
	return result.ExecutionResult{Fills: []fill.Fill{f}}
}

// fillLimit implements §4.2 Limit: a Buy fills when the bar dips to or
// below the limit, at whichever of (open, limit) is more favorable to the
// buyer (lower); a Sell is the mirror image.
func (e *Engine) fillLimit(ord *order.Order, b bar.Bar, parentID int64) result.ExecutionResult {
	var price decimal.Decimal
	switch ord.Action {
	case types.Buy:
		if b.Low.GreaterThan(ord.LimitPrice) {
			return result.ExecutionResult{}
		}
		price = decimal.Min(b.Open, ord.LimitPrice)
	case types.Sell:
		if b.High.LessThan(ord.LimitPrice) {
			return result.ExecutionResult{}
		}
		price = decimal.Max(b.Open, ord.LimitPrice)
	}
	f := fill.New(ord, b.Date, price, parentID)
	e.recordFill(ord, f)
	return result.ExecutionResult{Fills: []fill.Fill{f}}
}

// fillStop implements §4.2 Stop: trigger-on-adverse-move then fill at
// market, in the same step. It also serves as the parent half of
// StopLimit, whose child Limit then runs against the modified bar via the
// normal recursion in Execute.
func (e *Engine) fillStop(ord *order.Order, b bar.Bar, parentID int64) result.ExecutionResult {
	var price decimal.Decimal
	switch ord.Action {
	case types.Buy:
		if b.High.LessThan(ord.StopPrice) {
			return result.ExecutionResult{}
		}
		price = decimal.Max(b.Open, ord.StopPrice)
	case types.Sell:
		if b.Low.GreaterThan(ord.StopPrice) {
			return result.ExecutionResult{}
		}
		price = decimal.Min(b.Open, ord.StopPrice)
	}
	f := fill.New(ord, b.Date, price, parentID)
	e.recordFill(ord, f)
	return result.ExecutionResult{Fills: []fill.Fill{f}}
}
