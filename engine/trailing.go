package engine

import (
	"strconv"

	"github.com/evdnx/execsim/bar"
	"github.com/evdnx/execsim/fill"
	"github.com/evdnx/execsim/metrics"
	"github.com/evdnx/execsim/order"
	"github.com/evdnx/execsim/result"
	"github.com/evdnx/execsim/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)
var one = decimal.NewFromInt(1)

// nextStop computes the trailing-stop trigger from a new extreme price,
// using whichever of trailingDistance/trailingPercent the order carries
// (§3 invariant: exactly one is set).
func nextStop(ord *order.Order, extreme decimal.Decimal) decimal.Decimal {
	isBuy := ord.Action == types.Buy
	if ord.TrailingDistance != nil {
		if isBuy {
			return extreme.Add(*ord.TrailingDistance)
		}
		return extreme.Sub(*ord.TrailingDistance)
	}
	factor := (*ord.TrailingPercent).Div(hundred)
	if isBuy {
		return extreme.Mul(one.Add(factor))
	}
	return extreme.Mul(one.Sub(factor))
}

// fillTrailing implements §4.4: the four(+1)-fragment intra-bar walk that
// ratchets (extremePrice, stopPrice) and decides whether this bar triggers
// the stop. It mutates ord.ExtremePrice/ord.StopPrice in place regardless
// of outcome, so the caller's pending copy (same *Order) carries the
// updated state into the next bar.
func (e *Engine) fillTrailing(ord *order.Order, b bar.Bar, parentID int64) (result.ExecutionResult, error) {
	initialized := ord.ExtremePrice != nil

	var extreme, stop decimal.Decimal
	if initialized {
		extreme = *ord.ExtremePrice
		stop = ord.StopPrice
	}

	frags := b.Fragments()
	seq := make([]decimal.Decimal, 0, 5)
	if initialized {
		seq = append(seq, extreme)
	}
	seq = append(seq, frags[0], frags[1], frags[2], frags[3])

	var triggered bool
	var fillPrice decimal.Decimal
	var prev decimal.Decimal
	var havePrev bool

	for _, p := range seq {
		switch {
		case !initialized:
			extreme = p
			stop = nextStop(ord, extreme)
			initialized = true

		case ord.Action == types.Buy && p.LessThanOrEqual(extreme):
			extreme = p
			stop = nextStop(ord, extreme)

		case ord.Action == types.Sell && p.GreaterThanOrEqual(extreme):
			extreme = p
			stop = nextStop(ord, extreme)

		case ord.Action == types.Buy && p.GreaterThanOrEqual(stop):
			if havePrev && prev.LessThan(stop) {
				fillPrice = stop
			} else {
				fillPrice = p
			}
			triggered = true

		case ord.Action == types.Sell && p.LessThanOrEqual(stop):
			if havePrev && prev.GreaterThan(stop) {
				fillPrice = stop
			} else {
				fillPrice = p
			}
			triggered = true
		}

		if triggered {
			break
		}
		prev = p
		havePrev = true
	}

	// Persist the ratcheted state regardless of trigger outcome — it
	// must survive into the next bar via the pending order instance.
	extremeCopy := extreme
	ord.ExtremePrice = &extremeCopy
	ord.StopPrice = stop
	stopFloat, _ := stop.Float64()
	metrics.TrailingStopPriceGauge.WithLabelValues(strconv.FormatInt(ord.ID, 10)).Set(stopFloat)

	if !triggered {
		return result.ExecutionResult{}, nil
	}

	f := fill.New(ord, b.Date, fillPrice, parentID)
	e.recordFill(ord, f)
	metrics.TrailingTriggersTotal.WithLabelValues(string(ord.Action)).Inc()
	return result.ExecutionResult{Fills: []fill.Fill{f}}, nil
}
