package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evdnx/execsim/bar"
	"github.com/evdnx/execsim/order"
	"github.com/evdnx/execsim/result"
	"github.com/evdnx/execsim/types"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func mustBar(t *testing.T, open, high, low, close string) bar.Bar {
	t.Helper()
	b, err := bar.New(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), d(open), d(high), d(low), d(close), 1000)
	if err != nil {
		t.Fatalf("bar.New: %v", err)
	}
	return b
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return NewDefault(nil)
}

// §8 scenario: Market buy fills unconditionally at open.
func TestMarketBuyFillsAtOpen(t *testing.T) {
	e := newEngine(t)
	b := mustBar(t, "148", "152", "147", "150")
	ord, err := order.NewMarket(types.Buy, d("10"))
	if err != nil {
		t.Fatalf("NewMarket: %v", err)
	}
	res, err := e.Execute(context.Background(), ord, b, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Fills) != 1 {
		t.Fatalf("want 1 fill, got %d", len(res.Fills))
	}
	if !res.Fills[0].Execution.Price.Equal(d("148")) {
		t.Errorf("want fill at open 148, got %s", res.Fills[0].Execution.Price)
	}
}

// §8 scenario: Stop buy triggers when High reaches/exceeds stop, fills at
// max(open, stop).
func TestStopBuyTriggersAndFillsAtWorstOfOpenAndStop(t *testing.T) {
	e := newEngine(t)
	b := mustBar(t, "148", "152", "147", "150")
	ord, err := order.NewStop(types.Buy, d("10"), d("151"))
	if err != nil {
		t.Fatalf("NewStop: %v", err)
	}
	res, err := e.Execute(context.Background(), ord, b, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Fills) != 2 {
		t.Fatalf("want 2 fills (stop trigger + market child), got %d", len(res.Fills))
	}
	if !res.Fills[0].Execution.Price.Equal(d("151")) {
		t.Errorf("want fill at stop 151, got %s", res.Fills[0].Execution.Price)
	}
}

func TestStopBuyNoTriggerWhenHighBelowStop(t *testing.T) {
	e := newEngine(t)
	b := mustBar(t, "148", "150", "147", "149")
	ord, err := order.NewStop(types.Buy, d("10"), d("151"))
	if err != nil {
		t.Fatalf("NewStop: %v", err)
	}
	res, err := e.Execute(context.Background(), ord, b, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Fills) != 0 {
		t.Fatalf("want no fill, got %d", len(res.Fills))
	}
	if len(res.PendingOrders) != 1 {
		t.Fatalf("want order to be pending, got %d pending", len(res.PendingOrders))
	}
}

// §8 StopLimit scenario 1: stop triggers, modified bar's open becomes the
// stop fill price 151, and limit 149 is already satisfied by the
// displaced bar (low stays <= 149) so both the stop trigger and the child
// limit fill, producing 2 fills (stop, then limit) — mirroring the
// formation-CSV "complete fill" case.
func TestStopLimitBuyTriggersAndChildFillsAtFavorableLimit(t *testing.T) {
	e := newEngine(t)
	b := mustBar(t, "148", "152", "145", "150")
	ord, err := order.NewStopLimit(types.Buy, d("10"), d("149"), d("151"))
	if err != nil {
		t.Fatalf("NewStopLimit: %v", err)
	}
	res, err := e.Execute(context.Background(), ord, b, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Fills) != 2 {
		t.Fatalf("want 2 fills (stop trigger + limit), got %d", len(res.Fills))
	}
	if len(res.PendingOrders) != 0 {
		t.Fatalf("want no pending orders after a complete fill, got %d", len(res.PendingOrders))
	}
	if !res.Fills[0].Execution.Price.Equal(d("151")) {
		t.Errorf("want stop trigger fill at 151, got %s", res.Fills[0].Execution.Price)
	}
	if res.Fills[0].ParentID != 0 {
		t.Errorf("want stop trigger parentId 0, got %d", res.Fills[0].ParentID)
	}
	if !res.Fills[1].Execution.Price.Equal(d("149")) {
		t.Errorf("want child fill at limit 149, got %s", res.Fills[1].Execution.Price)
	}
	if res.Fills[1].ParentID != ord.ID {
		t.Errorf("want child fill parentId %d, got %d", ord.ID, res.Fills[1].ParentID)
	}
}

// §8 StopLimit scenario 2: stop triggers at 151 but the limit of 145 can
// never be reached by the displaced bar (whose low never drops to 145) —
// 1 fill (the stop trigger), the child limit order stays pending, status
// is Partial (one fill, one pending order).
func TestStopLimitBuyTriggersButChildStaysPending(t *testing.T) {
	e := newEngine(t)
	b := mustBar(t, "148", "152", "146", "150")
	ord, err := order.NewStopLimit(types.Buy, d("10"), d("145"), d("151"))
	if err != nil {
		t.Fatalf("NewStopLimit: %v", err)
	}
	res, err := e.Execute(context.Background(), ord, b, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Fills) != 1 {
		t.Fatalf("want 1 fill (the stop trigger), got %d", len(res.Fills))
	}
	if len(res.PendingOrders) != 1 {
		t.Fatalf("want the child limit order pending, got %d", len(res.PendingOrders))
	}
	status, err := res.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != result.Partial {
		t.Errorf("want Partial status, got %v", status)
	}
}

// §8 StopLimit scenario 3: neither stop (153) nor the whole bar's high
// (152) crosses — parent never triggers, nothing recurses.
func TestStopLimitBuyNeverTriggersParentStaysPending(t *testing.T) {
	e := newEngine(t)
	b := mustBar(t, "148", "152", "145", "150")
	ord, err := order.NewStopLimit(types.Buy, d("10"), d("156"), d("153"))
	if err != nil {
		t.Fatalf("NewStopLimit: %v", err)
	}
	res, err := e.Execute(context.Background(), ord, b, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Fills) != 0 {
		t.Fatalf("want no fills, got %d", len(res.Fills))
	}
	if len(res.PendingOrders) != 1 || res.PendingOrders[0].ID != ord.ID {
		t.Fatalf("want the parent itself pending, got %+v", res.PendingOrders)
	}
}

// §8 TrailingStopMarket: a buy-side trail with distance 10 initializes its
// extreme/stop on first bar, then triggers on a subsequent bar when price
// rises enough to cross the ratcheted stop.
func TestTrailingStopMarketBuyInitializesThenTriggers(t *testing.T) {
	e := newEngine(t)
	distance := d("10")
	ord, err := order.NewTrailingStopMarket(types.Buy, d("5"), &distance, nil)
	if err != nil {
		t.Fatalf("NewTrailingStopMarket: %v", err)
	}

	first := mustBar(t, "100", "101", "99", "100")
	res, err := e.Execute(context.Background(), ord, first, 0)
	if err != nil {
		t.Fatalf("Execute bar1: %v", err)
	}
	if len(res.Fills) != 0 {
		t.Fatalf("first bar should only initialize, got %d fills", len(res.Fills))
	}
	if ord.ExtremePrice == nil {
		t.Fatal("expected ExtremePrice to be initialized after first bar")
	}

	second := mustBar(t, "105", "112", "104", "111")
	res, err = e.Execute(context.Background(), ord, second, 0)
	if err != nil {
		t.Fatalf("Execute bar2: %v", err)
	}
	if len(res.Fills) != 2 {
		t.Fatalf("want trigger fill + child market fill on second bar, got %d fills", len(res.Fills))
	}
}

// §8 TrailingStopMarket: a sell-side trail ratchets its extreme up to the
// highest price reached on the carried bar, then carries that extreme into
// the next bar without triggering so long as the next bar never dips to
// the ratcheted stop.
func TestTrailingStopMarketSellCarriesExtremeAcrossBars(t *testing.T) {
	e := newEngine(t)
	distance := d("5")
	ord, err := order.NewTrailingStopMarket(types.Sell, d("5"), &distance, nil)
	if err != nil {
		t.Fatalf("NewTrailingStopMarket: %v", err)
	}

	first := mustBar(t, "100", "102", "98", "101")
	if _, err := e.Execute(context.Background(), ord, first, 0); err != nil {
		t.Fatalf("Execute bar1: %v", err)
	}
	extremeAfterFirst := *ord.ExtremePrice
	if !extremeAfterFirst.Equal(d("102")) {
		t.Fatalf("want extreme ratcheted to bar high 102, got %s", extremeAfterFirst)
	}
	if !ord.StopPrice.Equal(d("97")) {
		t.Fatalf("want stop at extreme-distance 97, got %s", ord.StopPrice)
	}

	second := mustBar(t, "99", "100", "98", "99.5")
	res, err := e.Execute(context.Background(), ord, second, 0)
	if err != nil {
		t.Fatalf("Execute bar2: %v", err)
	}
	if len(res.Fills) != 0 {
		t.Fatalf("second bar never reaches the stop, want no fill, got %d fills", len(res.Fills))
	}
	if !ord.ExtremePrice.Equal(d("102")) {
		t.Errorf("extreme should carry unchanged at 102, got %s", *ord.ExtremePrice)
	}
}

func TestTrailingStopLimitDispatchIsNotImplemented(t *testing.T) {
	e := newEngine(t)
	b := mustBar(t, "100", "102", "98", "101")
	distance := d("5")
	ord, err := order.NewTrailingStopLimit(types.Buy, d("5"), d("1"), &distance, nil)
	if err != nil {
		t.Fatalf("NewTrailingStopLimit: %v", err)
	}
	_, err = e.Execute(context.Background(), ord, b, 0)
	if !errors.Is(err, ErrTrailingStopLimitNotImplemented) {
		t.Fatalf("want ErrTrailingStopLimitNotImplemented, got %v", err)
	}
	if !errors.Is(err, result.ErrInvariantViolation) {
		t.Fatalf("want error to also match ErrInvariantViolation, got %v", err)
	}
}

func TestUnsupportedOrderKindIsRejected(t *testing.T) {
	e := newEngine(t)
	b := mustBar(t, "100", "102", "98", "101")
	bogus := &order.Order{ID: 1, Kind: order.Kind(99), Action: types.Buy, Quantity: d("1")}
	_, err := e.Execute(context.Background(), bogus, b, 0)
	if !errors.Is(err, ErrUnsupportedOrderType) {
		t.Fatalf("want ErrUnsupportedOrderType, got %v", err)
	}
}

func TestExecuteHonorsCanceledContext(t *testing.T) {
	e := newEngine(t)
	b := mustBar(t, "100", "102", "98", "101")
	ord, err := order.NewMarket(types.Buy, d("1"))
	if err != nil {
		t.Fatalf("NewMarket: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Execute(ctx, ord, b, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

// Universal invariant: every produced fill price lies within [Low, High]
// of the bar it was decided against (the modified bar for children).
func TestFillPriceAlwaysWithinBarRange(t *testing.T) {
	e := newEngine(t)
	b := mustBar(t, "148", "152", "145", "150")
	ord, err := order.NewStopLimit(types.Buy, d("10"), d("149"), d("151"))
	if err != nil {
		t.Fatalf("NewStopLimit: %v", err)
	}
	res, err := e.Execute(context.Background(), ord, b, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, f := range res.Fills {
		if f.Execution.Price.LessThan(b.Low) || f.Execution.Price.GreaterThan(b.High) {
			t.Errorf("fill price %s outside bar range [%s,%s]", f.Execution.Price, b.Low, b.High)
		}
	}
}

// Status must never be the invariant-violation empty/empty state for any
// result the engine actually returns.
func TestResultStatusIsAlwaysWellDefined(t *testing.T) {
	e := newEngine(t)
	scenarios := []struct {
		name string
		ord  func() (*order.Order, error)
		bar  bar.Bar
	}{
		{"market", func() (*order.Order, error) { return order.NewMarket(types.Buy, d("1")) }, mustBar(t, "100", "101", "99", "100")},
		{"limit-no-fill", func() (*order.Order, error) { return order.NewLimit(types.Buy, d("1"), d("50")) }, mustBar(t, "100", "101", "99", "100")},
		{"stop-no-trigger", func() (*order.Order, error) { return order.NewStop(types.Buy, d("1"), d("200")) }, mustBar(t, "100", "101", "99", "100")},
	}
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			ord, err := sc.ord()
			if err != nil {
				t.Fatalf("construct order: %v", err)
			}
			res, err := e.Execute(context.Background(), ord, sc.bar, 0)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if _, err := res.Status(); err != nil {
				t.Errorf("Status: %v", err)
			}
		})
	}
}
