// Package order implements the tagged-union Order model: Market, Limit,
// Stop, StopLimit, and the two trailing-stop variants, each with their
// canonical child structure (§3/§9 of the execution-engine design).
package order

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/evdnx/execsim/types"
	"github.com/shopspring/decimal"
)

// ErrInvalidOrder is returned by the constructors when a variant's
// invariants don't hold (e.g. a trailing order with both or neither of
// distance/percent set, or a non-positive quantity).
var ErrInvalidOrder = errors.New("order: invalid order")

// Kind discriminates the order variants. The zero value is intentionally
// not a valid kind, so a zero Order is never silently treated as Market.
type Kind int

const (
	_ Kind = iota
	Market
	Limit
	Stop
	StopLimit
	TrailingStopMarket
	TrailingStopLimit
)

// String returns the legacy orderType discriminator strings kept
// only for golden-data compatibility (§9 Sum-type refactor).
func (k Kind) String() string {
	switch k {
	case Market:
		return "MKT"
	case Limit:
		return "LMT"
	case Stop:
		return "STP"
	case StopLimit:
		return "STP LMT"
	case TrailingStopMarket:
		return "TRAIL"
	case TrailingStopLimit:
		return "TRAIL LIMIT"
	default:
		return "UNKNOWN"
	}
}

// Order is a single node in a (small, fixed-depth) parent/child order tree.
// Only the fields relevant to its Kind are meaningful; see the field
// comments for which variant owns which field.
type Order struct {
	ID       int64
	ParentID int64
	Kind     Kind
	Action   types.Side
	Quantity decimal.Decimal

	LimitPrice decimal.Decimal // Limit, StopLimit child
	StopPrice  decimal.Decimal // Stop, StopLimit parent; also the live trailing-stop trigger

	TrailingDistance *decimal.Decimal // TrailingStopMarket/Limit — xor TrailingPercent
	TrailingPercent  *decimal.Decimal // TrailingStopMarket/Limit — xor TrailingDistance
	LimitOffset      decimal.Decimal  // TrailingStopLimit only

	ExtremePrice *decimal.Decimal // mutable trailing-stop state, carried across bars

	Children []*Order
}

// addChild wires parentID and appends, matching the teacher library's
// add_child helper.
func (o *Order) addChild(child *Order) {
	child.ParentID = o.ID
	o.Children = append(o.Children, child)
}

func validateQuantity(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return fmt.Errorf("%w: quantity %s must be positive", ErrInvalidOrder, qty)
	}
	return nil
}

// IDAllocator hands out process-unique, monotonically increasing order IDs.
// The default implementation is safe for concurrent use; callers running
// independent concurrent simulations should inject their own instance
// (§5/§9 Global id counter).
type IDAllocator interface {
	Next() int64
}

// AtomicIDAllocator is the default IDAllocator, backed by sync/atomic.
type AtomicIDAllocator struct {
	counter atomic.Int64
}

// NewAtomicIDAllocator returns an allocator whose first Next() call
// returns 1.
func NewAtomicIDAllocator() *AtomicIDAllocator {
	return &AtomicIDAllocator{}
}

func (a *AtomicIDAllocator) Next() int64 {
	return a.counter.Add(1)
}

var defaultAllocator = NewAtomicIDAllocator()

// Factory constructs orders using an injected IDAllocator, so tests (and
// parallel simulations) can get deterministic, independent ID sequences
// instead of sharing the process-wide default.
type Factory struct {
	alloc IDAllocator
}

// NewFactory wraps an IDAllocator. Pass NewAtomicIDAllocator() for a fresh,
// independent counter, or any fake for deterministic tests.
func NewFactory(alloc IDAllocator) *Factory {
	return &Factory{alloc: alloc}
}

func (f *Factory) next() int64 {
	return f.alloc.Next()
}

// Market creates a childless market order.
func (f *Factory) Market(action types.Side, qty decimal.Decimal) (*Order, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	return &Order{ID: f.next(), Kind: Market, Action: action, Quantity: qty}, nil
}

// Limit creates a childless limit order.
func (f *Factory) Limit(action types.Side, qty, limitPrice decimal.Decimal) (*Order, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	return &Order{ID: f.next(), Kind: Limit, Action: action, Quantity: qty, LimitPrice: limitPrice}, nil
}

// Stop creates a Stop order with a Market child of the same action/qty.
func (f *Factory) Stop(action types.Side, qty, stopPrice decimal.Decimal) (*Order, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	parent := &Order{ID: f.next(), Kind: Stop, Action: action, Quantity: qty, StopPrice: stopPrice}
	child, err := f.Market(action, qty)
	if err != nil {
		return nil, err
	}
	parent.addChild(child)
	return parent, nil
}

// StopLimit creates a Stop parent with a Limit child priced at limitPrice.
func (f *Factory) StopLimit(action types.Side, qty, limitPrice, stopPrice decimal.Decimal) (*Order, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	parent := &Order{ID: f.next(), Kind: StopLimit, Action: action, Quantity: qty, StopPrice: stopPrice}
	child, err := f.Limit(action, qty, limitPrice)
	if err != nil {
		return nil, err
	}
	parent.addChild(child)
	return parent, nil
}

func validateTrailingParams(distance, percent *decimal.Decimal) error {
	if (distance == nil) == (percent == nil) {
		return fmt.Errorf("%w: exactly one of trailingDistance or trailingPercent must be set", ErrInvalidOrder)
	}
	return nil
}

// TrailingStopMarket creates a trailing-stop order with a dormant Market
// child. Exactly one of distance/percent must be non-nil.
func (f *Factory) TrailingStopMarket(action types.Side, qty decimal.Decimal, distance, percent *decimal.Decimal) (*Order, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	if err := validateTrailingParams(distance, percent); err != nil {
		return nil, err
	}
	parent := &Order{
		ID: f.next(), Kind: TrailingStopMarket, Action: action, Quantity: qty,
		TrailingDistance: distance, TrailingPercent: percent,
	}
	child, err := f.Market(action, qty)
	if err != nil {
		return nil, err
	}
	parent.addChild(child)
	return parent, nil
}

// TrailingStopLimit creates a trailing-stop order with a dormant Limit
// child; the child's price is set once the parent triggers (§4.4 — the
// decider for this variant is not implemented, see
// ErrTrailingStopLimitNotImplemented in package engine).
func (f *Factory) TrailingStopLimit(action types.Side, qty, limitOffset decimal.Decimal, distance, percent *decimal.Decimal) (*Order, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	if err := validateTrailingParams(distance, percent); err != nil {
		return nil, err
	}
	parent := &Order{
		ID: f.next(), Kind: TrailingStopLimit, Action: action, Quantity: qty,
		TrailingDistance: distance, TrailingPercent: percent, LimitOffset: limitOffset,
	}
	child, err := f.Limit(action, qty, decimal.Zero)
	if err != nil {
		return nil, err
	}
	parent.addChild(child)
	return parent, nil
}

// Package-level constructors use the process-wide default allocator,
// matching the language-neutral API surface (§6). Use NewFactory for
// deterministic IDs or independent concurrent simulations.

func NewMarket(action types.Side, qty decimal.Decimal) (*Order, error) {
	return NewFactory(defaultAllocator).Market(action, qty)
}

func NewLimit(action types.Side, qty, limitPrice decimal.Decimal) (*Order, error) {
	return NewFactory(defaultAllocator).Limit(action, qty, limitPrice)
}

func NewStop(action types.Side, qty, stopPrice decimal.Decimal) (*Order, error) {
	return NewFactory(defaultAllocator).Stop(action, qty, stopPrice)
}

func NewStopLimit(action types.Side, qty, limitPrice, stopPrice decimal.Decimal) (*Order, error) {
	return NewFactory(defaultAllocator).StopLimit(action, qty, limitPrice, stopPrice)
}

func NewTrailingStopMarket(action types.Side, qty decimal.Decimal, distance, percent *decimal.Decimal) (*Order, error) {
	return NewFactory(defaultAllocator).TrailingStopMarket(action, qty, distance, percent)
}

func NewTrailingStopLimit(action types.Side, qty, limitOffset decimal.Decimal, distance, percent *decimal.Decimal) (*Order, error) {
	return NewFactory(defaultAllocator).TrailingStopLimit(action, qty, limitOffset, distance, percent)
}
