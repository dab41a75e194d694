package engine

import "errors"

// ErrUnsupportedOrderType is raised when Execute is asked to dispatch an
// order.Kind the engine doesn't know about (e.g. a future variant added to
// package order without a matching decider here).
var ErrUnsupportedOrderType = errors.New("engine: unsupported order type")

// ErrTrailingStopLimitNotImplemented is raised whenever a TrailingStopLimit
// order reaches the dispatcher — the decider for this variant is reserved
// in the type system but not yet implemented (§4.4/§9).
var ErrTrailingStopLimitNotImplemented = errors.New("engine: trailing stop limit execution not implemented")
