// Package result defines ExecutionResult, the ⟨fills, pending-orders⟩ pair
// every engine.Execute call produces, and its derived Status.
package result

import (
	"errors"

	"github.com/evdnx/execsim/fill"
	"github.com/evdnx/execsim/order"
)

// ErrInvariantViolation is raised by Status when a result has neither fills
// nor pending orders — a state the engine must never produce.
var ErrInvariantViolation = errors.New("result: invariant violation: empty result has neither fills nor pending orders")

// Status is the derived outcome of an ExecutionResult.
type Status int

const (
	Pending Status = iota
	Filled
	Partial
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Filled:
		return "FILLED"
	case Partial:
		return "PARTIAL"
	default:
		return "UNKNOWN"
	}
}

// ExecutionResult is the outcome of executing one order (and, recursively,
// its children) against one bar.
type ExecutionResult struct {
	Fills         []fill.Fill
	PendingOrders []*order.Order
}

// Status derives Pending/Filled/Partial from the two lists. An empty result
// in both dimensions is an engine bug, surfaced as ErrInvariantViolation
// rather than silently treated as any of the three real statuses.
func (r ExecutionResult) Status() (Status, error) {
	hasFills := len(r.Fills) > 0
	hasPending := len(r.PendingOrders) > 0

	switch {
	case !hasFills && !hasPending:
		return 0, ErrInvariantViolation
	case !hasFills && hasPending:
		return Pending, nil
	case hasFills && !hasPending:
		return Filled, nil
	default:
		return Partial, nil
	}
}

// Merge appends other's fills and pending orders onto r, preserving order
// (parent before children, children in declaration order — §5 Ordering
// guarantee).
func (r *ExecutionResult) Merge(other ExecutionResult) {
	r.Fills = append(r.Fills, other.Fills...)
	r.PendingOrders = append(r.PendingOrders, other.PendingOrders...)
}
