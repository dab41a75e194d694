// Package fill holds the execution-record types produced by the engine:
// Execution, Commission, and the Fill that ties them back to the order
// that produced them.
package fill

import (
	"time"

	"github.com/evdnx/execsim/order"
	"github.com/evdnx/execsim/types"
	"github.com/shopspring/decimal"
)

// Execution is the record of one order execution.
type Execution struct {
	OrderID int64
	Time    time.Time
	Shares  decimal.Decimal
	Price   decimal.Decimal
	Side    types.Side
}

// Commission is a placeholder — commission/slippage modeling is stubbed
// per §1 Out of scope; the engine always reports zero.
type Commission struct {
	Amount   decimal.Decimal
	Currency string
}

// ZeroCommission is the stub commission every fill in this release carries.
func ZeroCommission() Commission {
	return Commission{Amount: decimal.Zero, Currency: "USD"}
}

// Fill combines the originating order, its execution, and commission, plus
// the parent order ID it was produced under (0 for a top-level order).
type Fill struct {
	Order      *order.Order
	Execution  Execution
	Commission Commission
	Time       time.Time
	ParentID   int64
}

// New builds a Fill for ord filling at price on bar dated at.
func New(ord *order.Order, at time.Time, price decimal.Decimal, parentID int64) Fill {
	return Fill{
		Order: ord,
		Execution: Execution{
			OrderID: ord.ID,
			Time:    at,
			Shares:  ord.Quantity,
			Price:   price,
			Side:    ord.Action,
		},
		Commission: ZeroCommission(),
		Time:       at,
		ParentID:   parentID,
	}
}
