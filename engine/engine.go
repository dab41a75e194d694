// Package engine implements the recursive order execution decision engine:
// the per-type fill deciders (§4.2), the modified-bar parent→child
// recursion (§4.1/§4.3), and the trailing-stop state machine (§4.4).
package engine

import (
	"context"
	"fmt"

	"github.com/evdnx/execsim/bar"
	"github.com/evdnx/execsim/config"
	"github.com/evdnx/execsim/fill"
	"github.com/evdnx/execsim/logger"
	"github.com/evdnx/execsim/metrics"
	"github.com/evdnx/execsim/order"
	"github.com/evdnx/execsim/result"
)

// Engine drives Execute. It is stateless beyond its config and logger — all
// mutable state (extremePrice/stopPrice) lives on the order instances it is
// handed, per §5's concurrency model.
type Engine struct {
	cfg config.ExecutionConfig
	log logger.Logger
}

// New validates cfg and returns a ready Engine. log may be nil, in which
// case the engine runs silently.
func New(cfg config.ExecutionConfig, log logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: invalid config: %w", err)
	}
	return &Engine{cfg: cfg, log: log}, nil
}

// NewDefault returns an Engine using config.DefaultExecutionConfig().
func NewDefault(log logger.Logger) *Engine {
	e, _ := New(config.DefaultExecutionConfig(), log)
	return e
}

// Execute decides whether ord fills against b, and recursively executes any
// children against the bar modified by the parent's fill price (§4.1).
// parentID is 0 for a top-level call.
func (e *Engine) Execute(ctx context.Context, ord *order.Order, b bar.Bar, parentID int64) (result.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return result.ExecutionResult{}, err
	}

	res, err := e.decide(ord, b, parentID)
	if err != nil {
		if e.log != nil {
			e.log.Error("execute_failed",
				logger.Any("order_id", ord.ID),
				logger.String("kind", ord.Kind.String()),
				logger.Err(err),
			)
		}
		return result.ExecutionResult{}, err
	}

	switch {
	case len(res.Fills) > 0 && len(ord.Children) > 0:
		modified := b.Displace(res.Fills[0].Execution.Price)
		for _, child := range ord.Children {
			childRes, err := e.Execute(ctx, child, modified, ord.ID)
			if err != nil {
				return res, err
			}
			res.Merge(childRes)
		}
	case len(res.Fills) == 0:
		res.PendingOrders = append(res.PendingOrders, ord)
		e.recordPending(ord)
	}

	return res, nil
}

// decide dispatches to the per-type fill decider (E) or the trailing-stop
// state machine (G), producing at most one fill. Children are never
// considered here — that's Execute's job.
func (e *Engine) decide(ord *order.Order, b bar.Bar, parentID int64) (result.ExecutionResult, error) {
	switch ord.Kind {
	case order.Market:
		return e.fillMarket(ord, b, parentID), nil
	case order.Limit:
		return e.fillLimit(ord, b, parentID), nil
	case order.Stop, order.StopLimit:
		return e.fillStop(ord, b, parentID), nil
	case order.TrailingStopMarket:
		return e.fillTrailing(ord, b, parentID)
	case order.TrailingStopLimit:
		return result.ExecutionResult{}, fmt.Errorf("%w: %w", result.ErrInvariantViolation, ErrTrailingStopLimitNotImplemented)
	default:
		return result.ExecutionResult{}, fmt.Errorf("%w: kind %v", ErrUnsupportedOrderType, ord.Kind)
	}
}

func (e *Engine) recordFill(ord *order.Order, f fill.Fill) {
	metrics.FillsTotal.WithLabelValues(ord.Kind.String()).Inc()
	if e.log != nil {
		e.log.Info("order_filled",
			logger.Any("order_id", ord.ID),
			logger.Any("parent_id", f.ParentID),
			logger.String("kind", ord.Kind.String()),
			logger.String("action", string(ord.Action)),
			logger.String("price", f.Execution.Price.String()),
		)
	}
}

func (e *Engine) recordPending(ord *order.Order) {
	metrics.OrdersPendingTotal.WithLabelValues(ord.Kind.String()).Inc()
	if e.log != nil {
		e.log.Info("order_pending",
			logger.Any("order_id", ord.ID),
			logger.String("kind", ord.Kind.String()),
			logger.String("action", string(ord.Action)),
		)
	}
}
