// Package config holds ExecutionConfig, the engine's out-of-scope-policy
// stubs (ambiguity resolution, slippage) per §6/§9 of the design: declared
// and validated today, consulted by the engine in a future release.
package config

import (
	"errors"
	"fmt"
)

// AmbiguityStrategy names how the (unimplemented) ambiguity resolver would
// pick among multiple orders competing for the same bar.
type AmbiguityStrategy string

const (
	Skip       AmbiguityStrategy = "skip"
	ExecuteAll AmbiguityStrategy = "execute_all"
	Postpone   AmbiguityStrategy = "postpone"
	Randomize  AmbiguityStrategy = "randomize"
)

// SlippageModel names how fill prices would be perturbed. Only None is
// wired; Normal is validated but ignored by the engine (§9 Open Questions).
type SlippageModel string

const (
	SlippageNone   SlippageModel = "none"
	SlippageNormal SlippageModel = "normal"
)

// ExecutionConfig holds the engine's tunable, mostly-stubbed behavior
// knobs. The zero value is not valid; always construct through
// DefaultExecutionConfig or set AmbiguityStrategy/SlippageModel explicitly
// before calling Validate.
type ExecutionConfig struct {
	AmbiguityStrategy AmbiguityStrategy

	SlippageModel SlippageModel
	// StdDivider: price range / StdDivider = std for the (unimplemented)
	// normal-distribution slippage model. Higher values mean less
	// variance. Only meaningful when SlippageModel == SlippageNormal.
	StdDivider int
	// RandomSeed, if set, makes the (unimplemented) statistical slippage
	// model reproducible.
	RandomSeed *int64
}

// DefaultExecutionConfig returns the engine's out-of-the-box behavior:
// ambiguity skipped, no slippage.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		AmbiguityStrategy: Skip,
		SlippageModel:     SlippageNone,
		StdDivider:        1000,
	}
}

// Validate checks that the config's fields hold recognized values,
// following the same "return the first problem" idiom as the rest of the
// domain stack's config validation.
func (c ExecutionConfig) Validate() error {
	switch c.AmbiguityStrategy {
	case Skip, ExecuteAll, Postpone, Randomize:
	default:
		return fmt.Errorf("AmbiguityStrategy %q is not recognized", c.AmbiguityStrategy)
	}
	switch c.SlippageModel {
	case SlippageNone, SlippageNormal:
	default:
		return fmt.Errorf("SlippageModel %q is not recognized", c.SlippageModel)
	}
	if c.SlippageModel == SlippageNormal && c.StdDivider <= 0 {
		return errors.New("StdDivider must be positive when SlippageModel is normal")
	}
	return nil
}
