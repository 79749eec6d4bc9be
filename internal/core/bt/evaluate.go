package bt

import (
	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/core/world"
)

// Evaluate runs root once against state. It refuses to start when another
// evaluation holds the same state. logger may be nil.
func Evaluate(root Task, state *world.State, logger log.Log) (bool, error) {
	if root == nil {
		return false, ErrNilTask
	}
	if state == nil {
		return false, ErrNilState
	}
	if !state.TryAcquire() {
		return false, world.ErrEvaluationInFlight
	}
	defer state.Release()

	return root.Evaluate(TickContext{State: state, Log: logger})
}
