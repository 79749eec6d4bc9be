// Package btadapter compiles trees into go-behaviortree nodes so they can be
// driven by that library's tickers and managers.
package btadapter

import (
	"fmt"

	gobt "github.com/joeycumines/go-behaviortree"

	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/core/world"
)

// Compile maps root onto an equivalent gobt.Node bound to state. Leaves
// report Success or Failure, never Running, so one tick of the result is
// one evaluation of root. The compiled node does not take the state's
// evaluation guard; use Tick for that.
func Compile(root bt.Task, state *world.State, logger log.Log) gobt.Node {
	t := bt.TickContext{State: state, Log: logger}
	return compile(root, t)
}

func compile(n bt.Task, t bt.TickContext) gobt.Node {
	switch v := n.(type) {
	case *bt.Sequence:
		return gobt.New(gobt.Sequence, compileAll(v.Children(), t)...)
	case *bt.Selector:
		return gobt.New(gobt.Selector, compileAll(v.Children(), t)...)
	default:
		return gobt.New(func([]gobt.Node) (gobt.Status, error) {
			ok, err := n.Evaluate(t)
			if err != nil {
				return gobt.Failure, err
			}
			return status(ok), nil
		})
	}
}

func compileAll(children []bt.Task, t bt.TickContext) []gobt.Node {
	out := make([]gobt.Node, len(children))
	for i, ch := range children {
		out[i] = compile(ch, t)
	}
	return out
}

func status(ok bool) gobt.Status {
	if ok {
		return gobt.Success
	}
	return gobt.Failure
}

// Tick compiles root and ticks it once while holding the state's guard.
func Tick(root bt.Task, state *world.State, logger log.Log) (bool, error) {
	if root == nil {
		return false, bt.ErrNilTask
	}
	if state == nil {
		return false, bt.ErrNilState
	}
	if !state.TryAcquire() {
		return false, world.ErrEvaluationInFlight
	}
	defer state.Release()

	st, err := Compile(root, state, logger).Tick()
	if err != nil {
		return false, err
	}
	switch st {
	case gobt.Success:
		return true, nil
	case gobt.Failure:
		return false, nil
	default:
		return false, fmt.Errorf("btadapter: unexpected status %s", st)
	}
}
