// Package runner evaluates trees against world states and reports what
// changed.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/btengine/internal/config"
	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/bt/btadapter"
	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/core/world"
	"github.com/zeusync/btengine/pkg/concurrent"
)

// Report is the outcome of one evaluation.
type Report struct {
	SessionID string         `json:"session_id"`
	Engine    Engine         `json:"engine"`
	Tree      string         `json:"tree"`
	Result    bool           `json:"result"`
	Before    world.Snapshot `json:"before"`
	After     world.Snapshot `json:"after"`
	// Digest identifies After, see world.State.Digest.
	Digest  string        `json:"digest"`
	Elapsed time.Duration `json:"elapsed"`
	// Trace holds the debug diagnostics, only filled when the state has Debug set.
	Trace []string `json:"trace,omitempty"`
}

// Engine names the evaluator behind Run.
type Engine string

const (
	// EngineNative calls bt.Evaluate.
	EngineNative Engine = config.EngineNative
	// EngineGoBT compiles the tree onto go-behaviortree and ticks it once.
	EngineGoBT Engine = config.EngineGoBT
)

var ErrUnknownEngine = errors.New("unknown evaluation engine")

// ParseEngine accepts "native" and "gobt"; empty means native.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case "", EngineNative:
		return EngineNative, nil
	case EngineGoBT:
		return EngineGoBT, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
}

type Runner struct {
	log    log.Log
	engine Engine
}

// New returns a Runner on the native engine.
func New(logger log.Log) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{log: logger, engine: EngineNative}
}

// WithEngine returns a copy of r that evaluates with e.
func (r *Runner) WithEngine(e Engine) *Runner {
	cp := *r
	cp.engine = e
	return &cp
}

func (r *Runner) Engine() Engine { return r.engine }

func (r *Runner) evaluate(root bt.Task, state *world.State, logger log.Log) (bool, error) {
	if r.engine == EngineGoBT {
		return btadapter.Tick(root, state, logger)
	}
	return bt.Evaluate(root, state, logger)
}

// Run evaluates root once against state, which it mutates.
func (r *Runner) Run(ctx context.Context, root bt.Task, state *world.State) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, bt.ErrNilTask
	}
	if state == nil {
		return nil, bt.ErrNilState
	}

	session := uuid.NewString()
	logger := r.log.With(log.String("session", session), log.String("engine", string(r.engine)))

	var trace bytes.Buffer
	evalLog := logger
	if state.Debug {
		evalLog = log.Tee(logger, &trace)
	}

	before := state.Snapshot()
	start := time.Now()
	ok, err := r.evaluate(root, state, evalLog)
	elapsed := time.Since(start)
	if err != nil {
		logger.Warn("evaluation aborted", log.Error(err))
		return nil, err
	}

	report := &Report{
		SessionID: session,
		Engine:    r.engine,
		Tree:      bt.Format(root),
		Result:    ok,
		Before:    before,
		After:     state.Snapshot(),
		Digest:    state.DigestString(),
		Elapsed:   elapsed,
	}
	if trace.Len() > 0 {
		report.Trace = strings.Split(strings.TrimRight(trace.String(), "\n"), "\n")
	}
	logger.Info("evaluation finished",
		log.Bool("result", ok),
		log.String("digest", report.Digest),
		log.Duration("elapsed", elapsed),
	)
	return report, nil
}

// Job is one independent evaluation in a batch.
type Job struct {
	Name     string
	Tree     bt.Task
	Scenario world.Snapshot
}

// Result pairs a job with its report or the error that aborted it.
type Result struct {
	Job    string  `json:"job"`
	Report *Report `json:"report,omitempty"`
	Err    string  `json:"error,omitempty"`
}

// RunBatch evaluates jobs concurrently, each on a state built from its own
// scenario. A failing job is recorded in its Result; only a cancelled ctx
// stops the batch. Results keep job order.
func (r *Runner) RunBatch(ctx context.Context, jobs []Job, workers int) ([]Result, error) {
	r.log.Info("batch started", log.Int("jobs", len(jobs)), log.Int("workers", workers))
	results, err := concurrent.Map(ctx, jobs, workers, func(ctx context.Context, _ int, job Job) (Result, error) {
		res := Result{Job: job.Name}
		state, err := job.Scenario.Build()
		if err != nil {
			res.Err = fmt.Sprintf("scenario: %v", err)
			return res, nil
		}
		rep, err := r.Run(ctx, job.Tree, state)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Err = err.Error()
			return res, nil
		}
		res.Report = rep
		return res, nil
	})
	if err != nil {
		return results, err
	}

	failed := 0
	for _, res := range results {
		if res.Err != "" {
			failed++
		}
	}
	r.log.Info("batch finished", log.Int("jobs", len(jobs)), log.Int("failed", failed))
	return results, nil
}
