package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/outbreak/config"
	"github.com/pthm-cable/outbreak/game"
)

// FitnessEvaluator runs headless outbreaks and scores how far their duration
// lands from the target.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config
	targetSec  float64

	mu          sync.Mutex
	lastMeanSec float64 // mean outbreak duration from the most recent Evaluate call
	lastDone    int     // seeds whose outbreak completed in the most recent call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targetSec float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		targetSec:  targetSec,
	}
}

// LastRun returns the mean outbreak duration and completed seed count from
// the most recent evaluation.
func (fe *FitnessEvaluator) LastRun() (meanSec float64, completed int) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMeanSec, fe.lastDone
}

// runResult holds the results from a single simulation run.
type runResult struct {
	durationSec float64 // sim-seconds until the last prey was converted
	completed   bool    // false if the run hit maxTicks first
}

// Evaluate computes fitness for a parameter vector (lower = better): the mean
// absolute distance, in seconds, between each seed's outbreak duration and
// the target. Runs that never finish count as lasting maxTicks.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	errs := make([]float64, len(results))
	durations := make([]float64, len(results))
	completed := 0
	for i, r := range results {
		durations[i] = r.durationSec
		errs[i] = math.Abs(r.durationSec - fe.targetSec)
		if r.completed {
			completed++
		}
	}

	fe.mu.Lock()
	fe.lastMeanSec = stat.Mean(durations, nil)
	fe.lastDone = completed
	fe.mu.Unlock()

	return stat.Mean(errs, nil)
}

// runSimulation runs one headless outbreak until every prey is converted or
// maxTicks is reached.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) runResult {
	g := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		StepsPerUpdate: 1,
	})
	defer g.Unload()

	dt := cfg.Physics.DT
	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
		if g.PreyCount() == 0 {
			return runResult{durationSec: float64(g.Tick()) * dt, completed: true}
		}
	}
	return runResult{durationSec: float64(fe.maxTicks) * dt}
}
