// Package main searches predator and prey tuning with CMA-ES so that an
// outbreak takes a chosen number of seconds to convert every prey.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/outbreak/config"
)

// TuneRow is one line of tune_log.csv.
type TuneRow struct {
	Eval          int     `csv:"eval"`
	Fitness       float64 `csv:"fitness"`
	MeanSec       float64 `csv:"mean_outbreak_sec"`
	Completed     int     `csv:"completed_seeds"`
	PredMaxSpeed  float64 `csv:"pred_max_speed"`
	PredMass      float64 `csv:"pred_mass"`
	PursuitWeight float64 `csv:"pred_pursuit_weight"`
	ThreatRadius  float64 `csv:"prey_threat_radius"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	target := flag.Float64("target", 60, "Target outbreak duration in sim-seconds")
	maxTicks := flag.Int("max-ticks", 36000, "Give up on a run after N ticks")
	initialPrey := flag.Int("initial-prey", 0, "Override population.initial_prey (0 = use config)")
	seeds := flag.Int("seeds", 4, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 120, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		fmt.Fprintln(os.Stderr, "-output is required")
		os.Exit(2)
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fatal("failed to create output directory", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	if *initialPrey > 0 {
		baseCfg.Population.InitialPrey = *initialPrey
	}

	params := NewParamVector(baseCfg)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, int32(*maxTicks), evalSeeds, baseCfg, *target)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // seeds already run in parallel
	}

	logFile, err := os.Create(filepath.Join(*outputDir, "tune_log.csv"))
	if err != nil {
		fatal("failed to create log file", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e18
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			evalCount++

			clamped := params.Clamp(raw)
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			meanSec, completed := evaluator.LastRun()
			rows := []TuneRow{{
				Eval:          evalCount,
				Fitness:       fitness,
				MeanSec:       meanSec,
				Completed:     completed,
				PredMaxSpeed:  clamped[0],
				PredMass:      clamped[1],
				PursuitWeight: clamped[2],
				ThreatRadius:  clamped[3],
			}}
			if evalCount == 1 {
				err = gocsv.Marshal(&rows, logFile)
			} else {
				err = gocsv.MarshalWithoutHeaders(&rows, logFile)
			}
			if err != nil {
				slog.Error("failed to write tune log", "error", err)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(*maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: outbreak=%.1fs (%d/%d done) err=%.2fs (best=%.2fs) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, meanSec, completed, len(evalSeeds), fitness, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES with %d parameters, population=%d, max_evals=%d, target=%.0fs\n",
		dim, popSize, *maxEvals, *target)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best error: %.2fs\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.4f\n", spec.Path, bestParams[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		slog.Error("failed to write best config", "error", err)
		return
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
}
