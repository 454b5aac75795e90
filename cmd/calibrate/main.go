// Package main searches fluid parameters with CMA-ES for a tank that settles
// close to its target density without blowing up.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/sphtank/config"
)

// formatDuration formats a duration as 1h02m03s, or 2m03s when under an hour.
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

// result is written next to best_config.yaml.
type result struct {
	Evaluations int                `json:"evaluations"`
	Fitness     float64            `json:"fitness"`
	Detail      Detail             `json:"detail"`
	Params      map[string]float64 `json:"params"`
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int64("ticks", 2400, "Simulation ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	count := flag.Int("n", 0, "Particle count override (0 = config)")
	maxEvals := flag.Int("max-evals", 120, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := *config.Cfg()
	if *count > 0 {
		baseCfg.Spawn.Count = *count
	}

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, &baseCfg, *ticks, evalSeeds)
	if minTicks := evaluator.MinTicks(baseCfg.Integration.DT); *ticks < minTicks {
		log.Fatalf("--ticks %d is too short: need at least %d to measure past warmup", *ticks, minTicks)
	}

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(&baseCfg))

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.25,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "error", "spread", "motion", "blowup"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	bestFitness := blowupFitness * 10
	var bestParams []float64
	var bestDetail Detail
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			detail := evaluator.LastDetail()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
				bestDetail = detail
			}

			row := []string{
				strconv.Itoa(evalCount),
				fmt.Sprintf("%.6f", fitness),
				fmt.Sprintf("%.6f", detail.Error),
				fmt.Sprintf("%.6f", detail.Spread),
				fmt.Sprintf("%.6f", detail.Motion),
				strconv.FormatBool(detail.Blowup),
			}
			for _, v := range clamped {
				row = append(row, fmt.Sprintf("%.6f", v))
			}
			logWriter.Write(row)
			logWriter.Flush()

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			fmt.Printf("Eval %d/%d: fitness=%.4f error=%+.4f spread=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, fitness, detail.Error, detail.Spread, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES calibration with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d, particles: %d\n", *seeds, *ticks, baseCfg.Spawn.Count)

	res, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("calibration ended: %v", err)
	}
	if bestParams == nil && res != nil {
		bestParams = params.Clamp(params.Denormalize(res.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	named := make(map[string]float64, len(bestParams))
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
		named[spec.Name] = bestParams[i]
	}

	bestCfg := baseCfg
	params.ApplyToConfig(&bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}

	summary := result{Evaluations: evalCount, Fitness: bestFitness, Detail: bestDetail, Params: named}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Printf("failed to marshal result: %v", err)
		return
	}
	if err := os.WriteFile(filepath.Join(*outputDir, "best_result.json"), data, 0644); err != nil {
		log.Printf("failed to write result: %v", err)
	}
}
