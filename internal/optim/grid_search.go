package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/experiment"
	"github.com/san-kum/galaxysim/internal/logging"
	"github.com/san-kum/galaxysim/internal/sim"
)

// GridSearch tries every combination of the given parameter values and
// keeps the one with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Combinations is the number of runs Search performs.
func (g *GridSearch) Combinations() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs one experiment per combination. Runs that fail to build or
// diverge are skipped; if none succeeds the error says so.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	simCfg sim.Config,
	metricName string,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, simCfg, metricName, &best, &bestParams)

	if err := ctx.Err(); err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, fmt.Errorf("no combination produced %s", metricName)
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	simCfg sim.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return
		}
		if err := exp.Setup(); err != nil {
			return
		}

		result, err := exp.Run(ctx, simCfg)
		if err != nil {
			return
		}

		val, ok := result.Metrics[metricName]
		if !ok || math.IsNaN(val) {
			return
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, buildExperiment, simCfg, metricName, best, bestParams)
	}
}

// ConfigBuilder returns a builder that applies the combination to a clone
// of base through config.Set.
func ConfigBuilder(base *config.Config) func(map[string]float64) (*experiment.Experiment, error) {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for k, v := range params {
			if err := cfg.Set(k, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(cfg, logging.Nop())
	}
}
