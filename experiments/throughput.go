package experiments

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"yahtzee/engine"
	"yahtzee/experiments/metrics"
	"yahtzee/meta"
	"yahtzee/policy"
)

// RunThroughputExperiment trains a fresh learner for the configured number
// of episodes once per worker count and records how long each run took.
func RunThroughputExperiment(ctx context.Context, cfg meta.Config, runID string, workerCounts []int) ([]metrics.TrainingMetric, error) {
	logger := zerolog.Ctx(ctx)
	seed := cfg.ResolveSeed()

	logger.Info().Msg("starting throughput experiment...")

	results := []metrics.TrainingMetric{}
	for i, workers := range workerCounts {
		logger.Info().Msgf("starting run %d of %d with %d workers...", i+1, len(workerCounts), workers)

		// Same seed for every run so each plays the same episodes
		learner := policy.NewQLearner(rand.New(rand.NewSource(seed)), cfg.PolicyOptions()...)
		trainer := engine.NewTrainer(learner,
			engine.WithWorkers(workers),
			engine.WithSeed(seed),
			engine.WithMaxStepsPerTurn(cfg.Training.MaxStepsPerTurn),
			engine.WithLogEvery(0),
			engine.WithCollector(metrics.NewCollector(false)),
		)

		metric, err := trainer.Train(ctx, cfg.Training.Episodes, cfg.Training.MaxTurns)
		if err != nil {
			return results, fmt.Errorf("failed run with %d workers: %w", workers, err)
		}
		results = append(results, metric)

		logger.Info().Msgf("completed run %d of %d in %s", i+1, len(workerCounts), metric.Duration)
	}

	logger.Info().Msg("completed throughput experiment")

	// Store experiment results
	writer, err := metrics.NewWriter(cfg.Training.OutDir, "throughput", runID)
	if err != nil {
		return results, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteTrainingMetrics(results); err != nil {
		return results, fmt.Errorf("failed to write training metrics: %w", err)
	}
	logger.Info().Msg("stored training metrics")
	return results, nil
}
