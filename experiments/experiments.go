package experiments

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"yahtzee/engine"
	"yahtzee/experiments/metrics"
	"yahtzee/meta"
	"yahtzee/policy"
	"yahtzee/policy/tablefile"
)

// Evaluation summarizes games of the learned policy against the random
// baseline.
type Evaluation struct {
	Games       int     `yaml:"games"`
	LearnerWins int     `yaml:"learner_wins"`
	RandomWins  int     `yaml:"random_wins"`
	Ties        int     `yaml:"ties"`
	LearnerMean float64 `yaml:"learner_mean"`
	RandomMean  float64 `yaml:"random_mean"`
}

// warnMismatchedKeys reports table rows keyed differently from the configured
// learner, which would otherwise be silently ignored.
func warnMismatchedKeys(logger *zerolog.Logger, table *policy.Table, withOpen bool) {
	if n := policy.MismatchedKeys(table, withOpen); n > 0 {
		logger.Warn().Msgf("%d of %d table rows do not match key_open_categories=%t and will be ignored",
			n, len(table.Keys()), withOpen)
	}
}

// RunTraining trains a learner as configured, saves its table and writes the
// run's records under the configured output directory.
func RunTraining(ctx context.Context, cfg meta.Config, runID string) (metrics.TrainingMetric, error) {
	logger := zerolog.Ctx(ctx)
	seed := cfg.ResolveSeed()
	start := time.Now()

	var table *policy.Table
	if cfg.Training.Resume {
		loaded, err := tablefile.LoadFile(cfg.Training.TablePath)
		switch {
		case err == nil:
			logger.Info().Msgf("resuming from %s with %d entries", cfg.Training.TablePath, loaded.Len())
			table = loaded
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn().Msgf("no table at %s, starting fresh", cfg.Training.TablePath)
		default:
			return metrics.TrainingMetric{}, fmt.Errorf("failed to resume training: %w", err)
		}
	}

	warnMismatchedKeys(logger, table, cfg.Policy.KeyOpenCategories)

	options := append(cfg.PolicyOptions(), policy.WithTable(table))
	learner := policy.NewQLearner(rand.New(rand.NewSource(seed)), options...)
	collector := metrics.NewCollector(cfg.Training.RecordEpisodes)
	trainer := engine.NewTrainer(learner,
		engine.WithWorkers(cfg.Training.Workers),
		engine.WithSeed(seed),
		engine.WithMaxStepsPerTurn(cfg.Training.MaxStepsPerTurn),
		engine.WithLogEvery(cfg.Training.LogEvery),
		engine.WithCollector(collector),
	)

	metric, err := trainer.Train(ctx, cfg.Training.Episodes, cfg.Training.MaxTurns)
	if err != nil {
		return metric, fmt.Errorf("failed to train: %w", err)
	}

	if err := tablefile.SaveFile(cfg.Training.TablePath, learner.Table()); err != nil {
		return metric, fmt.Errorf("failed to save table: %w", err)
	}
	logger.Info().Msgf("stored %d table entries in %s", learner.Table().Len(), cfg.Training.TablePath)

	// Store experiment metadata
	writer, err := metrics.NewWriter(cfg.Training.OutDir, "training", runID)
	if err != nil {
		return metric, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	err = writer.WriteSetup(metrics.Setup{
		RunID:     runID,
		Mode:      "train",
		Seed:      seed,
		Config:    cfg,
		StartTime: start,
		EndTime:   time.Now(),
		Duration:  time.Since(start),
		Summary:   metric,
	})
	if err != nil {
		return metric, fmt.Errorf("failed to store setup: %w", err)
	}

	if cfg.Training.RecordEpisodes {
		if err := writer.WriteEpisodeRecords(collector.Episodes()); err != nil {
			return metric, fmt.Errorf("failed to write episode records: %w", err)
		}
		logger.Info().Msg("stored episode records")
	}
	return metric, nil
}

// RunEvaluation plays the greedy policy of table against the random baseline
// and writes the game records.
func RunEvaluation(ctx context.Context, cfg meta.Config, table *policy.Table, runID string) (Evaluation, error) {
	logger := zerolog.Ctx(ctx)
	seed := cfg.ResolveSeed()
	start := time.Now()

	warnMismatchedKeys(logger, table, cfg.Policy.KeyOpenCategories)
	logger.Info().Msgf("starting evaluation of %d games...", cfg.Evaluation.Games)
	records, err := evaluate(ctx, cfg, table, seed)
	if err != nil {
		return Evaluation{}, err
	}
	eval := summarize(records)
	logger.Info().Msgf("completed evaluation: learner won %d, random won %d, tied %d, mean scores %.1f vs %.1f",
		eval.LearnerWins, eval.RandomWins, eval.Ties, eval.LearnerMean, eval.RandomMean)

	writer, err := metrics.NewWriter(cfg.Training.OutDir, "evaluation", runID)
	if err != nil {
		return eval, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	err = writer.WriteSetup(metrics.Setup{
		RunID:     runID,
		Mode:      "eval",
		Seed:      seed,
		Config:    cfg,
		StartTime: start,
		EndTime:   time.Now(),
		Duration:  time.Since(start),
		Summary:   eval,
	})
	if err != nil {
		return eval, fmt.Errorf("failed to store setup: %w", err)
	}
	if err := writer.WriteGameRecords(records); err != nil {
		return eval, fmt.Errorf("failed to write game records: %w", err)
	}
	logger.Info().Msg("stored game records")
	return eval, nil
}

// evaluate plays cfg.Evaluation.Games games, the learner taking the first
// seat in even games and the second in odd ones.
func evaluate(ctx context.Context, cfg meta.Config, table *policy.Table, seed uint64) ([]metrics.GameRecord, error) {
	records := make([]metrics.GameRecord, cfg.Evaluation.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Evaluation.Workers)
	for i := range records {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(seed + uint64(i)))
			options := append(cfg.PolicyOptions(),
				policy.WithTable(table),
				policy.WithEpsilon(0),
				policy.WithMinEpsilon(0),
			)
			learner := policy.NewQLearner(rng, options...)
			baseline := policy.NewRandom(rng)

			seat := i % 2
			first, second := policy.Policy(learner), policy.Policy(baseline)
			if seat == 1 {
				first, second = second, first
			}

			metric, err := engine.NewMatch(rng, first, second).Run()
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			records[i] = metrics.GameRecord{ID: i + 1, Learner: seat, GameMetric: metric}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func summarize(records []metrics.GameRecord) Evaluation {
	eval := Evaluation{Games: len(records)}
	if len(records) == 0 {
		return eval
	}

	learnerTotal, randomTotal := 0, 0
	for _, r := range records {
		learnerTotal += r.Scores[r.Learner]
		randomTotal += r.Scores[1-r.Learner]
		switch r.Winner {
		case -1:
			eval.Ties++
		case r.Learner:
			eval.LearnerWins++
		default:
			eval.RandomWins++
		}
	}
	eval.LearnerMean = float64(learnerTotal) / float64(len(records))
	eval.RandomMean = float64(randomTotal) / float64(len(records))
	return eval
}
