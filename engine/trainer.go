package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"yahtzee/experiments/metrics"
	"yahtzee/game"
	"yahtzee/policy"
	"yahtzee/utils"
)

type Option func(t *Trainer)

// Trainer runs self-play episodes in which one learner plays both seats.
// Episodes are split into contiguous ranges, one per worker, and share only
// the learner's table and exploration rate.
type Trainer struct {
	learner   policy.Learner
	workers   int
	seed      uint64
	maxSteps  int
	logEvery  int
	collector metrics.Collector
}

func WithWorkers(workers int) Option {
	return func(t *Trainer) {
		if workers > 0 {
			t.workers = workers
		}
	}
}

// WithSeed sets the base seed. Episode i draws from seed+i, whichever worker
// runs it.
func WithSeed(seed uint64) Option {
	return func(t *Trainer) {
		t.seed = seed
	}
}

func WithMaxStepsPerTurn(steps int) Option {
	return func(t *Trainer) {
		if steps > 0 {
			t.maxSteps = steps
		}
	}
}

func WithLogEvery(episodes int) Option {
	return func(t *Trainer) {
		if episodes >= 0 {
			t.logEvery = episodes
		}
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(t *Trainer) {
		if collector != nil {
			t.collector = collector
		}
	}
}

func NewTrainer(learner policy.Learner, options ...Option) *Trainer {
	if learner == nil {
		panic("trainer needs a learner")
	}
	t := &Trainer{ // Default values
		learner:   learner,
		workers:   1,
		maxSteps:  MaxStepsPerTurn,
		logEvery:  100,
		collector: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// Train plays episodes self-play games of at most maxTurns turns each.
// Cancelling ctx stops workers between episodes.
func (t *Trainer) Train(ctx context.Context, episodes, maxTurns int) (metrics.TrainingMetric, error) {
	logger := zerolog.Ctx(ctx)
	shards := utils.Shards(episodes, t.workers)

	t.collector.Start(len(shards))
	logger.Info().Msgf("training %d episodes on %d workers", episodes, len(shards))

	g, ctx := errgroup.WithContext(ctx)
	for worker, shard := range shards {
		worker, shard := worker, shard
		g.Go(func() error {
			for episode := shard[0]; episode < shard[1]; episode++ {
				if err := ctx.Err(); err != nil {
					return err
				}

				rng := rand.New(rand.NewSource(t.seed + uint64(episode)))
				metric, err := t.runEpisode(rng, maxTurns)
				if err != nil {
					return fmt.Errorf("episode %d: %w", episode, err)
				}
				metric.Episode = episode
				metric.Worker = worker
				t.collector.AddEpisode(metric)

				if t.logEvery > 0 && (episode+1)%t.logEvery == 0 {
					logger.Info().Msgf("episode %d completed with scores %d and %d, total reward %.2f, epsilon %.4f",
						episode+1, metric.Scores[0], metric.Scores[1], metric.TotalReward, metric.Epsilon)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return t.collector.Complete(), err
	}

	metric := t.collector.Complete()
	logger.Info().Msgf("completed %d episodes in %s", metric.Episodes, metric.Duration)
	return metric, nil
}

func (t *Trainer) runEpisode(rng *rand.Rand, maxTurns int) (metrics.EpisodeMetric, error) {
	start := time.Now()
	learner := t.learner.Fork(rng)
	g := game.NewGame(rng)

	metric := metrics.EpisodeMetric{}
	turnSteps := 0
	for !g.Over() && metric.Turns < maxTurns {
		before := g.State().Copy()

		kind, _, err := pick(learner, before, turnSteps, t.maxSteps)
		if err != nil {
			return metric, err
		}
		action, points, err := apply(g, learner, kind)
		if err != nil {
			return metric, fmt.Errorf("failed to play %s: %w", action, err)
		}
		if action.Kind == game.ScoreAction {
			if err := g.EndTurn(); err != nil {
				return metric, err
			}
			metric.Turns++
			turnSteps = 0
		} else {
			turnSteps++
		}

		reward := learner.Reward(before, action, points)
		learner.Update(before, action, reward, g.State())
		metric.TotalReward += reward
		metric.Steps++
	}

	metric.Scores = g.State().Totals
	metric.Epsilon = learner.Epsilon()
	metric.Finished = g.Over()
	metric.Duration = time.Since(start)
	return metric, nil
}
