package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"yahtzee/experiments/metrics"
	"yahtzee/game"
	"yahtzee/policy"
)

func exploring() *policy.QLearner {
	return policy.NewQLearner(rand.New(rand.NewSource(0)), policy.WithEpsilon(1), policy.WithMinEpsilon(1))
}

func visited(t *testing.T, workers int) map[game.StateKey]bool {
	t.Helper()
	learner := exploring()
	trainer := NewTrainer(learner, WithWorkers(workers), WithSeed(42), WithLogEvery(0))

	_, err := trainer.Train(context.Background(), 24, MaxTurns)
	require.NoError(t, err)

	keys := map[game.StateKey]bool{}
	for _, k := range learner.Table().Keys() {
		keys[k] = true
	}
	return keys
}

func TestTrain(t *testing.T) {
	t.Run("plays every episode to the end", func(t *testing.T) {
		learner := policy.NewQLearner(rand.New(rand.NewSource(0)))
		collector := metrics.NewCollector(true)
		trainer := NewTrainer(learner, WithWorkers(4), WithSeed(1), WithCollector(collector), WithLogEvery(5))

		metric, err := trainer.Train(context.Background(), 20, MaxTurns)
		require.NoError(t, err)
		require.Equal(t, 20, metric.Episodes)
		require.Equal(t, 20, metric.Finished)
		require.Equal(t, 4, metric.Workers)
		require.Less(t, learner.Epsilon(), 1.0)
		require.Positive(t, learner.Table().Len())

		episodes := map[int]bool{}
		for _, e := range collector.Episodes() {
			episodes[e.Episode] = true
			require.Equal(t, MaxTurns, e.Turns)
			require.True(t, e.Finished)
		}
		require.Len(t, episodes, 20)
	})

	t.Run("stops at the turn cap", func(t *testing.T) {
		collector := metrics.NewCollector(true)
		trainer := NewTrainer(exploring(), WithCollector(collector))

		metric, err := trainer.Train(context.Background(), 3, 4)
		require.NoError(t, err)
		require.Zero(t, metric.Finished)
		for _, e := range collector.Episodes() {
			require.Equal(t, 4, e.Turns)
		}
	})

	t.Run("a step budget forces progress", func(t *testing.T) {
		collector := metrics.NewCollector(true)
		trainer := NewTrainer(exploring(), WithCollector(collector), WithMaxStepsPerTurn(1))

		_, err := trainer.Train(context.Background(), 2, MaxTurns)
		require.NoError(t, err)
		for _, e := range collector.Episodes() {
			// One roll, then a forced score
			require.Equal(t, 2*MaxTurns, e.Steps)
		}
	})

	t.Run("episodes are reproducible from the seed", func(t *testing.T) {
		run := func() []metrics.EpisodeMetric {
			collector := metrics.NewCollector(true)
			trainer := NewTrainer(exploring(), WithSeed(5), WithCollector(collector))
			_, err := trainer.Train(context.Background(), 3, MaxTurns)
			require.NoError(t, err)
			return collector.Episodes()
		}
		first, second := run(), run()
		require.Len(t, second, len(first))
		for i := range first {
			require.Equal(t, first[i].Scores, second[i].Scores)
			require.Equal(t, first[i].Steps, second[i].Steps)
			require.InDelta(t, first[i].TotalReward, second[i].TotalReward, 1e-9)
		}
	})

	t.Run("worker count does not change the visited states", func(t *testing.T) {
		require.Equal(t, visited(t, 1), visited(t, 4))
	})

	t.Run("no entry is left corrupt", func(t *testing.T) {
		learner := policy.NewQLearner(rand.New(rand.NewSource(0)), policy.WithEpsilonDecay(0.99))
		trainer := NewTrainer(learner, WithWorkers(8), WithSeed(3), WithLogEvery(0))

		_, err := trainer.Train(context.Background(), 40, MaxTurns)
		require.NoError(t, err)
		learner.Table().Range(func(_ game.StateKey, _ game.Action, v float64) bool {
			require.False(t, math.IsNaN(v))
			require.False(t, math.IsInf(v, 0))
			return true
		})
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewTrainer(exploring()).Train(ctx, 5, MaxTurns)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("panics without a learner", func(t *testing.T) {
		require.Panics(t, func() {
			NewTrainer(nil)
		})
	})
}
