package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"yahtzee/experiments/metrics"
	"yahtzee/game"
	"yahtzee/policy"
)

// Match plays one game between two policies. Seat 0 moves first.
type Match struct {
	Game     *game.Game
	Policies [game.NumPlayers]policy.Policy
	maxSteps int
}

func NewMatch(rng *rand.Rand, first, second policy.Policy) *Match {
	if first == nil || second == nil {
		panic("need a policy for each seat")
	}
	return &Match{
		Game:     game.NewGame(rng),
		Policies: [game.NumPlayers]policy.Policy{first, second},
		maxSteps: MaxStepsPerTurn,
	}
}

// Run executes the entire game loop until the game is over or MaxTurns turns
// have been played.
func (m *Match) Run() (metrics.GameMetric, error) {
	metric := metrics.GameMetric{StartTime: time.Now(), Winner: -1}

	turnSteps := 0
	for !m.Game.Over() && metric.Turns < MaxTurns {
		state := m.Game.State()
		p := m.Policies[state.Player]

		action, points, fallback, err := Step(m.Game, p, turnSteps, m.maxSteps)
		if err != nil {
			return metric, fmt.Errorf("player %d failed to play %s: %w", state.Player, action, err)
		}
		if fallback {
			log.Warn().Msgf("player %d chose an illegal action, played %s instead", state.Player, action)
			metric.Fallbacks++
		}
		metric.TotalMoves++
		turnSteps++

		if action.Kind == game.ScoreAction {
			log.Debug().Msgf("player %d scored %d in %s", state.Player, points, action.Category)
			if err := m.Game.EndTurn(); err != nil {
				return metric, fmt.Errorf("failed to end turn: %w", err)
			}
			metric.Turns++
			turnSteps = 0
		}
	}

	metric.EndTime = time.Now()
	metric.Duration = metric.EndTime.Sub(metric.StartTime)
	metric.Scores = m.Game.State().Totals
	metric.Winner = m.Game.Winner()
	return metric, nil
}
