package policy

import (
	"math"
	"sync/atomic"

	"golang.org/x/exp/rand"

	"yahtzee/game"
)

type Option func(l *QLearner)

// QLearner is an epsilon-greedy tabular Q-learning policy. Forks share the
// table and the exploration rate, so one learner can drive many concurrent
// episodes.
type QLearner struct {
	table      *Table
	epsilon    *atomic.Uint64 // float64 bits
	alpha      float64
	gamma      float64
	decay      float64
	minEpsilon float64
	keyOpen    bool
	optimistic bool
	heuristics Heuristics
	rewards    Rewards
	rng        *rand.Rand
}

func WithAlpha(alpha float64) Option {
	return func(l *QLearner) {
		if alpha > 0 && alpha <= 1 {
			l.alpha = alpha
		}
	}
}

func WithGamma(gamma float64) Option {
	return func(l *QLearner) {
		if gamma >= 0 && gamma <= 1 {
			l.gamma = gamma
		}
	}
}

func WithEpsilon(epsilon float64) Option {
	return func(l *QLearner) {
		if epsilon >= 0 && epsilon <= 1 {
			l.epsilon.Store(math.Float64bits(epsilon))
		}
	}
}

func WithEpsilonDecay(decay float64) Option {
	return func(l *QLearner) {
		if decay > 0 && decay <= 1 {
			l.decay = decay
		}
	}
}

func WithMinEpsilon(epsilon float64) Option {
	return func(l *QLearner) {
		if epsilon >= 0 && epsilon <= 1 {
			l.minEpsilon = epsilon
		}
	}
}

// WithTable resumes from a previously learned table.
func WithTable(table *Table) Option {
	return func(l *QLearner) {
		if table != nil {
			l.table = table
		}
	}
}

// WithOpenCategories makes the open categories of the active player part of
// the state key.
func WithOpenCategories() Option {
	return func(l *QLearner) {
		l.keyOpen = true
	}
}

// WithOptimisticSeed starts unseen score entries at their immediate score
// instead of zero.
func WithOptimisticSeed() Option {
	return func(l *QLearner) {
		l.optimistic = true
	}
}

func WithHeuristics(h Heuristics) Option {
	return func(l *QLearner) {
		l.heuristics = h
	}
}

func WithRewards(r Rewards) Option {
	return func(l *QLearner) {
		l.rewards = r
	}
}

func NewQLearner(rng *rand.Rand, options ...Option) *QLearner {
	l := &QLearner{ // Default values
		table:      NewTable(),
		epsilon:    &atomic.Uint64{},
		alpha:      0.9,
		gamma:      0.95,
		decay:      0.9995,
		minEpsilon: 0.01,
		heuristics: DefaultHeuristics(),
		rewards:    DefaultRewards(),
		rng:        rng,
	}
	l.epsilon.Store(math.Float64bits(1))
	for _, option := range options {
		option(l)
	}
	if l.rng == nil {
		panic("learner needs a random source")
	}
	return l
}

func (l *QLearner) Table() *Table {
	return l.table
}

func (l *QLearner) Fork(rng *rand.Rand) Learner {
	fork := *l
	fork.rng = rng
	return &fork
}

func (l *QLearner) Epsilon() float64 {
	return math.Float64frombits(l.epsilon.Load())
}

func (l *QLearner) Key(state *game.State) game.StateKey {
	return state.Key(l.keyOpen)
}

func (l *QLearner) ChooseAction(state *game.State) (game.ActionKind, error) {
	legal := game.LegalActions(state)
	if legal.Len() == 0 {
		return 0, ErrNoLegalAction
	}
	if l.rng.Float64() < l.Epsilon() {
		return randomKind(legal, l.rng)
	}

	row := l.table.Ensure(l.Key(state), l.defaults(state, legal))
	candidates := game.ActionSet(0)
	for a := range row {
		candidates = candidates.Add(a.Kind)
	}
	for candidates.Len() > 0 {
		best := bestKind(row, candidates)
		if legal.Has(best) {
			return best, nil
		}
		candidates = candidates.Remove(best)
	}
	return randomKind(legal, l.rng)
}

// bestKind returns the kind in candidates holding the highest value in row,
// preferring earlier kinds on ties. A placeholder only stands for its kind
// while no concrete action of that kind has a value.
func bestKind(row map[game.Action]float64, candidates game.ActionSet) game.ActionKind {
	var values, priors [4]float64
	var learned game.ActionSet
	for i := range values {
		values[i] = math.Inf(-1)
		priors[i] = math.Inf(-1)
	}
	for a, v := range row {
		if !candidates.Has(a.Kind) {
			continue
		}
		if a.Placeholder() {
			priors[a.Kind] = math.Max(priors[a.Kind], v)
			continue
		}
		values[a.Kind] = math.Max(values[a.Kind], v)
		learned = learned.Add(a.Kind)
	}
	for _, k := range candidates.Kinds() {
		if !learned.Has(k) {
			values[k] = priors[k]
		}
	}

	kinds := candidates.Kinds()
	best := kinds[0]
	for _, k := range kinds[1:] {
		if values[k] > values[best] {
			best = k
		}
	}
	return best
}

// defaults are the entries a row starts with: one placeholder per legal kind,
// standing for the kind until a concrete action of it has been learned.
func (l *QLearner) defaults(state *game.State, legal game.ActionSet) map[game.Action]float64 {
	defaults := make(map[game.Action]float64, legal.Len())
	for _, k := range legal.Kinds() {
		a := game.KindAction(k)
		defaults[a] = 0
		if k == game.ScoreAction && l.optimistic {
			if c, err := BestCategory(state); err == nil {
				defaults[a] = float64(game.Score(c, state.Dice()))
			}
		}
	}
	return defaults
}

func (l *QLearner) ChooseCategory(state *game.State) (game.Category, error) {
	return BestCategory(state)
}

func (l *QLearner) ChooseHold(state *game.State) game.Faces {
	return l.heuristics.BestHold(state, l.rng)
}

func (l *QLearner) ChooseRelease(state *game.State) game.Faces {
	return l.heuristics.BestRelease(state, l.rng)
}

func (l *QLearner) Reward(before *game.State, action game.Action, scored int) float64 {
	return l.rewards.Evaluate(l.heuristics, before, action, scored)
}

// Update applies one Q-learning step for taking action in state and landing
// in next, then decays the exploration rate.
func (l *QLearner) Update(state *game.State, action game.Action, reward float64, next *game.State) {
	future := 0.0
	if next != nil && next.Phase != game.FinalPhase {
		future = l.table.Max(l.Key(next))
	}

	initial := 0.0
	if action.Kind == game.ScoreAction && l.optimistic {
		initial = float64(game.Score(action.Category, state.Dice()))
	}
	l.table.Update(l.Key(state), action, initial, func(q float64) float64 {
		return Target(q, reward, future, l.alpha, l.gamma)
	})
	l.decayEpsilon()
}

// Target is the Q-learning update of q given a reward and the best value
// reachable from the next state.
func Target(q, reward, future, alpha, gamma float64) float64 {
	return q + alpha*(reward+gamma*future-q)
}

func (l *QLearner) decayEpsilon() {
	for {
		old := l.epsilon.Load()
		epsilon := math.Float64frombits(old)
		if epsilon <= l.minEpsilon {
			return
		}
		next := math.Max(l.minEpsilon, epsilon*l.decay)
		if l.epsilon.CompareAndSwap(old, math.Float64bits(next)) {
			return
		}
	}
}
