// meta/meta.go
package meta

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"yahtzee/policy"
)

// GO_ROUTINES defines the number of training workers.
const GO_ROUTINES = 8

// EPISODES defines the number of self-play training episodes.
const EPISODES = 10000

// MAX_TURNS caps the turns of one episode; a full game takes 26.
const MAX_TURNS = 30

// MAX_STEPS_PER_TURN forces a score once a turn has taken this many actions.
const MAX_STEPS_PER_TURN = 20

type Config struct {
	Seed       uint64           `yaml:"seed"` // 0 draws a fresh seed
	Logging    LoggingConfig    `yaml:"logging"`
	Policy     PolicyConfig     `yaml:"policy"`
	Training   TrainingConfig   `yaml:"training"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

type PolicyConfig struct {
	Alpha             float64           `yaml:"alpha"`
	Gamma             float64           `yaml:"gamma"`
	Epsilon           float64           `yaml:"epsilon"`
	EpsilonDecay      float64           `yaml:"epsilon_decay"`
	MinEpsilon        float64           `yaml:"min_epsilon"`
	KeyOpenCategories bool              `yaml:"key_open_categories"`
	OptimisticSeed    bool              `yaml:"optimistic_seed"`
	Heuristics        policy.Heuristics `yaml:"heuristics"`
	Rewards           policy.Rewards    `yaml:"rewards"`
}

type TrainingConfig struct {
	Episodes        int    `yaml:"episodes"`
	MaxTurns        int    `yaml:"max_turns"`
	MaxStepsPerTurn int    `yaml:"max_steps_per_turn"`
	Workers         int    `yaml:"workers"`
	LogEvery        int    `yaml:"log_every"`
	TablePath       string `yaml:"table_path"`
	Resume          bool   `yaml:"resume"`
	OutDir          string `yaml:"out_dir"`
	RecordEpisodes  bool   `yaml:"record_episodes"`
}

type EvaluationConfig struct {
	Games   int `yaml:"games"`
	Workers int `yaml:"workers"`
}

func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		Policy: PolicyConfig{
			Alpha:        0.9,
			Gamma:        0.95,
			Epsilon:      1,
			EpsilonDecay: 0.9995,
			MinEpsilon:   0.01,
			Heuristics:   policy.DefaultHeuristics(),
			Rewards:      policy.DefaultRewards(),
		},
		Training: TrainingConfig{
			Episodes:        EPISODES,
			MaxTurns:        MAX_TURNS,
			MaxStepsPerTurn: MAX_STEPS_PER_TURN,
			Workers:         GO_ROUTINES,
			LogEvery:        100,
			TablePath:       "q_table.csv",
			OutDir:          "experiments",
			RecordEpisodes:  true,
		},
		Evaluation: EvaluationConfig{
			Games:   200,
			Workers: GO_ROUTINES,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from YAHTZEE_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("YAHTZEE_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse YAHTZEE_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("YAHTZEE_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse YAHTZEE_WORKERS: %w", err)
		}
		c.Training.Workers = workers
		c.Evaluation.Workers = workers
	}
	if v := os.Getenv("YAHTZEE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return c.Validate()
}

func (c Config) Validate() error {
	p := c.Policy
	if p.Alpha <= 0 || p.Alpha > 1 {
		return fmt.Errorf("alpha %v outside (0, 1]", p.Alpha)
	}
	if p.Gamma < 0 || p.Gamma > 1 {
		return fmt.Errorf("gamma %v outside [0, 1]", p.Gamma)
	}
	if p.Epsilon < 0 || p.Epsilon > 1 || p.MinEpsilon < 0 || p.MinEpsilon > 1 {
		return fmt.Errorf("epsilon %v and min epsilon %v must lie in [0, 1]", p.Epsilon, p.MinEpsilon)
	}
	if p.EpsilonDecay <= 0 || p.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay %v outside (0, 1]", p.EpsilonDecay)
	}
	if c.Training.Workers < 1 || c.Evaluation.Workers < 1 {
		return fmt.Errorf("need at least one worker")
	}
	if c.Training.MaxTurns < 1 || c.Training.MaxStepsPerTurn < 1 {
		return fmt.Errorf("turn and step caps must be positive")
	}
	return nil
}

// ResolveSeed returns the configured seed, drawing and storing a random one
// when none is set so the run can be replayed from its setup file.
func (c *Config) ResolveSeed() uint64 {
	if c.Seed == 0 {
		c.Seed = frand.Uint64n(math.MaxUint64) + 1
	}
	return c.Seed
}

// PolicyOptions converts the policy settings into learner options.
func (c Config) PolicyOptions() []policy.Option {
	p := c.Policy
	options := []policy.Option{
		policy.WithAlpha(p.Alpha),
		policy.WithGamma(p.Gamma),
		policy.WithEpsilon(p.Epsilon),
		policy.WithEpsilonDecay(p.EpsilonDecay),
		policy.WithMinEpsilon(p.MinEpsilon),
		policy.WithHeuristics(p.Heuristics),
		policy.WithRewards(p.Rewards),
	}
	if p.KeyOpenCategories {
		options = append(options, policy.WithOpenCategories())
	}
	if p.OptimisticSeed {
		options = append(options, policy.WithOptimisticSeed())
	}
	return options
}
