package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"yahtzee/experiments"
	"yahtzee/gamemaster"
	"yahtzee/meta"
	"yahtzee/policy"
	"yahtzee/policy/tablefile"
)

func main() {
	mode := flag.String("mode", "train", "train, eval, throughput or play")
	configPath := flag.String("config", "", "YAML config file")
	episodes := flag.Int("episodes", 0, "training episodes (overrides config)")
	turns := flag.Int("turns", 0, "max turns per episode (overrides config)")
	workers := flag.Int("workers", 0, "concurrent workers (overrides config)")
	table := flag.String("table", "", "value table path (overrides config)")
	out := flag.String("out", "", "output directory (overrides config)")
	games := flag.Int("games", 0, "evaluation games (overrides config)")
	resume := flag.Bool("resume", false, "continue training from the saved table")
	scaling := flag.String("scaling", "1,2,4,8", "worker counts for the throughput experiment")
	seat := flag.Int("seat", 0, "human seat in play mode, 0 moves first")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal().Err(err).Msg("failed to load .env")
	}

	cfg := meta.Default()
	if *configPath != "" {
		loaded, err := meta.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatal().Err(err).Msg("invalid environment")
	}

	if *episodes > 0 {
		cfg.Training.Episodes = *episodes
	}
	if *turns > 0 {
		cfg.Training.MaxTurns = *turns
	}
	if *workers > 0 {
		cfg.Training.Workers = *workers
		cfg.Evaluation.Workers = *workers
	}
	if *table != "" {
		cfg.Training.TablePath = *table
	}
	if *out != "" {
		cfg.Training.OutDir = *out
	}
	if *games > 0 {
		cfg.Evaluation.Games = *games
	}
	if *resume {
		cfg.Training.Resume = true
	}

	runID := uuid.NewString()
	logger := setupLogger(cfg.Logging).With().Str("run", runID).Logger()
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.WithContext(ctx)

	seed := cfg.ResolveSeed()
	logger.Info().Msgf("starting %s with seed %d", *mode, seed)

	switch *mode {
	case "train":
		if _, err := experiments.RunTraining(ctx, cfg, runID); err != nil {
			logger.Fatal().Err(err).Msg("training failed")
		}
	case "eval":
		t, err := tablefile.LoadFile(cfg.Training.TablePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load table")
		}
		if _, err := experiments.RunEvaluation(ctx, cfg, t, runID); err != nil {
			logger.Fatal().Err(err).Msg("evaluation failed")
		}
	case "throughput":
		counts, err := parseCounts(*scaling)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid worker counts")
		}
		if _, err := experiments.RunThroughputExperiment(ctx, cfg, runID, counts); err != nil {
			logger.Fatal().Err(err).Msg("throughput experiment failed")
		}
	case "play":
		if err := play(cfg, seed, *seat); err != nil {
			logger.Fatal().Err(err).Msg("play failed")
		}
	default:
		logger.Fatal().Msgf("unknown mode %q", *mode)
	}
}

// play runs a console game against the greedy policy of the saved table, or
// against an untrained one when no table exists yet.
func play(cfg meta.Config, seed uint64, seat int) error {
	if seat != 0 && seat != 1 {
		return fmt.Errorf("seat must be 0 or 1, got %d", seat)
	}
	table, err := tablefile.LoadFile(cfg.Training.TablePath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Msgf("no table at %s, the computer plays untrained", cfg.Training.TablePath)
		table = policy.NewTable()
	} else if err != nil {
		return err
	}

	if n := policy.MismatchedKeys(table, cfg.Policy.KeyOpenCategories); n > 0 {
		log.Warn().Msgf("%d table rows do not match key_open_categories=%t", n, cfg.Policy.KeyOpenCategories)
	}

	options := append(cfg.PolicyOptions(),
		policy.WithTable(table),
		policy.WithEpsilon(0),
		policy.WithMinEpsilon(0),
	)
	ai := policy.NewQLearner(rand.New(rand.NewSource(seed)), options...)
	e := gamemaster.NewLocalEngine(rand.New(rand.NewSource(seed+1)), ai, seat)
	return gamemaster.RunConsole(e, os.Stdin, os.Stdout)
}

func setupLogger(cfg meta.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Console {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func parseCounts(s string) ([]int, error) {
	counts := []int{}
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, errors.New("worker counts must be positive")
		}
		counts = append(counts, n)
	}
	return counts, nil
}
