package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type GameRecord struct {
	ID      int
	Learner int // Seat of the learned policy
	GameMetric
}

type Setup struct {
	RunID     string        `yaml:"run_id"`
	Mode      string        `yaml:"mode"`
	Seed      uint64        `yaml:"seed"`
	Config    any           `yaml:"config"`
	StartTime time.Time     `yaml:"start_time"`
	EndTime   time.Time     `yaml:"end_time"`
	Duration  time.Duration `yaml:"duration"`
	Summary   any           `yaml:"summary,omitempty"`
}

type Writer struct {
	baseDir string
}

// NewWriter creates root/name/<timestamp>_<run> for the run's output files.
func NewWriter(root, name, runID string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp+"_"+runID)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) Path(name string) string {
	return filepath.Join(w.baseDir, name)
}

func (w *Writer) WriteSetup(setup Setup) error {
	f, err := os.Create(w.Path("setup.yaml"))
	if err != nil {
		return fmt.Errorf("failed to create setup file: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	defer encoder.Close()
	if err := encoder.Encode(setup); err != nil {
		return fmt.Errorf("failed to write setup: %w", err)
	}
	return nil
}

// writeCSV writes a header line followed by one line per row into the named
// file of the run directory.
func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	f, err := os.Create(w.Path(name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

func (w *Writer) WriteEpisodeRecords(records []EpisodeMetric) error {
	header := []string{"episode", "worker", "total_reward", "score1", "score2", "turns", "steps", "epsilon", "finished", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Episode),
			strconv.Itoa(record.Worker),
			strconv.FormatFloat(record.TotalReward, 'f', 4, 64),
			strconv.Itoa(record.Scores[0]),
			strconv.Itoa(record.Scores[1]),
			strconv.Itoa(record.Turns),
			strconv.Itoa(record.Steps),
			strconv.FormatFloat(record.Epsilon, 'f', 6, 64),
			strconv.FormatBool(record.Finished),
			record.Duration.String(),
		})
	}
	return w.writeCSV("episode_records.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "learner", "winner", "score1", "score2", "turns", "moves", "fallbacks", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Learner),
			strconv.Itoa(record.Winner),
			strconv.Itoa(record.Scores[0]),
			strconv.Itoa(record.Scores[1]),
			strconv.Itoa(record.Turns),
			strconv.Itoa(record.TotalMoves),
			strconv.Itoa(record.Fallbacks),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.writeCSV("game_records.csv", header, rows)
}

// WriteTrainingMetrics writes one line per training run, with the episode
// rate derived from the run's duration.
func (w *Writer) WriteTrainingMetrics(records []TrainingMetric) error {
	header := []string{"workers", "episodes", "steps", "finished", "mean_reward", "mean_score", "final_epsilon", "duration", "episodes_per_second"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rate := 0.0
		if record.Duration > 0 {
			rate = float64(record.Episodes) / record.Duration.Seconds()
		}
		rows = append(rows, []string{
			strconv.Itoa(record.Workers),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Steps),
			strconv.Itoa(record.Finished),
			strconv.FormatFloat(record.MeanReward, 'f', 4, 64),
			strconv.FormatFloat(record.MeanScore, 'f', 2, 64),
			strconv.FormatFloat(record.FinalEpsilon, 'f', 6, 64),
			record.Duration.String(),
			strconv.FormatFloat(rate, 'f', 2, 64),
		})
	}
	return w.writeCSV("training_metrics.csv", header, rows)
}
