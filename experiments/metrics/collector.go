package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type EpisodeMetric struct {
	Episode     int
	Worker      int
	TotalReward float64
	Scores      [2]int // Final totals per player
	Turns       int
	Steps       int
	Epsilon     float64 // After the episode
	Finished    bool    // Reached the final phase before the turn cap
	Duration    time.Duration
}

type TrainingMetric struct {
	Workers      int
	Episodes     int
	Steps        int
	Finished     int
	MeanReward   float64
	MeanScore    float64 // Per player per episode
	FinalEpsilon float64
	StartTime    time.Time
	Duration     time.Duration
}

type GameMetric struct {
	Winner     int // Seat, -1 for a tie or an unfinished game
	Scores     [2]int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
	Turns      int
	Fallbacks  int // Illegal choices replaced by a legal one
}

type Collector interface {
	Start(workers int)
	AddEpisode(metric EpisodeMetric)
	Episodes() []EpisodeMetric
	Complete() TrainingMetric
}

type collector struct {
	workers   int
	startTime time.Time
	episodes  atomic.Int32
	steps     atomic.Int64
	finished  atomic.Int32

	mu      sync.Mutex
	reward  float64
	score   int
	records []EpisodeMetric
	latest  int
	lastEps float64
}

// NewCollector keeps aggregate statistics and, when recording is true, every
// episode record.
func NewCollector(recording bool) Collector {
	c := &collector{latest: -1}
	if recording {
		c.records = []EpisodeMetric{}
	}
	return c
}

func (m *collector) Start(workers int) {
	m.startTime = time.Now()
	m.workers = workers
}

func (m *collector) AddEpisode(metric EpisodeMetric) {
	m.episodes.Add(1)
	m.steps.Add(int64(metric.Steps))
	if metric.Finished {
		m.finished.Add(1)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reward += metric.TotalReward
	m.score += metric.Scores[0] + metric.Scores[1]
	if metric.Episode > m.latest {
		m.latest = metric.Episode
		m.lastEps = metric.Epsilon
	}
	if m.records != nil {
		m.records = append(m.records, metric)
	}
}

func (m *collector) Episodes() []EpisodeMetric {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EpisodeMetric(nil), m.records...)
}

func (m *collector) Complete() TrainingMetric {
	m.mu.Lock()
	defer m.mu.Unlock()

	episodes := int(m.episodes.Load())
	metric := TrainingMetric{
		Workers:      m.workers,
		Episodes:     episodes,
		Steps:        int(m.steps.Load()),
		Finished:     int(m.finished.Load()),
		FinalEpsilon: m.lastEps,
		StartTime:    m.startTime,
		Duration:     time.Since(m.startTime),
	}
	if episodes > 0 {
		metric.MeanReward = m.reward / float64(episodes)
		metric.MeanScore = float64(m.score) / float64(2*episodes)
	}
	return metric
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(workers int)               {}
func (m *dummyCollector) AddEpisode(metric EpisodeMetric) {}
func (m *dummyCollector) Episodes() []EpisodeMetric       { return nil }
func (m *dummyCollector) Complete() TrainingMetric        { return TrainingMetric{} }
