// Package metrics records what happened during training and turns it into
// charts and summary statistics.
package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("training data not found")
	ErrDecode   = errors.New("training data unreadable")
)

// TrainingData is one run's per-episode scores and the exploration rate
// recorded after each episode.
type TrainingData struct {
	RunID     uuid.UUID `json:"run_id"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
	Rewards   []float64 `json:"rewards"`
	Epsilons  []float64 `json:"epsilons"`
}

func NewTrainingData(seed int64) *TrainingData {
	return &TrainingData{
		RunID:     uuid.New(),
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
	}
}

func (d *TrainingData) Append(reward, epsilon float64) {
	d.Rewards = append(d.Rewards, reward)
	d.Epsilons = append(d.Epsilons, epsilon)
}

func (d *TrainingData) Episodes() int { return len(d.Rewards) }

// Validate checks that the epsilon series is either absent or parallel to
// the rewards.
func (d *TrainingData) Validate() error {
	if len(d.Epsilons) != 0 && len(d.Epsilons) != len(d.Rewards) {
		return fmt.Errorf("%d rewards but %d epsilons", len(d.Rewards), len(d.Epsilons))
	}
	return nil
}

func (d *TrainingData) SaveJSON(path string) error {
	if err := d.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func LoadJSON(path string) (*TrainingData, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	var d TrainingData
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &d, nil
}
