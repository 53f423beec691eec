package mdp

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/EkenoSamson/MsPacman/metrics"
)

type TrainOptions struct {
	Episodes  int
	Seed      int64 // episode i is reset with Seed+i
	LogEvery  int   // 0 disables progress logging
	SaveEvery int   // 0 only checkpoints at the end

	// Checkpoint persists the learner; it runs every SaveEvery episodes and
	// once when training stops.
	Checkpoint func(episodes int) error
	// OnEpisode runs after each episode with its 1-based number.
	OnEpisode func(episode int, ep Episode, epsilon float64) error

	// Data is appended to when set, otherwise a new run is started.
	Data *metrics.TrainingData
	Log  logrus.FieldLogger
}

// Train runs opts.Episodes learning episodes, decaying epsilon after each.
// Cancellation is honoured between episodes; the data gathered so far is
// returned with ctx.Err() after a final checkpoint.
func Train(ctx context.Context, env Environment, enc Encoder, l Learner, opts TrainOptions) (*metrics.TrainingData, error) {
	if opts.Episodes < 0 {
		return nil, fmt.Errorf("negative episode count %d", opts.Episodes)
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	data := opts.Data
	if data == nil {
		data = metrics.NewTrainingData(opts.Seed)
	}
	log = log.WithField("run_id", data.RunID)

	checkpoint := func() error {
		if opts.Checkpoint == nil {
			return nil
		}
		if err := opts.Checkpoint(data.Episodes()); err != nil {
			return fmt.Errorf("checkpoint after %d episodes: %w", data.Episodes(), err)
		}
		return nil
	}

	log.WithFields(logrus.Fields{"episodes": opts.Episodes, "seed": opts.Seed}).Info("training started")
	for i := 0; i < opts.Episodes; i++ {
		if err := ctx.Err(); err != nil {
			log.WithField("episode", i).Warn("training interrupted")
			if cerr := checkpoint(); cerr != nil {
				return data, cerr
			}
			return data, err
		}

		ep, err := RunEpisode(env, enc, l, opts.Seed+int64(i), nil)
		if err != nil {
			return data, fmt.Errorf("episode %d: %w", i+1, err)
		}
		l.DecayEpsilon()
		data.Append(ep.TotalReward, l.Epsilon())

		n := i + 1
		if opts.OnEpisode != nil {
			if err := opts.OnEpisode(n, ep, l.Epsilon()); err != nil {
				return data, err
			}
		}
		if opts.LogEvery > 0 && n%opts.LogEvery == 0 {
			log.WithFields(logrus.Fields{
				"episode":    n,
				"avg_reward": metrics.Mean(metrics.Tail(data.Rewards, opts.LogEvery)),
				"epsilon":    l.Epsilon(),
			}).Info("training progress")
		}
		if opts.SaveEvery > 0 && n%opts.SaveEvery == 0 && n != opts.Episodes {
			if err := checkpoint(); err != nil {
				return data, err
			}
		}
	}

	if err := checkpoint(); err != nil {
		return data, err
	}
	log.WithField("episodes", data.Episodes()).Info("training finished")
	return data, nil
}

// Evaluate plays episodes without learning, episode i reset with seed+i,
// and returns each episode's score. p should already be greedy.
func Evaluate(ctx context.Context, env Environment, enc Encoder, p Policy, episodes int, seed int64, observe func(Transition)) ([]float64, error) {
	p = Frozen(p)
	scores := make([]float64, 0, episodes)
	for i := 0; i < episodes; i++ {
		if err := ctx.Err(); err != nil {
			return scores, err
		}
		ep, err := RunEpisode(env, enc, p, seed+int64(i), observe)
		if err != nil {
			return scores, fmt.Errorf("episode %d: %w", i+1, err)
		}
		scores = append(scores, ep.TotalReward)
	}
	return scores, nil
}
