package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/EkenoSamson/MsPacman/agent"
	"github.com/EkenoSamson/MsPacman/features"
	"github.com/EkenoSamson/MsPacman/maze"
	"github.com/EkenoSamson/MsPacman/mdp"
	"github.com/EkenoSamson/MsPacman/metrics"
)

var (
	trainSeed     int64
	trainEpisodes int
	trainQTable   string
	trainData     string
	trainDB       string
	trainResume   bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the agent on the maze",
	Long: `Train runs Q-learning episodes on the maze, resetting episode i with seed+i.

The q-table is checkpointed every MSPACMAN_SAVE_EVERY episodes and when
training stops. Interrupting with Ctrl-C stops after the current episode and
still saves the table and the per-episode data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("episodes") {
			settings.Episodes = trainEpisodes
		}
		if flags.Changed("q-table") {
			settings.QTableFile = trainQTable
		}
		if flags.Changed("data") {
			settings.DataFile = trainData
		}
		if flags.Changed("db") {
			settings.MetricsDB = trainDB
		}
		if err := settings.Validate(); err != nil {
			return err
		}

		game, enc, err := newEnvironment()
		if err != nil {
			return err
		}
		defer game.Close()

		a, err := agent.New(game.NumActions(), settings.Agent, agent.WithSeed(trainSeed), agent.WithLogger(log))
		if err != nil {
			return err
		}
		if trainResume {
			err := a.Load(settings.QTableFile)
			switch {
			case errors.Is(err, agent.ErrTableNotFound):
				log.WithField("path", settings.QTableFile).Warn("no q-table to resume from, starting fresh")
			case err != nil:
				return err
			}
		}

		data := metrics.NewTrainingData(trainSeed)
		var store *metrics.Store
		if settings.MetricsDB != "" {
			if store, err = metrics.OpenStore(settings.MetricsDB); err != nil {
				return err
			}
			defer store.Close()
			if err := store.StartRun(data); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, au.Bold("--- Starting Training ---"))
		fmt.Fprintf(out, "Running for %d episodes with seed %d (run %s)\n", settings.Episodes, trainSeed, data.RunID)

		_, err = mdp.Train(ctx, game, enc, a, mdp.TrainOptions{
			Episodes:  settings.Episodes,
			Seed:      trainSeed,
			LogEvery:  settings.LogEvery,
			SaveEvery: settings.SaveEvery,
			Checkpoint: func(int) error {
				return a.Save(settings.QTableFile)
			},
			OnEpisode: func(n int, ep mdp.Episode, epsilon float64) error {
				if n%settings.LogEvery == 0 {
					fmt.Fprintf(out, "Episode: %5d | Avg Reward (last %d): %6.1f | Epsilon: %.3f\n",
						n, settings.LogEvery, metrics.Mean(metrics.Tail(data.Rewards, settings.LogEvery)), au.Cyan(epsilon))
				}
				if store == nil {
					return nil
				}
				return store.RecordEpisode(data.RunID, n, ep.TotalReward, epsilon)
			},
			Data: data,
			Log:  log,
		})
		interrupted := errors.Is(err, context.Canceled)
		if err != nil && !interrupted {
			return err
		}

		if err := data.SaveJSON(settings.DataFile); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"path": settings.DataFile, "episodes": data.Episodes()}).Info("training data saved")
		if interrupted {
			fmt.Fprintln(out, au.Yellow(fmt.Sprintf("--- Training interrupted after %d episodes ---", data.Episodes())))
			return nil
		}
		fmt.Fprintln(out, au.Green(fmt.Sprintf("--- Training Finished. Data saved to %s ---", settings.DataFile)))
		return nil
	},
}

func init() {
	f := trainCmd.Flags()
	f.Int64Var(&trainSeed, "seed", 42, "random seed; episode i resets with seed+i")
	f.IntVar(&trainEpisodes, "episodes", 0, "number of episodes (overrides MSPACMAN_EPISODES)")
	f.StringVar(&trainQTable, "q-table", "", "q-table file (overrides MSPACMAN_Q_TABLE_FILE)")
	f.StringVar(&trainData, "data", "", "training data file (overrides MSPACMAN_DATA_FILE)")
	f.StringVar(&trainDB, "db", "", "sqlite metrics database (overrides MSPACMAN_METRICS_DB)")
	f.BoolVar(&trainResume, "resume", false, "continue from an existing q-table")
}

// newEnvironment builds the maze and the state encoder shared by every
// command.
func newEnvironment() (*maze.Game, *features.Encoder, error) {
	cfg := maze.DefaultConfig()
	cfg.MaxSteps = settings.MaxSteps
	game, err := maze.New(cfg, maze.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	enc, err := features.NewEncoder(features.DefaultConfig())
	if err != nil {
		return nil, nil, err
	}
	return game, enc, nil
}
