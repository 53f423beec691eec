package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/EkenoSamson/MsPacman/agent"
	"github.com/EkenoSamson/MsPacman/mdp"
	"github.com/EkenoSamson/MsPacman/metrics"
)

var (
	evalSeed     int64
	evalEpisodes int
	evalQTable   string
	evalRender   bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Play greedy episodes with a trained q-table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("episodes") {
			settings.EvalEpisodes = evalEpisodes
		}
		if cmd.Flags().Changed("q-table") {
			settings.QTableFile = evalQTable
		}
		if err := settings.Validate(); err != nil {
			return err
		}

		game, enc, err := newEnvironment()
		if err != nil {
			return err
		}
		defer game.Close()

		// epsilon 0: always the greedy action
		greedy := agent.Hyperparameters{EpsilonDecay: 1}
		a, err := agent.New(game.NumActions(), greedy, agent.WithSeed(evalSeed), agent.WithLogger(log))
		if err != nil {
			return err
		}
		if err := a.Load(settings.QTableFile); err != nil {
			if errors.Is(err, agent.ErrTableNotFound) {
				return fmt.Errorf("could not find q-table %s, run train first: %w", settings.QTableFile, err)
			}
			return err
		}

		out := cmd.OutOrStdout()
		var observe func(mdp.Transition)
		if evalRender {
			observe = func(mdp.Transition) {
				game.Render(out, !noColor)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintln(out, au.Bold("--- Starting Evaluation ---"))
		fmt.Fprintf(out, "Loaded %d states from %s, running %d episodes with epsilon 0\n",
			a.Table().Len(), settings.QTableFile, settings.EvalEpisodes)

		scores, err := mdp.Evaluate(ctx, game, enc, a, settings.EvalEpisodes, evalSeed, observe)
		for i, s := range scores {
			fmt.Fprintf(out, "Episode %d Finished. Final Score: %s\n", i+1, au.Green(fmt.Sprintf("%.0f", s)))
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "--- Evaluation Finished. Mean score %.1f ---\n", metrics.Mean(scores))
		return nil
	},
}

func init() {
	f := evaluateCmd.Flags()
	f.Int64Var(&evalSeed, "seed", 1337, "random seed; episode i resets with seed+i")
	f.IntVar(&evalEpisodes, "episodes", 10, "number of episodes (overrides MSPACMAN_EVAL_EPISODES)")
	f.StringVar(&evalQTable, "q-table", "", "q-table file (overrides MSPACMAN_Q_TABLE_FILE)")
	f.BoolVar(&evalRender, "render", false, "draw the maze after every step")
}
