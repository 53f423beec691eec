package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/EkenoSamson/MsPacman/maze"
)

var (
	inspectSteps int
	inspectSeed  int64
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Play random actions and print the encoded state after each step",
	RunE: func(cmd *cobra.Command, args []string) error {
		game, enc, err := newEnvironment()
		if err != nil {
			return err
		}
		defer game.Close()

		rng := rand.New(rand.NewSource(inspectSeed))
		episode := int64(0)
		if _, err := game.Reset(inspectSeed); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Playing random actions, printing the state after each step.")
		for step := 1; step <= inspectSteps; step++ {
			action := maze.Action(rng.Intn(game.NumActions()))
			res, err := game.Step(int(action))
			if err != nil {
				return err
			}
			state := enc.Encode(&res.Observation)
			fmt.Fprintf(out, "\rStep: %5d | Action: %-9s | State: %s   ", step, action, au.Cyan(state))

			if res.Terminated || res.Truncated {
				fmt.Fprintf(out, "\n%s score %.0f\n", au.Yellow("Game over."), game.Score())
				episode++
				if _, err := game.Reset(inspectSeed + episode); err != nil {
					return err
				}
			}
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectSteps, "steps", 2000, "number of steps to play")
	inspectCmd.Flags().Int64Var(&inspectSeed, "seed", 0, "random seed")
}
