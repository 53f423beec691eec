// Command mspacman trains and evaluates a tabular Q-learning agent on the
// maze game and plots the results.
package main

import (
	"fmt"
	"os"

	"github.com/logrusorgru/aurora"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/EkenoSamson/MsPacman/config"
)

var (
	envFile  string
	logLevel string
	noColor  bool

	settings config.Config
	log      *logrus.Logger
	au       aurora.Aurora
)

var rootCmd = &cobra.Command{
	Use:   "mspacman",
	Short: "Tabular Q-learning for Ms. Pac-Man",
	Long: `mspacman learns to play a Ms. Pac-Man style maze from the game's RAM.

The state is four features read out of RAM: the distance to the nearest
ghost, the distance to the fruit, the facing direction and how many dots
have been eaten. The agent keeps one value per action for every state.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if settings, err = config.Load(envFile); err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			settings.LogLevel = logLevel
		}
		if log, err = settings.Logger(); err != nil {
			return err
		}
		au = aurora.NewAurora(!noColor)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with MSPACMAN_* settings")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (overrides MSPACMAN_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(trainCmd, evaluateCmd, plotCmd, runsCmd, inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
