// Package config loads run settings from .env files and MSPACMAN_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/EkenoSamson/MsPacman/agent"
)

const Prefix = "MSPACMAN_"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Episodes  int
	Agent     agent.Hyperparameters
	SaveEvery int
	LogEvery  int

	QTableFile string
	DataFile   string
	MetricsDB  string // empty disables the database

	EvalEpisodes int
	MaxSteps     int
	ChartDir     string

	LogLevel  string
	LogFormat string // text or json
}

func Default() Config {
	return Config{
		Episodes:     50000,
		Agent:        agent.DefaultHyperparameters(),
		SaveEvery:    500,
		LogEvery:     100,
		QTableFile:   "q_table.qtb",
		DataFile:     "training_data.json",
		EvalEpisodes: 10,
		MaxSteps:     2000,
		ChartDir:     "charts",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load starts from Default and applies, in increasing priority, the given
// .env files (missing ones are skipped) and the process environment.
func Load(envFiles ...string) (Config, error) {
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		existing = append(existing, f)
	}
	file := map[string]string{}
	if len(existing) > 0 {
		var err error
		if file, err = godotenv.Read(existing...); err != nil {
			return Config{}, fmt.Errorf("read env files: %w", err)
		}
	}

	l := loader{file: file}
	c := Default()
	l.integer("EPISODES", &c.Episodes)
	l.number("ALPHA", &c.Agent.Alpha)
	l.number("GAMMA", &c.Agent.Gamma)
	l.number("EPSILON", &c.Agent.Epsilon)
	l.number("EPSILON_MIN", &c.Agent.EpsilonMin)
	l.number("EPSILON_DECAY", &c.Agent.EpsilonDecay)
	l.integer("SAVE_EVERY", &c.SaveEvery)
	l.integer("LOG_EVERY", &c.LogEvery)
	l.text("Q_TABLE_FILE", &c.QTableFile)
	l.text("DATA_FILE", &c.DataFile)
	l.text("METRICS_DB", &c.MetricsDB)
	l.integer("EVAL_EPISODES", &c.EvalEpisodes)
	l.integer("MAX_STEPS", &c.MaxSteps)
	l.text("CHART_DIR", &c.ChartDir)
	l.text("LOG_LEVEL", &c.LogLevel)
	l.text("LOG_FORMAT", &c.LogFormat)
	if l.err != nil {
		return Config{}, l.err
	}
	return c, c.Validate()
}

type loader struct {
	file map[string]string
	err  error
}

func (l *loader) lookup(name string) (string, bool) {
	key := Prefix + name
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	if v := l.file[key]; v != "" {
		return v, true
	}
	return "", false
}

func (l *loader) text(name string, dst *string) {
	if v, ok := l.lookup(name); ok {
		*dst = v
	}
}

func (l *loader) integer(name string, dst *int) {
	v, ok := l.lookup(name)
	if !ok || l.err != nil {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		l.err = fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalid, Prefix, name, v)
		return
	}
	*dst = n
}

func (l *loader) number(name string, dst *float64) {
	v, ok := l.lookup(name)
	if !ok || l.err != nil {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		l.err = fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalid, Prefix, name, v)
		return
	}
	*dst = f
}

func (c Config) Validate() error {
	positive := map[string]int{
		"episodes":      c.Episodes,
		"save every":    c.SaveEvery,
		"log every":     c.LogEvery,
		"eval episodes": c.EvalEpisodes,
		"max steps":     c.MaxSteps,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, name, v)
		}
	}
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.QTableFile == "" || c.DataFile == "" {
		return fmt.Errorf("%w: q-table and data file paths are required", ErrInvalid)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log format %q, want text or json", ErrInvalid, c.LogFormat)
	}
	return nil
}

// Logger builds a logger with the configured level and format.
func (c Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	log := logrus.New()
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}
