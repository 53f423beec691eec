package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EkenoSamson/MsPacman/agent"
)

// clearEnv blanks every variable Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"EPISODES", "ALPHA", "GAMMA", "EPSILON", "EPSILON_MIN", "EPSILON_DECAY",
		"SAVE_EVERY", "LOG_EVERY", "Q_TABLE_FILE", "DATA_FILE", "METRICS_DB",
		"EVAL_EPISODES", "MAX_STEPS", "CHART_DIR", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(Prefix+name, "")
	}
}

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, 50000, c.Episodes)
	assert.Equal(t, agent.DefaultHyperparameters(), c.Agent)
	assert.Equal(t, "q_table.qtb", c.QTableFile)
	assert.Empty(t, c.MetricsDB)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, `
MSPACMAN_EPISODES=1000
MSPACMAN_ALPHA=0.2
MSPACMAN_Q_TABLE_FILE=from-file.qtb
MSPACMAN_LOG_FORMAT=json
`)
	t.Setenv(Prefix+"EPISODES", "250")
	t.Setenv(Prefix+"EPSILON_DECAY", "0.995")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250, c.Episodes, "environment wins over the file")
	assert.Equal(t, 0.2, c.Agent.Alpha)
	assert.Equal(t, 0.995, c.Agent.EpsilonDecay)
	assert.Equal(t, "from-file.qtb", c.QTableFile)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, 0.99, c.Agent.Gamma)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"EPISODES":   "lots",
		"ALPHA":      "fast",
		"GAMMA":      "1.5",
		"SAVE_EVERY": "0",
		"LOG_LEVEL":  "loud",
		"LOG_FORMAT": "xml",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(Prefix+name, value)
			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestBadHyperparametersKeepAgentError(t *testing.T) {
	c := Default()
	c.Agent.EpsilonDecay = 0
	err := c.Validate()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, agent.ErrInvalidConfig)
}

func TestLogger(t *testing.T) {
	c := Default()
	c.LogLevel = "debug"
	c.LogFormat = "json"
	log, err := c.Logger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	c.LogLevel = "nope"
	_, err = c.Logger()
	assert.ErrorIs(t, err, ErrInvalid)
}
