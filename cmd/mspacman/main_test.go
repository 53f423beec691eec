package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EkenoSamson/MsPacman/metrics"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--no-color", "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := rootCmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for k, v := range map[string]string{
		"EPISODES":      "6",
		"SAVE_EVERY":    "2",
		"LOG_EVERY":     "3",
		"MAX_STEPS":     "40",
		"EVAL_EPISODES": "2",
		"Q_TABLE_FILE":  filepath.Join(dir, "q.qtb"),
		"DATA_FILE":     filepath.Join(dir, "data.json"),
		"METRICS_DB":    filepath.Join(dir, "metrics.db"),
		"CHART_DIR":     filepath.Join(dir, "charts"),
		"LOG_LEVEL":     "error",
	} {
		t.Setenv("MSPACMAN_"+k, v)
	}
	return dir
}

func TestTrainEvaluatePlot(t *testing.T) {
	dir := setupEnv(t)

	out, err := execute(t, "train", "--seed", "7")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Episode:     3 | Avg Reward (last 3)")
	assert.Contains(t, out, "Episode:     6")
	assert.Contains(t, out, "Training Finished")
	assert.FileExists(t, filepath.Join(dir, "q.qtb"))

	data, err := metrics.LoadJSON(filepath.Join(dir, "data.json"))
	require.NoError(t, err)
	assert.Equal(t, 6, data.Episodes())
	assert.Equal(t, int64(7), data.Seed)

	out, err = execute(t, "evaluate", "--seed", "3")
	require.NoError(t, err, out)
	assert.Equal(t, 2, strings.Count(out, "Final Score"))
	assert.Contains(t, out, "Mean score")

	out, err = execute(t, "plot", "--window", "2")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Total episodes: 6")
	assert.FileExists(t, filepath.Join(dir, "charts", metrics.PerformanceChart))
	assert.FileExists(t, filepath.Join(dir, "charts", metrics.DistributionChart))

	out, err = execute(t, "runs")
	require.NoError(t, err, out)
	assert.Contains(t, out, data.RunID.String())

	out, err = execute(t, "plot", "--window", "2", "--run", data.RunID.String())
	require.NoError(t, err, out)
	assert.Contains(t, out, "Total episodes: 6")
}

func TestEvaluateWithoutTable(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "evaluate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run train first")
}

func TestInspect(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "inspect", "--steps", "100", "--seed", "5")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Step:   100")
	assert.Contains(t, out, "Game over.")
}

func TestBadEnvironment(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("MSPACMAN_ALPHA", "2")

	_, err := execute(t, "train")
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "q.qtb"))
}
