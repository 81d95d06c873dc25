package main

import (
	"bytes"
	"errors"
	stdlog "log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/aleister1102/isolatedaudit/internal/datastore"
	"github.com/aleister1102/isolatedaudit/internal/reporter"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "isolatedaudit", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	runs := cmd.Flags().Lookup(flagNumberOfRuns)
	require.NotNil(t, runs)
	assert.Equal(t, "5", runs.DefValue)

	url := cmd.Flags().Lookup(flagURL)
	require.NotNil(t, url)
	assert.Equal(t, "https://brainly.com/question/1713545", url.DefValue)

	cfgFlag := cmd.PersistentFlags().Lookup(flagConfig)
	require.NotNil(t, cfgFlag)
	assert.Equal(t, "c", cfgFlag.Shorthand)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "history")
}

func TestLoadConfig_DefaultsWhenNothingSet(t *testing.T) {
	t.Setenv(config.EnvConfigPath, writeConfig(t, "{}\n"))

	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRunNumberOfRuns, cfg.RunConfig.NumberOfRuns)
	assert.Equal(t, config.DefaultRunURL, cfg.RunConfig.URL)
	assert.Equal(t, config.FailurePolicySkip, cfg.RunConfig.FailurePolicy)
	assert.True(t, cfg.BrowserConfig.Headless)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, `
run:
  url: https://example.com/from-file
  number_of_runs: 7
  failure_policy: abort
browser:
  headless: true
`)

	t.Run("file over defaults", func(t *testing.T) {
		cmd := NewRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"-c", path}))

		cfg, err := loadConfig(cmd)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/from-file", cfg.RunConfig.URL)
		assert.Equal(t, 7, cfg.RunConfig.NumberOfRuns)
		assert.Equal(t, config.FailurePolicyAbort, cfg.RunConfig.FailurePolicy)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("ISOLATEDAUDIT_RUNS", "4")

		cmd := NewRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--config", path}))

		cfg, err := loadConfig(cmd)
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.RunConfig.NumberOfRuns)
		assert.Equal(t, "https://example.com/from-file", cfg.RunConfig.URL)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("ISOLATEDAUDIT_RUNS", "4")

		cmd := NewRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{
			"--config", path,
			"--numberOfRuns", "2",
			"--failure-policy", "skip",
			"--headless=false",
			"--backend", "lighthouse",
			"--filename", "out/batch.csv",
			"--log-level", "debug",
		}))

		cfg, err := loadConfig(cmd)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.RunConfig.NumberOfRuns)
		assert.Equal(t, config.FailurePolicySkip, cfg.RunConfig.FailurePolicy)
		assert.False(t, cfg.BrowserConfig.Headless)
		assert.Equal(t, config.BackendLighthouse, cfg.AuditConfig.Backend)
		assert.Equal(t, "out/batch.csv", cfg.RunConfig.ResolveFilename(time.Now()))
		assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
		assert.Equal(t, "https://example.com/from-file", cfg.RunConfig.URL, "unset flags must not override the file")
	})
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}))

	_, err := loadConfig(cmd)
	assert.Error(t, err)
}

func TestLoadConfig_NormalizesURL(t *testing.T) {
	t.Setenv(config.EnvConfigPath, writeConfig(t, "{}\n"))

	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--url", "  Example.COM/page#top "}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", cfg.RunConfig.URL)
	assert.NoError(t, config.ValidateConfig(cfg))
}

func TestRunBatch_UnwritableOutputFailsFirst(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := config.NewDefaultGlobalConfig()
	cfg.RunConfig.Filename = filepath.Join(blocker, "out.csv")

	err := runBatch(t.Context(), cfg, "batch-1", zerolog.Nop())
	var fwErr *reporter.FileWriteError
	require.True(t, errors.As(err, &fwErr))
	assert.Equal(t, cfg.RunConfig.Filename, fwErr.Path)
}

func TestRedirectStdLog(t *testing.T) {
	prevOut, prevFlags := stdlog.Writer(), stdlog.Flags()
	t.Cleanup(func() {
		stdlog.SetOutput(prevOut)
		stdlog.SetFlags(prevFlags)
	})

	var buf bytes.Buffer
	redirectStdLog(zerolog.New(&buf))
	stdlog.Print("from a library")

	assert.Contains(t, buf.String(), `"message":"from a library"`)
}

func TestRunBatchCmd_InvalidConfig(t *testing.T) {
	t.Setenv(config.EnvConfigPath, writeConfig(t, "{}\n"))

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--numberOfRuns", "0"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NumberOfRuns")
}

func TestHistoryCmd(t *testing.T) {
	t.Setenv(config.EnvConfigPath, writeConfig(t, "{}\n"))
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := datastore.NewHistoryStore(dbPath, zerolog.Nop())
	require.NoError(t, err)
	_, err = store.RecordBatch(t.Context(), datastore.BatchRecord{
		ID:           "batch-1",
		URL:          "https://example.com",
		NumberOfRuns: 2,
		Patterns:     []string{"", "*ads*"},
		StartedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:   time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC),
		Status:       datastore.BatchStatusCompleted,
		CSVPath:      "results/out.csv",
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"history", "--db", dbPath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "batch-1")
	assert.Contains(t, out.String(), "COMPLETED")
	assert.Contains(t, out.String(), "results/out.csv")
}

func TestHistoryCmd_NoDatabase(t *testing.T) {
	t.Setenv(config.EnvConfigPath, writeConfig(t, "{}\n"))

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"history"})
	assert.Error(t, cmd.Execute())
}

func TestPrintBatches_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printBatches(&out, nil))
	assert.Equal(t, "No batches recorded.\n", out.String())
}
