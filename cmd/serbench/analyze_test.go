package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	benchErrors "serbench/internal/errors"
	"serbench/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCmd(t *testing.T) {
	env := setupTest(t)
	keys := seedRecords(t, env.storeDir, versions, "go1.21.0", "go1.22.0")

	t.Run("latest", func(t *testing.T) {
		output, _, err := executeCommand(rootCmd, "analyze")
		require.NoError(t, err)
		assert.Contains(t, output, "Record: "+keys[1])
		_, err = os.Stat(filepath.Join(env.repDir, report.AnalysisFile(keys[1])))
		assert.NoError(t, err)
	})

	t.Run("by key", func(t *testing.T) {
		output, _, err := executeCommand(rootCmd, "analyze", keys[0])
		require.NoError(t, err)
		assert.Contains(t, output, "Record: "+keys[0])
	})

	t.Run("unknown key", func(t *testing.T) {
		_, _, err := executeCommand(rootCmd, "analyze", "serbench-run-missing.json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, benchErrors.ErrNoRecordsFound))
	})
}

func TestAnalyzeCmd_NoRecords(t *testing.T) {
	setupTest(t)

	_, _, err := executeCommand(rootCmd, "analyze")
	assert.True(t, errors.Is(err, benchErrors.ErrNoRecordsFound))
}

func TestAnalyzeCmd_MarkdownDisabled(t *testing.T) {
	env := setupTest(t)
	t.Setenv("SERBENCH_REPORT_MARKDOWN", "false")
	seedRecords(t, env.storeDir, versions, "go1.21.0")

	output, _, err := executeCommand(rootCmd, "analyze")
	require.NoError(t, err)
	assert.NotContains(t, output, "Analysis written to")
	_, statErr := os.Stat(env.repDir)
	assert.True(t, os.IsNotExist(statErr))
}
