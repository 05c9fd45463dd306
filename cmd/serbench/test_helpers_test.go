package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"serbench/internal/benchmark"
	benchErrors "serbench/internal/errors"
	"serbench/internal/report"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// mockStore is an in-memory benchmark.Store.
type mockStore struct {
	saved    []benchmark.RunRecord
	failSave bool
}

func (m *mockStore) Save(rec benchmark.RunRecord) (string, error) {
	if m.failSave {
		return "", fmt.Errorf("disk full")
	}
	m.saved = append(m.saved, rec)
	return benchmark.FormatKey("serbench-run", int64(len(m.saved))), nil
}

func (m *mockStore) LoadAll(match benchmark.Match) ([]benchmark.Entry, error) {
	return nil, benchErrors.ErrNoRecordsFound
}

func (m *mockStore) LoadValid(match benchmark.Match) ([]benchmark.Entry, []*benchErrors.CorruptRecordError, error) {
	return nil, nil, benchErrors.ErrNoRecordsFound
}

func (m *mockStore) Close() error { return nil }

// testEnv points the configuration at a temporary directory with a tiny
// plan so runs finish quickly.
type testEnv struct {
	dir      string
	storeDir string
	repDir   string
}

func setupTest(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)

	env := testEnv{
		dir:      dir,
		storeDir: filepath.Join(dir, "results"),
		repDir:   filepath.Join(dir, "reports"),
	}
	t.Setenv("SERBENCH_STORE_DIR", env.storeDir)
	t.Setenv("SERBENCH_REPORT_DIR", env.repDir)
	t.Setenv("SERBENCH_SIZES", "small")
	t.Setenv("SERBENCH_PLAN_SMALL_ITERATIONS", "5")
	t.Setenv("SERBENCH_PLAN_SMALL_WARMUP", "1")
	t.Setenv("SERBENCH_MEASURE_FORCE_GC", "false")

	viper.Reset()
	bindFlags()
	cfgFile = ""
	report.DisableColor()

	origStore, origEngine, origEnv, origAsk := newStoreFunc, newEngineFunc, captureEnvFunc, askOne
	captureEnvFunc = func() benchmark.Environment {
		return benchmark.Environment{RuntimeVersion: "go1.25.0", Platform: "linux/amd64", CPU: "Test CPU", Memory: "16.0 GB"}
	}
	t.Cleanup(func() {
		newStoreFunc, newEngineFunc, captureEnvFunc, askOne = origStore, origEngine, origEnv, origAsk
		viper.Reset()
		bindFlags()
	})
	return env
}

// executeCommand runs the root command with args and returns its combined
// output, the exit code requested by initConfig and the returned error.
func executeCommand(root *cobra.Command, args ...string) (output string, code int, err error) {
	resetFlags(root)
	b := new(bytes.Buffer)

	// Mock exit
	oldExit := exit
	exit = func(c int) {
		if c != 0 {
			panic(fmt.Sprintf("exit-%d", c))
		}
	}
	defer func() { exit = oldExit }()
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "exit-") {
				fmt.Sscanf(s, "exit-%d", &code)
				output = b.String()
				return
			}
			panic(r)
		}
	}()

	root.SetArgs(args)
	root.SetOut(b)
	root.SetErr(b)
	root.SetIn(bytes.NewBufferString(""))
	err = root.Execute()
	return b.String(), 0, err
}

// resetFlags resets all flags to their default values.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func sampleRecord(version string, avg float64) benchmark.RunRecord {
	pct := 60.0
	op := func(a float64) benchmark.OperationResult {
		return benchmark.OperationResult{
			Baseline:  benchmark.Stats{AvgTime: a, OpsPerSec: 1000 / a},
			Candidate: benchmark.Stats{AvgTime: a / 2, OpsPerSec: 2000 / a},
		}
	}
	return benchmark.RunRecord{
		RunID:     "run-" + version,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Environment: benchmark.Environment{
			RuntimeVersion: version,
			Platform:       "linux/amd64",
			CPU:            "Test CPU",
			Memory:         "16.0 GB",
		},
		BaselineCodec:  "json",
		CandidateCodec: "protobuf",
		Results: map[string]benchmark.SizeResult{
			"small": {
				Iterations:      100,
				Warmup:          10,
				Size:            benchmark.SizeFigures{BaselineBytes: 1000, CandidateBytes: 400, CompressionPercent: &pct},
				Serialization:   op(avg),
				Deserialization: op(avg * 2),
			},
		},
	}
}

// seedRecords stores one record per version and returns their keys.
func seedRecords(t *testing.T, dir string, versions map[string]float64, order ...string) []string {
	t.Helper()
	store, err := benchmark.NewFileStore(dir, "serbench-run")
	require.NoError(t, err)
	var keys []string
	for _, v := range order {
		key, err := store.Save(sampleRecord(v, versions[v]))
		require.NoError(t, err)
		keys = append(keys, key)
	}
	return keys
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
