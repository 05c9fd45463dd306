package main

import (
	"fmt"
	"os"

	"serbench/internal/benchmark"
	"serbench/internal/config"
	"serbench/internal/db"
	benchErrors "serbench/internal/errors"
	"serbench/internal/measure"
	"serbench/internal/report"
	"serbench/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exit = os.Exit
var cfgFile string

// Seams replaced in tests.
var (
	newStoreFunc = func(s config.Settings) (benchmark.Store, error) {
		return db.NewStore(s.Store)
	}
	newEngineFunc = func(forceGC bool) *measure.Engine {
		if forceGC {
			return measure.NewEngine()
		}
		return measure.NewEngine(measure.WithoutGC())
	}
	captureEnvFunc = benchmark.CaptureEnvironment
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serbench",
	Short: "Serialization benchmark harness",
	Long: `serbench measures serialization and deserialization time, throughput,
payload size and heap growth of a baseline codec against a candidate codec
over fixed datasets, stores every run and compares runs across runtime
versions.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(benchErrors.ExitFailure)
		}
	}()
	defer telemetry.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(benchErrors.ExitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./serbench.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")
	rootCmd.PersistentFlags().String("store", "", "Record store: file, sqlite or postgres")
	rootCmd.PersistentFlags().String("store-dir", "", "Directory holding stored records")
	rootCmd.PersistentFlags().String("dsn", "", "Connection string for the sqlite or postgres store")

	rootCmd.AddCommand(newRunCmd(), newCompareCmd(), newAnalyzeCmd(), newRecordsCmd(), newCodecsCmd(), newValidateCmd())
	bindFlags()
}

// bindFlags connects flags to their configuration keys.
func bindFlags() {
	bind := func(cmd *cobra.Command, key, flag string) {
		f := cmd.PersistentFlags().Lookup(flag)
		if f == nil {
			f = cmd.Flags().Lookup(flag)
		}
		viper.BindPFlag(key, f)
	}
	bind(rootCmd, "verbose", "verbose")
	bind(rootCmd, "log.file", "log-file")
	bind(rootCmd, "store.type", "store")
	bind(rootCmd, "store.dir", "store-dir")
	bind(rootCmd, "store.dsn", "dsn")

	for _, c := range rootCmd.Commands() {
		switch c.Name() {
		case "run":
			bind(c, "codecs.baseline", "baseline")
			bind(c, "codecs.candidate", "candidate")
			bind(c, "sizes", "sizes")
			bind(c, "measure.round_trip", "round-trip")
			bind(c, "metrics.textfile", "metrics-textfile")
			bind(c, "report.render", "render")
		case "compare":
			bind(c, "compare.operation", "operation")
			bind(c, "compare.role", "role")
			bind(c, "compare.codec", "codec")
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(benchErrors.ExitInvalidConfig)
		return
	}

	// Validate configuration values
	if err := config.ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(benchErrors.ExitInvalidConfig)
		return
	}

	if err := telemetry.InitLogger(viper.GetBool("verbose"), viper.GetString("log.file")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	report.ConfigureColor(os.Stdout)
}

func openStore(s config.Settings) (benchmark.Store, error) {
	store, err := newStoreFunc(s)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", s.Store.Type, err)
	}
	return store, nil
}
