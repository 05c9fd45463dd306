package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"serbench/internal/telemetry"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment override, e.g. SERBENCH_CODECS_CANDIDATE.
const EnvPrefix = "SERBENCH"

// Load initializes the configuration from file and environment variables.
// A missing default config file is not an error; a missing explicit one is.
func Load(cfgFile string) error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		telemetry.LogDebug("Ignoring unreadable .env file", zap.Error(err))
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("serbench")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}
	telemetry.LogDebug("Using config file", zap.String("path", viper.ConfigFileUsed()))
	return nil
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("codecs.baseline", "json")
	viper.SetDefault("codecs.candidate", "protobuf")
	viper.SetDefault("sizes", []string{"small", "medium", "large"})

	viper.SetDefault("plan.small.iterations", 50000)
	viper.SetDefault("plan.small.warmup", 500)
	viper.SetDefault("plan.medium.iterations", 1000)
	viper.SetDefault("plan.medium.warmup", 50)
	viper.SetDefault("plan.large.iterations", 100)
	viper.SetDefault("plan.large.warmup", 10)

	viper.SetDefault("measure.force_gc", true)
	viper.SetDefault("measure.round_trip", false)
	viper.SetDefault("measure.round_trip_iterations", 50)

	viper.SetDefault("dataset.seed", 42)
	viper.SetDefault("dataset.medium_users", 100)
	viper.SetDefault("dataset.large_items", 10000)

	viper.SetDefault("store.type", "file")
	viper.SetDefault("store.dir", "results")
	viper.SetDefault("store.prefix", "serbench-run")
	viper.SetDefault("store.dsn", "")

	viper.SetDefault("report.dir", "reports")
	viper.SetDefault("report.json", true)
	viper.SetDefault("report.markdown", true)
	viper.SetDefault("report.render", false)

	viper.SetDefault("metrics.textfile", "")

	viper.SetDefault("compare.operation", "deserialization")
	viper.SetDefault("compare.role", "baseline")
	viper.SetDefault("compare.codec", "")

	viper.SetDefault("verbose", false)
	viper.SetDefault("log.file", "")
}
