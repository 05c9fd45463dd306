package config

import (
	"serbench/internal/benchmark"
	"serbench/internal/dataset"
	"serbench/internal/db"
	"serbench/internal/measure"

	"github.com/spf13/viper"
)

// Report selects the report files written after a run or comparison.
type Report struct {
	Dir      string
	JSON     bool
	Markdown bool
	Render   bool
}

// Settings is the typed view of the loaded configuration.
type Settings struct {
	Baseline  string
	Candidate string
	Sizes     []string
	Plans     map[string]measure.Loop

	ForceGC             bool
	RoundTrip           bool
	RoundTripIterations int

	Dataset         dataset.Options
	Store           db.StoreConfig
	Report          Report
	MetricsTextfile string
	Series          benchmark.Series

	Verbose bool
	LogFile string
}

// Plan returns the loop configuration of every selected size.
func Plan() map[string]measure.Loop {
	plans := make(map[string]measure.Loop)
	for _, size := range viper.GetStringSlice("sizes") {
		plans[size] = measure.Loop{
			Iterations: viper.GetInt("plan." + size + ".iterations"),
			Warmup:     viper.GetInt("plan." + size + ".warmup"),
		}
	}
	return plans
}

// Current reads the settings from viper.
func Current() Settings {
	return Settings{
		Baseline:  viper.GetString("codecs.baseline"),
		Candidate: viper.GetString("codecs.candidate"),
		Sizes:     viper.GetStringSlice("sizes"),
		Plans:     Plan(),

		ForceGC:             viper.GetBool("measure.force_gc"),
		RoundTrip:           viper.GetBool("measure.round_trip"),
		RoundTripIterations: viper.GetInt("measure.round_trip_iterations"),

		Dataset: dataset.Options{
			Seed:        viper.GetInt64("dataset.seed"),
			MediumUsers: viper.GetInt("dataset.medium_users"),
			LargeItems:  viper.GetInt("dataset.large_items"),
		},
		Store: db.StoreConfig{
			Type:             viper.GetString("store.type"),
			ConnectionString: viper.GetString("store.dsn"),
			Dir:              viper.GetString("store.dir"),
			Prefix:           viper.GetString("store.prefix"),
		},
		Report: Report{
			Dir:      viper.GetString("report.dir"),
			JSON:     viper.GetBool("report.json"),
			Markdown: viper.GetBool("report.markdown"),
			Render:   viper.GetBool("report.render"),
		},
		MetricsTextfile: viper.GetString("metrics.textfile"),
		Series: benchmark.Series{
			Operation: viper.GetString("compare.operation"),
			Role:      viper.GetString("compare.role"),
			Codec:     viper.GetString("compare.codec"),
		},

		Verbose: viper.GetBool("verbose"),
		LogFile: viper.GetString("log.file"),
	}
}
