package config

import (
	"fmt"
	"strings"

	"serbench/internal/dataset"
	benchErrors "serbench/internal/errors"

	"github.com/spf13/viper"
)

var storeTypes = map[string]bool{
	"file": true, "sqlite": true, "sqlite3": true, "postgres": true, "postgresql": true,
}

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	for _, key := range []string{"codecs.baseline", "codecs.candidate"} {
		if strings.TrimSpace(viper.GetString(key)) == "" {
			errors = append(errors, fmt.Sprintf("%s must not be empty", key))
		}
	}

	sizes := viper.GetStringSlice("sizes")
	if len(sizes) == 0 {
		errors = append(errors, "sizes must list at least one size")
	}
	known := make(map[string]bool)
	for _, l := range dataset.Labels {
		known[l] = true
	}
	for _, size := range sizes {
		if !known[size] {
			errors = append(errors, fmt.Sprintf("unknown size %q, expected one of %s", size, strings.Join(dataset.Labels, ", ")))
			continue
		}
		if n := viper.GetInt("plan." + size + ".iterations"); n <= 0 {
			errors = append(errors, fmt.Sprintf("plan.%s.iterations must be positive, got: %d", size, n))
		}
		if n := viper.GetInt("plan." + size + ".warmup"); n < 0 {
			errors = append(errors, fmt.Sprintf("plan.%s.warmup must not be negative, got: %d", size, n))
		}
	}

	if viper.GetBool("measure.round_trip") {
		if n := viper.GetInt("measure.round_trip_iterations"); n <= 0 {
			errors = append(errors, fmt.Sprintf("measure.round_trip_iterations must be positive, got: %d", n))
		}
	}

	for _, key := range []string{"dataset.medium_users", "dataset.large_items"} {
		if viper.IsSet(key) && viper.GetInt(key) <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %d", key, viper.GetInt(key)))
		}
	}

	storeType := strings.ToLower(viper.GetString("store.type"))
	if storeType != "" && !storeTypes[storeType] {
		errors = append(errors, fmt.Sprintf("unknown store.type %q, expected file, sqlite or postgres", storeType))
	}
	if strings.HasPrefix(storeType, "postgres") && viper.GetString("store.dsn") == "" {
		errors = append(errors, "store.dsn is required for the postgres store")
	}

	if err := Current().Series.Validate(); err != nil {
		errors = append(errors, "compare: "+err.Error())
	}

	// If there are any errors, return them
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s: %w",
			strings.Join(errors, "\n  "), benchErrors.ErrInvalidConfiguration)
	}

	return nil
}
