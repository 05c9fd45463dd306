package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File names derived from a record key.
func AnalysisFile(key string) string   { return "analysis-" + stem(key) + ".md" }
func ComparisonFile(key string) string { return "comparison-" + stem(key) + ".md" }
func ComparisonJSONFile(key string) string {
	return "comparison-report-" + stem(key) + ".json"
}

func stem(key string) string {
	return strings.TrimSuffix(filepath.Base(key), filepath.Ext(key))
}

// WriteFile writes data to dir/name, creating dir, and returns the path.
func WriteFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}
