// Package dataset builds the fixed structured values the harness encodes.
// Values use the canonical shapes produced by a generic JSON decoder:
// map[string]any, []any, string, float64 and bool.
package dataset

import (
	"embed"
	"fmt"
	"math"
	"math/rand"
	"time"

	benchErrors "serbench/internal/errors"
	"serbench/internal/schema"
)

//go:embed schemas/*.yaml
var schemaFS embed.FS

// Size labels.
const (
	Small  = "small"
	Medium = "medium"
	Large  = "large"
)

// Labels lists every size label in run order.
var Labels = []string{Small, Medium, Large}

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Dataset is an immutable named value together with the schema describing it.
type Dataset struct {
	Name   string
	Value  any
	Schema *schema.Schema
}

// Options tune the generators.
type Options struct {
	Seed        int64
	MediumUsers int
	LargeItems  int
	// Timestamp stamps the large dataset metadata; zero means now.
	Timestamp time.Time
}

// DefaultOptions returns the standard dataset dimensions.
func DefaultOptions() Options {
	return Options{
		Seed:        42,
		MediumUsers: 100,
		LargeItems:  10000,
	}
}

// Schema loads the embedded schema for a size label.
func Schema(name string) (*schema.Schema, error) {
	data, err := schemaFS.ReadFile("schemas/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown dataset %q: %w", name, benchErrors.ErrInvalidConfiguration)
	}
	return schema.Parse(data)
}

// Generate builds the dataset for a size label.
func Generate(name string, opts Options) (Dataset, error) {
	s, err := Schema(name)
	if err != nil {
		return Dataset{}, err
	}

	var v any
	switch name {
	case Small:
		v = small()
	case Medium:
		v = medium(opts.MediumUsers)
	case Large:
		ts := opts.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		v = large(opts.LargeItems, rand.New(rand.NewSource(opts.Seed)), ts)
	}

	if err := s.Validate(v); err != nil {
		return Dataset{}, fmt.Errorf("generated %s dataset does not match its schema: %w", name, err)
	}
	return Dataset{Name: name, Value: v, Schema: s}, nil
}

// GenerateAll builds the datasets for the given labels in order.
func GenerateAll(names []string, opts Options) ([]Dataset, error) {
	out := make([]Dataset, 0, len(names))
	for _, name := range names {
		ds, err := Generate(name, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

func small() map[string]any {
	return map[string]any{
		"name":   "John Doe",
		"age":    float64(30),
		"city":   "New York",
		"active": true,
	}
}

var (
	themes    = []string{"dark", "light"}
	languages = []string{"en", "zh", "es"}
)

func medium(n int) map[string]any {
	users := make([]any, n)
	for i := 0; i < n; i++ {
		users[i] = map[string]any{
			"id":    float64(i),
			"name":  fmt.Sprintf("User%d", i),
			"email": fmt.Sprintf("user%d@example.com", i),
			"age":   float64(20 + i%50),
			"address": map[string]any{
				"street":  fmt.Sprintf("%d Main St", i),
				"city":    fmt.Sprintf("City%d", i%10),
				"country": "USA",
				"zipCode": fmt.Sprintf("%d", 10000+i),
			},
			"preferences": map[string]any{
				"theme":         themes[i%2],
				"notifications": i%3 == 0,
				"language":      languages[i%3],
			},
		}
	}
	return map[string]any{"users": users}
}

var categories = []string{"electronics", "clothing", "books", "home", "sports"}

func large(n int, rng *rand.Rand, ts time.Time) map[string]any {
	items := make([]any, n)
	for i := 0; i < n; i++ {
		reviews := make([]any, i%5+1)
		for j := range reviews {
			reviews[j] = map[string]any{
				"rating":  float64(rng.Intn(5) + 1),
				"comment": fmt.Sprintf("Review %d for item %d", j, i),
				"user":    fmt.Sprintf("reviewer%d", j),
			}
		}
		items[i] = map[string]any{
			"id":          float64(i),
			"title":       fmt.Sprintf("Item %d", i),
			"description": fmt.Sprintf("This is a detailed description for item %d. It contains multiple sentences to simulate real-world data.", i),
			"price":       fmt.Sprintf("%.2f", rng.Float64()*1000),
			"category":    categories[i%5],
			"tags":        []any{fmt.Sprintf("tag%d", i%10), fmt.Sprintf("category%d", i%5), fmt.Sprintf("special%d", i%20)},
			"attributes": map[string]any{
				"weight": round(rng.Float64()*10, 2),
				"dimensions": map[string]any{
					"length": round(rng.Float64()*100, 1),
					"width":  round(rng.Float64()*100, 1),
					"height": round(rng.Float64()*100, 1),
				},
				"inStock": i%3 != 0,
				"reviews": reviews,
			},
		}
	}
	return map[string]any{
		"metadata": map[string]any{
			"version":   "1.0.0",
			"timestamp": ts.UTC().Format(timestampLayout),
			"total":     float64(n),
		},
		"items": items,
	}
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
