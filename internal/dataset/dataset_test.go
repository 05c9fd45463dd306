package dataset

import (
	"errors"
	"testing"
	"time"

	benchErrors "serbench/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.LargeItems = 25
	opts.Timestamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return opts
}

func TestGenerate_Small(t *testing.T) {
	ds, err := Generate(Small, testOptions())
	require.NoError(t, err)

	assert.Equal(t, "small", ds.Name)
	assert.Equal(t, map[string]any{
		"name":   "John Doe",
		"age":    float64(30),
		"city":   "New York",
		"active": true,
	}, ds.Value)
	assert.Equal(t, "small", ds.Schema.Name)
}

func TestGenerate_Medium(t *testing.T) {
	ds, err := Generate(Medium, testOptions())
	require.NoError(t, err)

	users := ds.Value.(map[string]any)["users"].([]any)
	require.Len(t, users, 100)

	u7 := users[7].(map[string]any)
	assert.Equal(t, "user7@example.com", u7["email"])
	assert.Equal(t, float64(27), u7["age"])
	assert.Equal(t, "10007", u7["address"].(map[string]any)["zipCode"])
	prefs := u7["preferences"].(map[string]any)
	assert.Equal(t, "light", prefs["theme"])
	assert.Equal(t, "zh", prefs["language"])
	assert.Equal(t, false, prefs["notifications"])
}

func TestGenerate_Large(t *testing.T) {
	opts := testOptions()
	ds, err := Generate(Large, opts)
	require.NoError(t, err)

	root := ds.Value.(map[string]any)
	meta := root["metadata"].(map[string]any)
	assert.Equal(t, "2024-05-01T12:00:00.000Z", meta["timestamp"])
	assert.Equal(t, float64(25), meta["total"])

	items := root["items"].([]any)
	require.Len(t, items, 25)
	for i, it := range items {
		attrs := it.(map[string]any)["attributes"].(map[string]any)
		assert.Len(t, attrs["reviews"].([]any), i%5+1)
		assert.Equal(t, i%3 != 0, attrs["inStock"])
	}

	t.Run("Deterministic For Seed", func(t *testing.T) {
		again, err := Generate(Large, opts)
		require.NoError(t, err)
		assert.Equal(t, ds.Value, again.Value)

		opts.Seed = 7
		other, err := Generate(Large, opts)
		require.NoError(t, err)
		assert.NotEqual(t, ds.Value, other.Value)
	})
}

func TestGenerate_Unknown(t *testing.T) {
	_, err := Generate("huge", testOptions())
	assert.True(t, errors.Is(err, benchErrors.ErrInvalidConfiguration))
}

func TestGenerateAll(t *testing.T) {
	all, err := GenerateAll(Labels, testOptions())
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, ds := range all {
		assert.Equal(t, Labels[i], ds.Name)
		assert.NoError(t, ds.Schema.Validate(ds.Value))
	}
}
