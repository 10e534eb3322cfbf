package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	t.Run("accepts all wire values", func(t *testing.T) {
		for _, s := range []string{"concept", "event", "human", "organization", "other", "none"} {
			cat, err := ParseCategory(s)
			require.NoError(t, err)
			assert.Equal(t, Category(s), cat)
		}
	})

	t.Run("rejects values outside the closed set", func(t *testing.T) {
		for _, s := range []string{"", "Human", "person", "ORGANIZATION", "unknown"} {
			_, err := ParseCategory(s)
			assert.Error(t, err, "value %q", s)
		}
	})
}

func TestCategories(t *testing.T) {
	cats := Categories()
	assert.Len(t, cats, 6)
	// Display order is fixed and starts with event.
	assert.Equal(t, CategoryEvent, cats[0])
	for _, cat := range cats {
		assert.Contains(t, CategoryDefinitions(), cat)
	}
}

func TestItemValidate(t *testing.T) {
	item := &Item{
		QID:      "Q42",
		Category: CategoryHuman,
		Articles: map[string]string{"en": "https://en.wikipedia.org/wiki/X"},
	}
	require.NoError(t, item.Validate())

	assert.Error(t, (&Item{Category: CategoryHuman}).Validate())
	assert.Error(t, (&Item{QID: "Q1", Category: "building"}).Validate())
}
