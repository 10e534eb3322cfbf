package langreg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "English", DisplayName("en"))
	assert.Equal(t, "Bulgarian", DisplayName("bg"))
	// Unmapped codes pass through verbatim.
	assert.Equal(t, "tlh", DisplayName("tlh"))
	assert.Equal(t, "", DisplayName(""))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "German (de)", Label("de"))
	assert.Equal(t, "xx (xx)", Label("xx"))
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("ja"))
	assert.False(t, Known("xx"))
}
