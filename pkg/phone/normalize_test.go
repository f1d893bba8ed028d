package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "+16502530000", Normalize("+1 650 253 0000", "US"))
	assert.Equal(t, "+16502530000", Normalize("(650) 253-0000", "US"))

	// Short internal numbers stay raw.
	assert.Equal(t, "555-1234", Normalize("555-1234", "US"))
	assert.Equal(t, "", Normalize("   ", "US"))
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "5551234", Digits("555-1234"))
	assert.Equal(t, "16502530000", Digits("+1 (650) 253-0000"))
	assert.Equal(t, "", Digits("ext"))
}
