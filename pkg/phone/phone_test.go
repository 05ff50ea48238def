package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "9876543210", Normalize("+91 98765 43210"))
	assert.Equal(t, "9876543210", Normalize("09876543210"))
	assert.Equal(t, "9876543210", Normalize("98765-43210"))
	assert.Equal(t, "43210", Normalize("43210"))
	assert.Equal(t, "", Normalize("n/a"))
}

func TestSame(t *testing.T) {
	assert.True(t, Same("+919876543210", "9876543210"))
	assert.True(t, Same("0098765 43210", "98765 43210"))
	assert.False(t, Same("9876543210", "9876543211"))
	assert.False(t, Same("", ""))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("+91 98765 43210"))
	assert.False(t, Valid("12345"))
}
