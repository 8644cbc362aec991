package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashEmail(t *testing.T) {
	// Known SHA-256 of "a@b.com"
	expected := "fb98d44ad7501a959f3f4f4a3f004fe2d9e581ea6207e218c4b02c08a4d75adf"

	hash := HashEmail("a@b.com")
	assert.Len(t, hash, 64)
	assert.Equal(t, expected, hash)

	// Deterministic
	assert.Equal(t, hash, HashEmail("a@b.com"))

	// Case and whitespace are normalized before hashing
	assert.Equal(t, hash, HashEmail("A@B.com"))
	assert.Equal(t, hash, HashEmail("  a@b.com  "))
}

func TestHashEmail_Empty(t *testing.T) {
	assert.Equal(t, "", HashEmail(""))
	assert.Equal(t, "", HashEmail("   "))
}

func TestHashEmail_DifferentInputsDiffer(t *testing.T) {
	assert.NotEqual(t, HashEmail("a@b.com"), HashEmail("b@a.com"))
}
