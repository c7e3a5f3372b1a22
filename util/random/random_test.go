package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeq(t *testing.T) {
	s := Seq(48)
	assert.Len(t, s, 48)
	for _, r := range s {
		assert.True(t, strings.ContainsRune(alphanumeric, r))
	}
	assert.NotEqual(t, s, Seq(48))
	assert.Empty(t, Seq(0))
}
