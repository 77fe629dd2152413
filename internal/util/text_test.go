package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "Pão", Truncate("Pão de queijo", 3))
	assert.Equal(t, "abc", Truncate("abc", 250))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "Padrao Impressao", FoldAccents("Padrão Impressão"))
	assert.Equal(t, "plain", FoldAccents("plain"))
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, OptionalString("   "))
	assert.Nil(t, NonBlank(nil))
	assert.Equal(t, "x", *OptionalString(" x "))
}
