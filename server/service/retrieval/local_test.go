package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	// Latin words split on whitespace, CJK runs split into bigrams
	tokens := tokenize("ABS warning")
	assert.Equal(t, []string{"abs", "warning"}, tokens)

	tokens = tokenize("異音がする")
	assert.Contains(t, tokens, "異音")
	assert.Contains(t, tokens, "音が")
	assert.Contains(t, tokens, "がす")

	// mixed script
	tokens = tokenize("ABSランプ")
	assert.Contains(t, tokens, "abs")
	assert.Contains(t, tokens, "ラン")

	// ASCII digit runs are whole tokens, not bigrams
	assert.Equal(t, []string{"2021"}, tokenize("2021"))
	tokens = tokenize("2021年式 アクア")
	assert.Contains(t, tokens, "2021")
	assert.NotContains(t, tokens, "20")

	// single CJK rune is kept as-is
	assert.Equal(t, []string{"煙"}, tokenize("煙"))

	assert.Empty(t, tokenize(""))
	assert.Empty(t, tokenize("、。！"))
}

func TestOverlapScore(t *testing.T) {
	tokens := tokenize("エンジン停止")

	full := overlapScore(tokens, "低速走行時にエンジン停止することがあります")
	assert.InDelta(t, 1.0, full, 1e-9)

	none := overlapScore(tokens, "タイヤの空気圧を点検してください")
	assert.Zero(t, none)

	partial := overlapScore(tokens, "エンジンの点検について")
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 1.0)
}
