package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanTokens(t *testing.T) {
	text := "The/DT dog/NN ./."
	elements := Scan(text)

	require.Len(t, elements, 3)
	for _, el := range elements {
		assert.Equal(t, TokenElement, el.Kind)
	}
	assert.Equal(t, "The", elements[0].Word.Slice(text))
	assert.Equal(t, "DT", elements[0].Tag.Slice(text))
	assert.Equal(t, ".", elements[2].Word.Slice(text))
	assert.Equal(t, ".", elements[2].Tag.Slice(text))
}

func TestScanSkipsNestedChunks(t *testing.T) {
	text := "[NP I/NN] [FOOD [VP ate/VBD [NP cake/NN]]]"
	elements := Scan(text)

	require.Len(t, elements, 2)
	assert.Equal(t, "NP", elements[0].Name.Slice(text))
	assert.Equal(t, "I/NN", elements[0].Inner.Slice(text))
	assert.Equal(t, "FOOD", elements[1].Name.Slice(text))
	assert.Equal(t, "[VP ate/VBD [NP cake/NN]]", elements[1].Inner.Slice(text))
	assert.Equal(t, text[10:], elements[1].Span.Slice(text))
}

func TestScanToleratesSpacing(t *testing.T) {
	text := "  a/DT[NP b/NN]   c/VB  "
	elements := Scan(text)

	require.Len(t, elements, 3)
	assert.Equal(t, TokenElement, elements[0].Kind)
	assert.Equal(t, ChunkElement, elements[1].Kind)
	assert.Equal(t, "c", elements[2].Word.Slice(text))
}

func TestScanSkipsGarbage(t *testing.T) {
	text := "] lonely / [unclosed a/B"
	elements := Scan(text)

	require.Len(t, elements, 1)
	assert.Equal(t, "a/B", elements[0].Span.Slice(text))
}

func TestScanEmpty(t *testing.T) {
	assert.Empty(t, Scan(""))
	assert.Empty(t, Scan("   \t\n"))
}

func TestMatchChunk(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		pos   int
		ok    bool
		span  string
		inner string
	}{
		{"simple", "[NP a/DT b/NN] c/VB", 0, true, "[NP a/DT b/NN]", "a/DT b/NN"},
		{"nested", "[VP x/VB [NP y/NN]] z", 0, true, "[VP x/VB [NP y/NN]]", "x/VB [NP y/NN]"},
		{"empty", "[X] y/Z", 0, true, "[X]", ""},
		{"offset", "a/B [C d/E]", 4, true, "[C d/E]", "d/E"},
		{"unbalanced", "[NP a/DT [VP b/VB]", 0, false, "", ""},
		{"no name", "[ a/DT]", 0, false, "", ""},
		{"no separator", "[NP/DT]", 0, false, "", ""},
		{"not a bracket", "NP a/DT]", 0, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, ok := MatchChunk(tt.text, tt.pos)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.span, el.Span.Slice(tt.text))
			assert.Equal(t, tt.inner, el.Inner.Slice(tt.text))
		})
	}
}

func TestBalanced(t *testing.T) {
	assert.True(t, Balanced(""))
	assert.True(t, Balanced("[A [B c/D]] e/F"))
	assert.False(t, Balanced("[A [B c/D] e/F"))
	assert.False(t, Balanced("] ["))
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("NP"))
	assert.True(t, IsName("DC_2"))
	assert.False(t, IsName(""))
	assert.False(t, IsName("N P"))
	assert.False(t, IsName("[NP"))
}

func TestRange(t *testing.T) {
	r := Range{Start: 0, End: 5}
	assert.Equal(t, 5, r.Len())
	assert.False(t, r.IsEmpty())
	assert.Equal(t, "hello", r.Slice("hello world"))
	assert.Equal(t, "", Range{Start: 3, End: 99}.Slice("abc"))
}
