package tree

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kittclouds/poschunk/pkg/scanner/chunker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReaderNil(t *testing.T) {
	_, err := ParseReader(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestParseEmpty(t *testing.T) {
	assert.Nil(t, Parse(""))
}

func TestParseWhiteSpace(t *testing.T) {
	assert.Nil(t, Parse("   "))
}

func TestParseNoElements(t *testing.T) {
	assert.Nil(t, Parse("] / ["))
}

func TestParseReader(t *testing.T) {
	root, err := ParseReader(strings.NewReader("[NP a/DT b/NN]"))
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, "[NP a/DT b/NN]", root.String())

	root, err = ParseReader(strings.NewReader(" "))
	require.NoError(t, err)
	assert.Nil(t, root)
}

func TestParseNestedChunks(t *testing.T) {
	root := Parse("[DC [NP The/DT professor/NN] [VP walked/VBD [NP the/DT dog/NN]]]")
	require.NotNil(t, root)
	assert.Equal(t, Root, root.Kind)
	assert.Empty(t, root.Name)
	require.Len(t, root.Children, 1)

	dc := root.Children[0]
	assert.True(t, dc.IsChunk())
	assert.Equal(t, "DC", dc.Name)
	require.Len(t, dc.Children, 2)

	np := dc.Children[0]
	assert.Equal(t, "NP", np.Name)
	require.Len(t, np.Children, 2)
	assert.Equal(t, NewTag("The", "DT"), np.Children[0])
	assert.Equal(t, NewTag("professor", "NN"), np.Children[1])
	assert.Nil(t, np.Children[0].Children)

	vp := dc.Children[1]
	assert.Equal(t, "VP", vp.Name)
	require.Len(t, vp.Children, 2)
	assert.Equal(t, NewTag("walked", "VBD"), vp.Children[0])

	inner := vp.Children[1]
	assert.Equal(t, "NP", inner.Name)
	require.Len(t, inner.Children, 2)
	assert.Equal(t, NewTag("the", "DT"), inner.Children[0])
	assert.Equal(t, NewTag("dog", "NN"), inner.Children[1])
}

func TestParseMultipleTopLevelChunks(t *testing.T) {
	root := Parse("[DC [NP The/DT professor/NN] [VP walked/VBD [NP the/DT dog/NN]]] ./. [DC [NP The/DT dog/NN] [VP chased/VBD [NP a/DT stick/NN]]] ./.")
	require.NotNil(t, root)
	require.Len(t, root.Children, 4)

	assert.Equal(t, "DC", root.Children[0].Name)
	assert.Equal(t, NewTag(".", "."), root.Children[1])
	assert.Equal(t, "DC", root.Children[2].Name)
	assert.Equal(t, NewTag(".", "."), root.Children[3])
	assert.Len(t, root.Chunks("DC"), 2)
}

func TestParseNestedNotTopLevel(t *testing.T) {
	root := Parse("[NP I/NN] [FOOD [VP ate/VBD [NP cake/NN]]]")
	require.NotNil(t, root)
	require.Len(t, root.Children, 2)

	np := root.Children[0]
	assert.Equal(t, "NP", np.Name)
	require.Len(t, np.Children, 1)
	assert.Equal(t, NewTag("I", "NN"), np.Children[0])

	food := root.Children[1]
	assert.Equal(t, "FOOD", food.Name)
	require.Len(t, food.Children, 1)
	assert.Equal(t, "VP", food.Children[0].Name)
	assert.Equal(t, 3, food.Depth())
}

func TestParseEmptyChunk(t *testing.T) {
	root := Parse("[X] [Y ] a/B")
	require.NotNil(t, root)
	require.Len(t, root.Children, 3)
	assert.Nil(t, root.Children[0].Children)
	assert.Nil(t, root.Children[1].Children)
	assert.Equal(t, "[X] [Y] a/B", root.String())
}

func TestParseIrregularSpacing(t *testing.T) {
	root := Parse("  [NP  a/DT   b/NN]c/VB[PP d/IN]  ")
	require.NotNil(t, root)
	assert.Equal(t, "[NP a/DT b/NN] c/VB [PP d/IN]", root.String())
}

func TestRoundTrip(t *testing.T) {
	rules := []chunker.Rule{
		{ChunkName: "NP", Pattern: `{*/(DT|JJ|NNPS|NNP|NNS|NN|PRP)}+`},
		{ChunkName: "PP", Pattern: `{*/IN} {NP}`},
		{ChunkName: "VP", Pattern: `{*/VB.*?} {NP} {PP}*`},
		{ChunkName: "DC", Pattern: `{NP} {VP}`},
	}
	text := "The/DT professor/NN walked/VBD the/DT dog/NN in/IN the/DT park/NN ./. The/DT dog/NN chased/VBD a/DT big/JJ stick/NN ./."

	chunked, err := chunker.Chunk(text, rules)
	require.NoError(t, err)

	root := Parse(chunked)
	require.NotNil(t, root)
	assert.Equal(t, chunked, root.String())

	var tokens []string
	for _, leaf := range root.Leaves() {
		tokens = append(tokens, leaf.Word+"/"+leaf.Tag)
	}
	assert.Equal(t, strings.Fields(text), tokens)
}

func TestRoundTripKeepsTokensWhole(t *testing.T) {
	rules := []chunker.Rule{
		{ChunkName: "N", Pattern: `{*/NN}`},
		{ChunkName: "TH", Pattern: `{thought/*}`},
	}
	text := "professors/NNS bethought/VBD the/DT thought/NN"

	chunked, err := chunker.Chunk(text, rules)
	require.NoError(t, err)
	assert.Equal(t, "professors/NNS bethought/VBD the/DT [N thought/NN]", chunked)

	root := Parse(chunked)
	require.NotNil(t, root)

	var tokens []string
	for _, leaf := range root.Leaves() {
		tokens = append(tokens, leaf.Word+"/"+leaf.Tag)
	}
	assert.Equal(t, strings.Fields(text), tokens)
}

func TestWalkSkipsChildren(t *testing.T) {
	root := Parse("[A [B c/D]] e/F")
	require.NotNil(t, root)

	var visited []string
	root.Walk(func(b *Branch) bool {
		switch b.Kind {
		case Chunk:
			visited = append(visited, b.Name)
			return b.Name != "A"
		case Tag:
			visited = append(visited, b.Word)
		}
		return true
	})
	assert.Equal(t, []string{"A", "e"}, visited)
}

func TestFormat(t *testing.T) {
	root := Parse("[NP a/DT] b/VB")
	require.NotNil(t, root)
	assert.Equal(t, "(root)\n  NP\n    a/DT\n  b/VB\n", root.Format())
	assert.Equal(t, "NP", root.FirstChild().Name)
}

func TestJSON(t *testing.T) {
	root := Parse("[NP a/DT]")
	require.NotNil(t, root)

	data, err := root.JSON()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"kind":"root","children":[{"kind":"chunk","name":"NP","children":[{"kind":"tag","word":"a","tag":"DT"}]}]}`,
		string(data))

	var decoded Branch
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, root, &decoded)

	var none *Branch
	data, err = none.JSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
