package chunker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkRules() []Rule {
	return []Rule{
		{ChunkName: "NP", Pattern: `{*/(DT|JJ|NNPS|NNP|NNS|NN|PRP)}+`},
		{ChunkName: "PP", Pattern: `{*/IN} {NP}`},
		{ChunkName: "VP", Pattern: `{*/VB.*?} {NP} {PP}*`},
		{ChunkName: "DC", Pattern: `{NP} {VP}`},
	}
}

func TestChunkNilRules(t *testing.T) {
	_, err := Chunk("The/DT professor/NN walked/VBD the/DT dog/NN", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestChunkEmptyText(t *testing.T) {
	out, err := Chunk("", chunkRules())
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestChunkWhiteSpaceText(t *testing.T) {
	out, err := Chunk("   ", chunkRules())
	require.NoError(t, err)
	assert.Equal(t, "   ", out)
}

func TestChunkBlankTextSkipsRuleValidation(t *testing.T) {
	out, err := Chunk(" ", []Rule{{ChunkName: "", Pattern: ""}})
	require.NoError(t, err)
	assert.Equal(t, " ", out)
}

func TestChunkEmptyRuleList(t *testing.T) {
	out, err := Chunk("a/DT b/NN", []Rule{})
	require.NoError(t, err)
	assert.Equal(t, "a/DT b/NN", out)
}

func TestChunkNestedRules(t *testing.T) {
	text := "The/DT professor/NN walked/VBD the/DT dog/NN in/IN the/DT park/NN ./. The/DT dog/NN chased/VBD a/DT big/JJ stick/NN ./."
	out, err := Chunk(text, chunkRules())
	require.NoError(t, err)
	assert.Equal(t,
		"[DC [NP The/DT professor/NN] [VP walked/VBD [NP the/DT dog/NN] [PP in/IN [NP the/DT park/NN]]]] ./. [DC [NP The/DT dog/NN] [VP chased/VBD [NP a/DT big/JJ stick/NN]]] ./.",
		out)
}

func TestChunkIntermediateSpacing(t *testing.T) {
	out, err := Chunk("The/DT professor/NN walked/VBD the/DT dog/NN", chunkRules()[:1])
	require.NoError(t, err)
	assert.Equal(t, "[NP The/DT professor/NN] walked/VBD [NP the/DT dog/NN]", out)
}

func TestChunkIsIdempotent(t *testing.T) {
	text := "The/DT professor/NN walked/VBD the/DT dog/NN in/IN the/DT park/NN ./."
	once, err := Chunk(text, chunkRules())
	require.NoError(t, err)

	twice, err := Chunk(once, chunkRules())
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestChunkWordOnly(t *testing.T) {
	rules := []Rule{{ChunkName: "TH", Pattern: `{thought/*}`}}
	out, err := Chunk("I/PRP thought/VBD a/DT strange/JJ thought/NN", rules)
	require.NoError(t, err)
	assert.Equal(t, "I/PRP [TH thought/VBD] a/DT strange/JJ [TH thought/NN]", out)
}

func TestChunkTagOnly(t *testing.T) {
	rules := []Rule{{ChunkName: "ADJ", Pattern: `{*/JJ}`}}
	out, err := Chunk("The/DT good/JJ ,/, the/DT bad/JJ and/CC the/DT ugly/JJ", rules)
	require.NoError(t, err)
	assert.Equal(t, "The/DT [ADJ good/JJ] ,/, the/DT [ADJ bad/JJ] and/CC the/DT [ADJ ugly/JJ]", out)
}

func TestChunkConsecutiveTags(t *testing.T) {
	rules := []Rule{{ChunkName: "NP", Pattern: `{*/(DT|JJ|NNPS|NNP|NNS|NN|PRP|CD)}+`}}
	out, err := Chunk("The/DT old/JJ friendly/JJ science/NN professor/NN", rules)
	require.NoError(t, err)
	assert.Equal(t, "[NP The/DT old/JJ friendly/JJ science/NN professor/NN]", out)
}

func TestChunkIgnoreCase(t *testing.T) {
	text := "Faster/JJR and/CC faster/JJR he/PRP went/VBD"

	out, err := Chunk(text, []Rule{NewRule("FS", `{faster/JJR}`, IgnoreCase)})
	require.NoError(t, err)
	assert.Equal(t, "[FS Faster/JJR] and/CC [FS faster/JJR] he/PRP went/VBD", out)

	out, err = Chunk(text, []Rule{NewRule("FS", `{faster/JJR}`)})
	require.NoError(t, err)
	assert.Equal(t, "Faster/JJR and/CC [FS faster/JJR] he/PRP went/VBD", out)
}

func TestChunkOptionalChunk(t *testing.T) {
	rules := []Rule{{ChunkName: "ABB", Pattern: `{A} {B} {B}*`}}
	out, err := Chunk("[A Arnold] [B barrel] [B Bill] [A apple] [A Adam] [A Africa] [B Bob]", rules)
	require.NoError(t, err)
	assert.Equal(t, "[ABB [A Arnold] [B barrel] [B Bill]] [A apple] [A Adam] [ABB [A Africa] [B Bob]]", out)
}

func TestChunkConsecutiveChunks(t *testing.T) {
	rules := []Rule{{ChunkName: "DC", Pattern: `{NP} {VP}`}}
	out, err := Chunk("[NP I/NN] [VP ate/VBD [NP cake/NN]]", rules)
	require.NoError(t, err)
	assert.Equal(t, "[DC [NP I/NN] [VP ate/VBD [NP cake/NN]]]", out)
}

func TestChunkDoesNotCaptureNestedChunks(t *testing.T) {
	rules := []Rule{{ChunkName: "DC", Pattern: `{NP} {VP}`}}
	text := "[NP I/NN] [FOOD [VP ate/VBD [NP cake/NN]]]"
	out, err := Chunk(text, rules)
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestChunkUnknownReference(t *testing.T) {
	rules := []Rule{{ChunkName: "X", Pattern: `{NOPE} {*/NN}`}}
	out, err := Chunk("a/DT b/NN", rules)
	require.NoError(t, err)
	assert.Equal(t, "a/DT b/NN", out)
}

func TestChunkNoMatch(t *testing.T) {
	rules := []Rule{{ChunkName: "ADJ", Pattern: `{*/JJ}`}}
	out, err := Chunk("a/DT b/NN", rules)
	require.NoError(t, err)
	assert.Equal(t, "a/DT b/NN", out)
}

func TestChunkAdjacentMatchesAreSpaced(t *testing.T) {
	rules := []Rule{{ChunkName: "T", Pattern: `{*/DT}`}}
	out, err := Chunk("a/DT[X y/Z]", rules)
	require.NoError(t, err)
	assert.Equal(t, "[T a/DT] [X y/Z]", out)
}

func TestChunkOutputStaysBalanced(t *testing.T) {
	// The lazy tail may not swallow half a chunk.
	rules := []Rule{
		{ChunkName: "NP", Pattern: `{*/NN}+`},
		{ChunkName: "VP", Pattern: `{*/VB.*}`},
	}
	out, err := Chunk("ran/VB the/DT dog/NN home/NN", rules)
	require.NoError(t, err)
	assert.Equal(t, "[VP ran/VB the/DT [NP dog/NN home/NN]]", out)
}

func TestChunkInvalidRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want error
	}{
		{"no name", Rule{Pattern: `{*/NN}`}, ErrInvalidArgument},
		{"bad name", Rule{ChunkName: "N P", Pattern: `{*/NN}`}, ErrInvalidArgument},
		{"no pattern", Rule{ChunkName: "NP", Pattern: "  "}, ErrInvalidArgument},
		{"bad regexp", Rule{ChunkName: "NP", Pattern: `{*/(NN}`}, ErrInvalidPattern},
		{"unsupported syntax", Rule{ChunkName: "NP", Pattern: `(?>a)`}, ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Chunk("a/DT b/NN", []Rule{tt.rule})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCompileReuse(t *testing.T) {
	cascade, err := New().Compile(chunkRules())
	require.NoError(t, err)
	assert.Equal(t, 4, cascade.Len())
	assert.Equal(t, "NP", cascade.Rules()[0].ChunkName)

	assert.Equal(t, "[NP a/DT b/NN]", cascade.Apply("a/DT b/NN"))
	assert.Equal(t, "  ", cascade.Apply("  "))
	assert.Equal(t, "x/VB", cascade.Apply("x/VB"))
}

func TestCompileNilRules(t *testing.T) {
	_, err := New().Compile(nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestChunkOptionalReferences(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		want    string
	}{
		{"alternation", "[NP a/DT] [VP b/VB]", `({NP}|{PP}) {VP}`, "[X [NP a/DT] [VP b/VB]]"},
		{"other branch", "[PP a/IN] [VP b/VB]", `({NP}|{PP}) {VP}`, "[X [PP a/IN] [VP b/VB]]"},
		{"optional group", "ran/VB", `(?:{NP} )?{*/VB}`, "[X ran/VB]"},
		{"optional ref", "[VP b/VB]", `{NP}? {VP}`, "[X [VP b/VB]]"},
		{"zero repeat", "a/DT", `{NP}{0,1}{*/DT}`, "[X a/DT]"},
		{"required missing", "[VP b/VB]", `{NP} {VP}`, "[VP b/VB]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Chunk(tt.text, []Rule{{ChunkName: "X", Pattern: tt.pattern}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestChunkMatchesWholeTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		rule Rule
		want string
	}{
		{"tag prefix", "professors/NNS ran/VB", NewRule("N", `{*/NN}`), "professors/NNS ran/VB"},
		{"tag prefix run", "a/NN b/NNS", NewRule("N", `{*/NN}+`), "[N a/NN] b/NNS"},
		{"exact tag", "professors/NNS", NewRule("N", `{*/NNS}`), "[N professors/NNS]"},
		{"word suffix", "bethought/VBD I/PRP thought/VBD", NewRule("TH", `{thought/*}`), "bethought/VBD I/PRP [TH thought/VBD]"},
		{"word only", "bethought/VBD", NewRule("TH", `{thought/*}`), "bethought/VBD"},
		{"raw regexp inside token", "professors/NNS", NewRule("N", `NN`), "professors/NNS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Chunk(tt.text, []Rule{tt.rule})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestChunkIgnoreCaseReferences(t *testing.T) {
	text := "[NP a/DT] [VP b/VB]"

	out, err := Chunk(text, []Rule{NewRule("X", `{np} {vp}`, IgnoreCase)})
	require.NoError(t, err)
	assert.Equal(t, "[X [NP a/DT] [VP b/VB]]", out)

	out, err = Chunk(text, []Rule{NewRule("X", `{np} {vp}`)})
	require.NoError(t, err)
	assert.Equal(t, text, out)

	out, err = Chunk("[np a/DT] [NP b/DT]", []Rule{NewRule("X", `{NP}`)})
	require.NoError(t, err)
	assert.Equal(t, "[np a/DT] [X [NP b/DT]]", out)
}
