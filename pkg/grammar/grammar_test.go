package grammar

import (
	"errors"
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/poschunk/pkg/scanner/chunker"
)

const englishYAML = `
name: english
description: test grammar
rules:
  - name: NP
    pattern: "{*/(DT|JJ|NN)}+"
  - name: FS
    pattern: "{faster/JJR}"
    options: [ignorecase]
`

func TestParse(t *testing.T) {
	g, err := Parse([]byte(englishYAML))
	require.NoError(t, err)
	assert.Equal(t, "english", g.Name)
	assert.Equal(t, "test grammar", g.Description)
	require.Len(t, g.Rules, 2)

	rules, err := g.ChunkRules()
	require.NoError(t, err)
	assert.Equal(t, chunker.Rule{ChunkName: "NP", Pattern: "{*/(DT|JJ|NN)}+"}, rules[0])
	assert.Equal(t, chunker.IgnoreCase, rules[1].Options)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "name: [unclosed"},
		{"no name", "rules:\n  - name: NP\n    pattern: '{*/NN}'\n"},
		{"no rules", "name: empty\n"},
		{"bad option", "name: x\nrules:\n  - name: NP\n    pattern: '{*/NN}'\n    options: [bogus]\n"},
		{"bad pattern", "name: x\nrules:\n  - name: NP\n    pattern: '{*/(NN}'\n"},
		{"bad chunk name", "name: x\nrules:\n  - name: 'N P'\n    pattern: '{*/NN}'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGrammar), "got %v", err)
		})
	}
}

func TestDefaultGrammar(t *testing.T) {
	g := Default()
	require.NoError(t, g.Validate())

	cascade, err := g.Compile(chunker.New())
	require.NoError(t, err)
	assert.Equal(t,
		"[DC [NP The/DT dog/NN] [VP chased/VBD [NP a/DT big/JJ stick/NN]]] ./.",
		cascade.Apply("The/DT dog/NN chased/VBD a/DT big/JJ stick/NN ./."))
}

func TestFromRules(t *testing.T) {
	g := FromRules("x", []chunker.Rule{chunker.NewRule("FS", "{faster/JJR}", chunker.IgnoreCase)})
	assert.Equal(t, "x", g.Name)
	assert.Equal(t, []RuleSpec{{Name: "FS", Pattern: "{faster/JJR}", Options: []string{"ignorecase"}}}, g.Rules)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)

	require.NoError(t, Save(fs, "default.yaml", Default()))

	loaded, err := Load(fs, "default.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}

func TestLoadMissing(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)

	_, err = Load(fs, "missing.yaml")
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.Mkdir(fs, "grammars", 0o755))

	require.NoError(t, hackpadfs.WriteFullFile(fs, "grammars/b.yml", []byte(englishYAML), 0o644))
	require.NoError(t, Save(fs, "grammars/a.yaml", Default()))
	require.NoError(t, hackpadfs.WriteFullFile(fs, "grammars/notes.txt", []byte("ignored"), 0o644))

	grammars, err := LoadDir(fs, "grammars")
	require.NoError(t, err)
	require.Len(t, grammars, 2)
	assert.Equal(t, DefaultName, grammars[0].Name)
	assert.Equal(t, "english", grammars[1].Name)
}

func TestLoadDirBadFile(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.Mkdir(fs, "grammars", 0o755))
	require.NoError(t, hackpadfs.WriteFullFile(fs, "grammars/bad.yaml", []byte("name: bad\n"), 0o644))

	_, err = LoadDir(fs, "grammars")
	assert.True(t, errors.Is(err, ErrInvalidGrammar))
}
