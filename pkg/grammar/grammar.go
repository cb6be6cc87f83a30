// Package grammar reads and writes named chunking rule lists as YAML.
//
//	name: english
//	description: noun, prepositional and verb phrases
//	rules:
//	  - name: NP
//	    pattern: "{*/(DT|JJ|NNPS|NNP|NNS|NN|PRP)}+"
//	  - name: FS
//	    pattern: "{faster/JJR}"
//	    options: [ignorecase]
package grammar

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"gopkg.in/yaml.v3"

	"github.com/kittclouds/poschunk/pkg/scanner/chunker"
)

// ErrInvalidGrammar is returned for grammars that cannot be used.
var ErrInvalidGrammar = errors.New("invalid grammar")

// RuleSpec is the file form of a chunker.Rule.
type RuleSpec struct {
	Name    string   `yaml:"name" json:"name"`
	Pattern string   `yaml:"pattern" json:"pattern"`
	Options []string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Grammar is a named, ordered rule list.
type Grammar struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Rules       []RuleSpec `yaml:"rules" json:"rules"`
}

// FromRules converts compiled-form rules into a grammar.
func FromRules(name string, rules []chunker.Rule) *Grammar {
	g := &Grammar{Name: name, Rules: make([]RuleSpec, len(rules))}
	for i, r := range rules {
		g.Rules[i] = RuleSpec{Name: r.ChunkName, Pattern: r.Pattern, Options: r.Options.Names()}
	}
	return g
}

// ChunkRules converts the grammar into chunker rules, in order.
func (g *Grammar) ChunkRules() ([]chunker.Rule, error) {
	rules := make([]chunker.Rule, len(g.Rules))
	for i, spec := range g.Rules {
		opts, err := chunker.ParseOptions(spec.Options)
		if err != nil {
			return nil, fmt.Errorf("%w: %s rule %d: %v", ErrInvalidGrammar, g.Name, i, err)
		}
		rules[i] = chunker.Rule{ChunkName: spec.Name, Pattern: spec.Pattern, Options: opts}
	}
	return rules, nil
}

// Validate checks the name and compiles every rule.
func (g *Grammar) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGrammar)
	}
	if len(g.Rules) == 0 {
		return fmt.Errorf("%w: %s has no rules", ErrInvalidGrammar, g.Name)
	}
	_, err := g.Compile(chunker.New())
	return err
}

// Compile builds a cascade from the grammar's rules.
func (g *Grammar) Compile(c *chunker.Chunker) (*chunker.Cascade, error) {
	rules, err := g.ChunkRules()
	if err != nil {
		return nil, err
	}
	cascade, err := c.Compile(rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidGrammar, g.Name, err)
	}
	return cascade, nil
}

// ============================================================================
// Encoding
// ============================================================================

// Parse decodes and validates a YAML grammar.
func Parse(data []byte) (*Grammar, error) {
	var g Grammar
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGrammar, err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Marshal encodes a grammar as YAML.
func Marshal(g *Grammar) ([]byte, error) {
	data, err := yaml.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode grammar %s: %w", g.Name, err)
	}
	return data, nil
}

// ============================================================================
// Files
// ============================================================================

// Load reads a grammar file from fsys.
func Load(fsys hackpadfs.FS, name string) (*Grammar, error) {
	data, err := hackpadfs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

// Save writes a grammar file to fsys.
func Save(fsys hackpadfs.FS, name string, g *Grammar) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	if err := hackpadfs.WriteFullFile(fsys, name, data, 0o644); err != nil {
		return fmt.Errorf("failed to write grammar file: %w", err)
	}
	return nil
}

// LoadDir reads every *.yaml and *.yml grammar in dir, sorted by file name.
func LoadDir(fsys hackpadfs.FS, dir string) ([]*Grammar, error) {
	entries, err := hackpadfs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list grammar dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	grammars := make([]*Grammar, 0, len(files))
	for _, f := range files {
		g, err := Load(fsys, f)
		if err != nil {
			return nil, err
		}
		grammars = append(grammars, g)
	}
	return grammars, nil
}

// ============================================================================
// Default grammar
// ============================================================================

// DefaultName is the name of the bundled grammar.
const DefaultName = "default"

// Default returns a small example cascade: noun phrases, prepositional
// phrases, verb phrases and declarative clauses over Penn Treebank tags.
func Default() *Grammar {
	return &Grammar{
		Name:        DefaultName,
		Description: "NP, PP, VP and declarative clause chunks over Penn Treebank tags",
		Rules: []RuleSpec{
			{Name: "NP", Pattern: `{*/(DT|JJ|NNPS|NNP|NNS|NN|PRP)}+`},
			{Name: "PP", Pattern: `{*/IN} {NP}`},
			{Name: "VP", Pattern: `{*/VB.*?} {NP} {PP}*`},
			{Name: "DC", Pattern: `{NP} {VP}`},
		},
	}
}
