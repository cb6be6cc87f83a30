// Package chunker implements rule-based phrase chunking over POS-tagged text.
//
// Input is a sequence of "word/tag" tokens separated by spaces. Each rule
// wraps its matches in a named bracket, "[NP the/DT dog/NN]", and later rules
// see the output of earlier ones, so chunks compose (NP feeds PP feeds VP).
package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// ErrInvalidArgument is returned for absent or malformed required input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidPattern is returned when an expanded rule pattern does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// ============================================================================
// Chunker
// ============================================================================

// Chunker compiles and applies rule cascades.
type Chunker struct {
	log zerolog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithLogger sets the logger used for per-rule debug output.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Chunker) {
		c.log = log
	}
}

// New creates a Chunker. Without options it logs nothing.
func New(opts ...Option) *Chunker {
	c := &Chunker{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk returns the result of applying rules, in order, to taggedText.
// A nil rule list is an invalid argument; blank text is returned unchanged.
func (c *Chunker) Chunk(taggedText string, rules []Rule) (string, error) {
	if rules == nil {
		return "", fmt.Errorf("%w: rules are required", ErrInvalidArgument)
	}
	if strings.TrimSpace(taggedText) == "" {
		return taggedText, nil
	}

	cascade, err := c.Compile(rules)
	if err != nil {
		return "", err
	}
	return cascade.Apply(taggedText), nil
}

// Compile validates and compiles rules into a reusable Cascade.
func (c *Chunker) Compile(rules []Rule) (*Cascade, error) {
	if rules == nil {
		return nil, fmt.Errorf("%w: rules are required", ErrInvalidArgument)
	}

	// Pass 1: expand tokens, collect every chunk name the cascade knows
	expanded := make([]string, len(rules))
	var names []string
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		expanded[i] = expandTokens(rule.Pattern)
		names = append(names, rule.ChunkName)
		for _, ref := range chunkRefs(expanded[i]) {
			names = append(names, ref.name)
		}
	}

	syms, err := newSymbolTable(names)
	if err != nil {
		return nil, err
	}

	// Pass 2: bind chunk references and compile
	compiled := make([]compiledRule, len(rules))
	for i, rule := range rules {
		cr, err := compileRule(rule, expanded[i], syms)
		if err != nil {
			return nil, err
		}
		compiled[i] = cr
	}

	return &Cascade{
		rules:  compiled,
		syms:   syms,
		filter: newPrefilter(compiled),
		log:    c.log,
	}, nil
}

// Chunk applies rules with a default Chunker.
func Chunk(taggedText string, rules []Rule) (string, error) {
	return New().Chunk(taggedText, rules)
}

// ============================================================================
// Cascade
// ============================================================================

// Cascade is a compiled, ordered rule list. It holds no mutable state and is
// safe for concurrent use.
type Cascade struct {
	rules  []compiledRule
	syms   *symbolTable
	filter *prefilter
	log    zerolog.Logger
}

// Apply folds every rule over text, each rule seeing the previous output.
func (c *Cascade) Apply(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	result := text
	for i := range c.rules {
		result = c.applyRule(result, &c.rules[i])
	}
	return result
}

func (c *Cascade) applyRule(text string, r *compiledRule) string {
	if !c.filter.admits(r, text) {
		c.log.Debug().
			Str("rule", r.rule.ChunkName).
			Strs("requires", r.required).
			Msg("rule skipped, referenced chunk absent")
		return text
	}

	result, count := r.wrap(text, c.syms)
	c.log.Debug().
		Str("rule", r.rule.ChunkName).
		Int("chunks", count).
		Msg("rule applied")
	return result
}

// Len returns the number of rules.
func (c *Cascade) Len() int {
	return len(c.rules)
}

// Rules returns a copy of the source rules.
func (c *Cascade) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.rule
	}
	return out
}
