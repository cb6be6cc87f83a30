// Package tree parses chunked text ("[DC [NP the/DT dog/NN] ran/VBD]") into a
// tree of chunk and tag branches.
package tree

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the variant of a Branch.
type Kind int

const (
	// Root is the unnamed container returned by Parse.
	Root Kind = iota
	// Chunk is a named bracket group.
	Chunk
	// Tag is a leaf word/tag pair.
	Tag
)

// String returns a readable name
func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case Chunk:
		return "chunk"
	case Tag:
		return "tag"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "root":
		*k = Root
	case "chunk":
		*k = Chunk
	case "tag":
		*k = Tag
	default:
		return fmt.Errorf("unknown branch kind %q", text)
	}
	return nil
}

// Branch is a node of a parse tree. Root and Chunk branches own their
// children; Tag branches are leaves carrying Word and Tag.
type Branch struct {
	Kind     Kind      `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Word     string    `json:"word,omitempty"`
	Tag      string    `json:"tag,omitempty"`
	Children []*Branch `json:"children,omitempty"`
}

// NewChunk creates a chunk branch.
func NewChunk(name string, children ...*Branch) *Branch {
	return &Branch{Kind: Chunk, Name: name, Children: children}
}

// NewTag creates a tag leaf.
func NewTag(word, tag string) *Branch {
	return &Branch{Kind: Tag, Word: word, Tag: tag}
}

// IsChunk reports whether b is a named chunk.
func (b *Branch) IsChunk() bool { return b != nil && b.Kind == Chunk }

// IsTag reports whether b is a tagged word.
func (b *Branch) IsTag() bool { return b != nil && b.Kind == Tag }

// FirstChild returns the first child or nil
func (b *Branch) FirstChild() *Branch {
	if len(b.Children) > 0 {
		return b.Children[0]
	}
	return nil
}

// Walk visits b and its descendants in pre-order. Returning false from fn
// skips the children of that branch.
func (b *Branch) Walk(fn func(*Branch) bool) {
	if b == nil || !fn(b) {
		return
	}
	for _, child := range b.Children {
		child.Walk(fn)
	}
}

// Leaves returns the tag branches in reading order.
func (b *Branch) Leaves() []*Branch {
	var leaves []*Branch
	b.Walk(func(n *Branch) bool {
		if n.Kind == Tag {
			leaves = append(leaves, n)
		}
		return true
	})
	return leaves
}

// Chunks returns every chunk with the given name, outermost first.
func (b *Branch) Chunks(name string) []*Branch {
	var chunks []*Branch
	b.Walk(func(n *Branch) bool {
		if n.Kind == Chunk && n.Name == name {
			chunks = append(chunks, n)
		}
		return true
	})
	return chunks
}

// Depth returns the number of chunk levels below b.
func (b *Branch) Depth() int {
	deepest := 0
	for _, child := range b.Children {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}
	if b.Kind == Chunk {
		return deepest + 1
	}
	return deepest
}

// String renders b back into bracket notation.
func (b *Branch) String() string {
	var sb strings.Builder
	b.render(&sb)
	return sb.String()
}

func (b *Branch) render(sb *strings.Builder) {
	switch b.Kind {
	case Tag:
		sb.WriteString(b.Word)
		sb.WriteByte('/')
		sb.WriteString(b.Tag)
	case Chunk:
		sb.WriteByte('[')
		sb.WriteString(b.Name)
		for _, child := range b.Children {
			sb.WriteByte(' ')
			child.render(sb)
		}
		sb.WriteByte(']')
	default:
		for i, child := range b.Children {
			if i > 0 {
				sb.WriteByte(' ')
			}
			child.render(sb)
		}
	}
}

// Format provides an indented tree view for debugging.
func (b *Branch) Format() string {
	var sb strings.Builder
	b.printRecursive(&sb, 0)
	return sb.String()
}

func (b *Branch) printRecursive(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)

	switch b.Kind {
	case Tag:
		fmt.Fprintf(sb, "%s%s/%s\n", indent, b.Word, b.Tag)
	case Chunk:
		fmt.Fprintf(sb, "%s%s\n", indent, b.Name)
	default:
		fmt.Fprintf(sb, "%s(root)\n", indent)
	}

	for _, child := range b.Children {
		child.printRecursive(sb, depth+1)
	}
}

// JSON encodes the tree; a nil branch encodes as null.
func (b *Branch) JSON() ([]byte, error) {
	return json.Marshal(b)
}
