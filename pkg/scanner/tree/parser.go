package tree

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kittclouds/poschunk/pkg/scanner/bracket"
)

// ErrInvalidArgument is returned when the input to parse is absent.
var ErrInvalidArgument = errors.New("invalid argument")

// Parse returns a tree for chunkedText, or nil when the text holds no chunk
// and no word/tag token (including when it is empty or blank).
func Parse(chunkedText string) *Branch {
	if strings.TrimSpace(chunkedText) == "" {
		return nil
	}

	children := scanElements(chunkedText)
	if children == nil {
		return nil
	}
	return &Branch{Kind: Root, Children: children}
}

// ParseReader reads all of r and parses it. A nil reader is an invalid argument.
func ParseReader(r io.Reader) (*Branch, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: reader is nil", ErrInvalidArgument)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read chunked text: %w", err)
	}
	return Parse(string(data)), nil
}

// scanElements builds the branches of one nesting level, recursing into chunk
// contents. It returns nil when the level has no elements.
func scanElements(text string) []*Branch {
	elements := bracket.Scan(text)
	if len(elements) == 0 {
		return nil
	}

	branches := make([]*Branch, 0, len(elements))
	for _, el := range elements {
		switch el.Kind {
		case bracket.ChunkElement:
			branch := &Branch{Kind: Chunk, Name: el.Name.Slice(text)}
			if inner := el.Inner.Slice(text); inner != "" {
				// Recursively add child chunks
				branch.Children = scanElements(inner)
			}
			branches = append(branches, branch)
		case bracket.TokenElement:
			branches = append(branches, &Branch{
				Kind: Tag,
				Word: el.Word.Slice(text),
				Tag:  el.Tag.Slice(text),
			})
		}
	}
	return branches
}
