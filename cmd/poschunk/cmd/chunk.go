package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kittclouds/poschunk/internal/store"
	"github.com/kittclouds/poschunk/pkg/grammar"
	"github.com/kittclouds/poschunk/pkg/scanner/chunker"
	"github.com/kittclouds/poschunk/pkg/scanner/tree"
)

var (
	chunkGrammar string
	chunkTree    bool
	chunkStore   bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file]",
	Short: "Chunk tagged text",
	Long: `Applies a grammar to word/TAG text, one sentence per line.
Reads stdin when no file is given.

The grammar is a YAML file or the name of a stored grammar; without
--grammar the configured default grammar is used.

Examples:
  echo "The/DT dog/NN barked/VBD" | poschunk chunk
  poschunk chunk --grammar english.yaml corpus.txt
  poschunk chunk --grammar english --tree corpus.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)
	chunkCmd.Flags().StringVarP(&chunkGrammar, "grammar", "g", "", "grammar file or stored grammar name")
	chunkCmd.Flags().BoolVar(&chunkTree, "tree", false, "print the parsed tree of each line")
	chunkCmd.Flags().BoolVar(&chunkStore, "store", false, "save the result as a document")
}

func runChunk(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var st *store.SQLiteStore
	if chunkStore || !isFile(chunkGrammar) {
		st, err = openStore()
		if err != nil {
			return err
		}
		defer st.Close()
	}

	g, version, err := resolveGrammar(st, chunkGrammar)
	if err != nil {
		return err
	}
	cascade, err := g.Compile(chunker.New(chunker.WithLogger(logger)))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	lines := strings.Split(strings.TrimRight(text, "\r\n"), "\n")
	chunked := make([]string, len(lines))
	for i, line := range lines {
		chunked[i] = cascade.Apply(strings.TrimRight(line, "\r"))
		fmt.Fprintln(out, chunked[i])
		if chunkTree {
			if root := tree.Parse(chunked[i]); root != nil {
				fmt.Fprint(out, root.Format())
			}
		}
	}

	if chunkStore {
		doc := &store.Document{
			ID:             uuid.NewString(),
			GrammarName:    g.Name,
			GrammarVersion: version,
			TaggedText:     text,
			ChunkedText:    strings.Join(chunked, "\n"),
			CreatedAt:      now(),
		}
		if err := st.SaveDocument(doc); err != nil {
			return err
		}
		logger.Info().Str("document", doc.ID).Str("grammar", g.Name).Msg("document saved")
	}
	return nil
}

// resolveGrammar loads ref as a grammar file when it names one, otherwise
// as a stored grammar. File grammars report version 0.
func resolveGrammar(st store.Storer, ref string) (*grammar.Grammar, int, error) {
	if isFile(ref) {
		fsys, name, err := osPath(ref)
		if err != nil {
			return nil, 0, err
		}
		g, err := grammar.Load(fsys, name)
		return g, 0, err
	}

	if ref == "" {
		ref = appConfig.DefaultGrammar
	}
	rec, err := st.GetGrammar(ref)
	if err != nil {
		return nil, 0, err
	}
	if rec == nil {
		return nil, 0, fmt.Errorf("grammar not found: %s", ref)
	}
	g, err := rec.Grammar()
	if err != nil {
		return nil, 0, err
	}
	return g, rec.Version, nil
}
