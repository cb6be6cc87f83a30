package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kittclouds/poschunk/pkg/scanner/tree"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse bracketed text into a tree",
	Long: `Parses chunked text such as "[NP The/DT dog/NN] barked/VBD" into a
tree of chunks and tagged words. Reads stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the tree as JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	root, err := tree.ParseReader(strings.NewReader(text))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if parseJSON {
		data, err := root.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	if root == nil {
		return nil
	}
	fmt.Fprint(out, root.Format())
	return nil
}
