package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kittclouds/poschunk/internal/store"
	"github.com/kittclouds/poschunk/pkg/grammar"
)

var (
	grammarReason  string
	grammarVersion int
)

var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Manage stored grammars",
}

var grammarImportCmd = &cobra.Command{
	Use:   "import <file|dir>...",
	Short: "Import YAML grammars",
	Long: `Stores each grammar file, or every *.yaml/*.yml file of a directory.
Unchanged grammars are skipped; changed ones get a new version.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGrammarImport,
}

var grammarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored grammars",
	Args:  cobra.NoArgs,
	RunE:  runGrammarList,
}

var grammarShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored grammar as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrammarShow,
}

var grammarHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "List the versions of a grammar",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrammarHistory,
}

var grammarExportCmd = &cobra.Command{
	Use:   "export <name> <file>",
	Short: "Write a stored grammar to a YAML file",
	Args:  cobra.ExactArgs(2),
	RunE:  runGrammarExport,
}

func init() {
	rootCmd.AddCommand(grammarCmd)
	grammarCmd.AddCommand(grammarImportCmd, grammarListCmd, grammarShowCmd, grammarHistoryCmd, grammarExportCmd)

	grammarImportCmd.Flags().StringVarP(&grammarReason, "reason", "m", "import", "change reason recorded with new versions")
	grammarShowCmd.Flags().IntVar(&grammarVersion, "version", 0, "version to show (default: current)")
	grammarExportCmd.Flags().IntVar(&grammarVersion, "version", 0, "version to export (default: current)")
}

func runGrammarImport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, arg := range args {
		grammars, err := loadGrammars(arg)
		if err != nil {
			return err
		}
		for _, g := range grammars {
			rec, added, err := store.ImportGrammar(st, g, grammarReason, now())
			if err != nil {
				return err
			}
			status := "unchanged"
			if added {
				status = "imported"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s v%d\n", status, rec.Name, rec.Version)
		}
	}
	return nil
}

func loadGrammars(p string) ([]*grammar.Grammar, error) {
	fsys, name, err := osPath(p)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return grammar.LoadDir(fsys, name)
	}
	g, err := grammar.Load(fsys, name)
	if err != nil {
		return nil, err
	}
	return []*grammar.Grammar{g}, nil
}

func runGrammarList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	recs, err := st.ListGrammars()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tRULES\tUPDATED\tDESCRIPTION")
	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			rec.Name, rec.Version, rec.RuleCount, formatMillis(rec.UpdatedAt), rec.Description)
	}
	return w.Flush()
}

func runGrammarShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := lookupGrammar(st, args[0], grammarVersion)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), rec.Source)
	return nil
}

func runGrammarHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	versions, err := st.ListGrammarVersions(args[0])
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return fmt.Errorf("grammar not found: %s", args[0])
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tRULES\tFROM\tTO\tREASON")
	for _, rec := range versions {
		to := "current"
		if rec.ValidTo != nil {
			to = formatMillis(*rec.ValidTo)
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			rec.Version, rec.RuleCount, formatMillis(rec.ValidFrom), to, rec.ChangeReason)
	}
	return w.Flush()
}

func runGrammarExport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := lookupGrammar(st, args[0], grammarVersion)
	if err != nil {
		return err
	}
	g, err := rec.Grammar()
	if err != nil {
		return err
	}
	fsys, name, err := osPath(args[1])
	if err != nil {
		return err
	}
	if err := grammar.Save(fsys, name, g); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s v%d to %s\n", rec.Name, rec.Version, args[1])
	return nil
}

func lookupGrammar(st store.Storer, name string, version int) (*store.GrammarRecord, error) {
	var (
		rec *store.GrammarRecord
		err error
	)
	if version > 0 {
		rec, err = st.GetGrammarVersion(name, version)
	} else {
		rec, err = st.GetGrammar(name)
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		if version > 0 {
			return nil, fmt.Errorf("grammar not found: %s v%d", name, version)
		}
		return nil, fmt.Errorf("grammar not found: %s", name)
	}
	return rec, nil
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
