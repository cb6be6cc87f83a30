package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kittclouds/poschunk/internal/config"
	"github.com/kittclouds/poschunk/internal/logging"
	"github.com/kittclouds/poschunk/internal/store"
	"github.com/kittclouds/poschunk/pkg/grammar"
)

var (
	cfgFile  string
	logLevel string

	appConfig config.Config
	logger    zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "poschunk",
	Short: "Regex chunking of part-of-speech tagged text",
	Long: `poschunk groups word/TAG tokens into bracketed chunks with an ordered
cascade of regex rules, and parses bracketed text into trees.

  [NP The/DT dog/NN] [VP barked/VBD]

Grammars are YAML rule lists kept in a versioned store.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger = l
	log.Logger = l
	return nil
}

// openStore opens the configured grammar and document store and makes sure
// the built-in grammar is present.
func openStore() (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStoreWithDSN(appConfig.Database)
	if err != nil {
		return nil, err
	}
	if _, added, err := store.ImportGrammar(st, grammar.Default(), "built-in", now()); err != nil {
		st.Close()
		return nil, err
	} else if added {
		logger.Debug().Str("grammar", grammar.DefaultName).Msg("seeded built-in grammar")
	}
	return st, nil
}

// osPath maps a host path onto the OS filesystem.
func osPath(p string) (hackpadfs.FS, string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, "", err
	}
	fsys := osfs.NewFS()
	name, err := fsys.FromOSPath(abs)
	if err != nil {
		return nil, "", fmt.Errorf("path %s: %w", p, err)
	}
	return fsys, name, nil
}

// readInput reads the named file, or stdin when no file (or "-") is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	fsys, name, err := osPath(args[0])
	if err != nil {
		return "", err
	}
	data, err := hackpadfs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func now() int64 {
	return time.Now().UnixMilli()
}
