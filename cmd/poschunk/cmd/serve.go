package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kittclouds/poschunk/internal/api"
	"github.com/kittclouds/poschunk/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the chunking API on the configured listen address.

Grammars in grammar_dir are imported on startup; changed files get a new
version.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if dir := appConfig.GrammarDir; dir != "" {
		if err := importGrammarDir(st, dir); err != nil {
			return err
		}
	}

	srv := api.NewServer(st, logger, appConfig).HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("db", appConfig.Database).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func importGrammarDir(st store.Storer, dir string) error {
	grammars, err := loadGrammars(dir)
	if err != nil {
		return err
	}
	for _, g := range grammars {
		rec, added, err := store.ImportGrammar(st, g, "import "+dir, now())
		if err != nil {
			return err
		}
		if added {
			logger.Info().Str("grammar", rec.Name).Int("version", rec.Version).Msg("grammar imported")
		}
	}
	return nil
}
