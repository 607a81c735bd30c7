package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicer/internal/clock"
	"invoicer/internal/codec"
	"invoicer/internal/config"
	"invoicer/internal/logger"
	"invoicer/internal/store"
)

var version = "1.0.0"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg   *config.Config
	clock clock.Clock
}

func newRootCmd() *cobra.Command {
	a := &app{clock: clock.Real()}

	rootCmd := &cobra.Command{
		Use:   "invoicer",
		Short: "Create, price and keep invoices on this machine",
		Long: `Invoicer computes invoice totals and keeps your invoices in a local store.

Line items are priced with the item discount applied before item tax. The
document discount is then applied to the subtotal and the document tax to
the discounted subtotal. Values keep full precision and are only rounded
to two decimals when shown.

Invoices are kept in a local store (a directory of JSON files by default,
or SQLite or Redis) and can be exported to and imported from a single JSON
backup file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("backend", "", "Store backend: file, sqlite, redis or memory (overrides STORE_BACKEND)")
	rootCmd.PersistentFlags().String("store-path", "", "Store directory or database file (overrides STORE_PATH)")

	rootCmd.AddCommand(
		newNewCmd(a),
		newEditCmd(a),
		newSaveCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newCalcCmd(a),
		newRenderCmd(a),
	)
	return rootCmd
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := newRootCmd().Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configure loads configuration, applies flag overrides and sets up logging.
func (a *app) configure(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.StoreBackend = backend
	}
	if path, _ := cmd.Flags().GetString("store-path"); path != "" {
		cfg.StorePath = path
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	return nil
}

// openStore opens the configured backend. The caller must Close the store.
func (a *app) openStore(ctx context.Context, log zerolog.Logger) (*store.Store, error) {
	sc := a.cfg.GetStoreConfig()
	backend, err := store.Open(ctx, sc)
	if err != nil {
		log.Error().
			Err(err).
			Str("backend", sc.Kind).
			Str("path", sc.Path).
			Msg("Failed to open store")
		return nil, fmt.Errorf("failed to open %s store: %w", sc.Kind, err)
	}
	log.Debug().
		Str("backend", sc.Kind).
		Str("path", sc.Path).
		Int64("capacity_bytes", sc.CapacityBytes).
		Msg("Store opened")
	return store.New(backend, store.WithClock(a.clock)), nil
}

func (a *app) codec(st *store.Store) *codec.Codec {
	return codec.New(st, a.clock)
}

func closeStore(st *store.Store, log zerolog.Logger) {
	if err := st.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close store")
	}
}

// commandContext returns a context that is canceled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command, log zerolog.Logger) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling command")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
