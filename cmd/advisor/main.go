// Beauty Advisor terminal client
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashureev/beauty-advisor/internal/config"
	"github.com/ashureev/beauty-advisor/internal/conversation"
	"github.com/ashureev/beauty-advisor/internal/profile"
	"github.com/ashureev/beauty-advisor/internal/store"
)

var (
	// Global flags
	verbose  bool
	relayURL string
	source   string
	dbPath   string
	inMemory bool
	plain    bool
)

// rootCmd starts the interactive advisor.
var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Chat with the L’Oréal Beauty Advisor",
	Long: `advisor is a terminal chat with the L’Oréal Beauty Advisor.

Questions are sent to the relay service. Browse the catalog, select products
and ask for a personalized routine built from them.

Commands inside the chat:
  /categories            list product categories
  /products <category>   list products in a category
  /select <id>           select or deselect a product
  /remove <id>           deselect a product
  /selected              list selected products
  /routine               generate a routine from the selection
  /quit                  leave`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelError
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: level,
		})))
		if err := godotenv.Load(); err != nil {
			slog.Debug("No .env file found, using environment variables")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// forgetCmd clears the persisted conversation and profile.
var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Delete the saved conversation and remembered name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions(cmd)
		if err != nil {
			return err
		}
		blobs, err := openStore(cmd.Context(), opts)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := blobs.Close(); closeErr != nil {
				slog.Error("Failed to close store", "error", closeErr)
			}
		}()

		for _, key := range []string{conversation.StorageKey, profile.StorageKey} {
			if err := blobs.Delete(cmd.Context(), key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Conversation and profile cleared.")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&relayURL, "relay-url", "", "Relay endpoint (or set ADVISOR_RELAY_URL)")
	rootCmd.PersistentFlags().StringVar(&source, "catalog", "", "Catalog URL or file (or set ADVISOR_CATALOG)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite file for history (or set ADVISOR_DB_PATH)")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "Keep history in memory only")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "Disable colors and markdown styling")

	rootCmd.AddCommand(forgetCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// resolveOptions loads the environment configuration and applies flags on top.
func resolveOptions(cmd *cobra.Command) (options, error) {
	cfg, err := config.LoadAdvisor(nil)
	if err != nil {
		return options{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("relay-url") {
		cfg.RelayURL = relayURL
	}
	if flags.Changed("catalog") {
		cfg.Catalog = source
	}
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return options{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return options{
		Advisor: *cfg,
		Memory:  inMemory,
		Plain:   plain,
	}, nil
}

func openStore(ctx context.Context, opts options) (store.Blobs, error) {
	if opts.Memory {
		return store.NewMemory(), nil
	}
	blobs, err := store.NewSQLite(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	if err := blobs.Ping(ctx); err != nil {
		_ = blobs.Close()
		return nil, fmt.Errorf("history store health check: %w", err)
	}
	slog.Debug("History store connected", "path", opts.DBPath)
	return blobs, nil
}
