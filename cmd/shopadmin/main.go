package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shopadmin/cmd/shopadmin/ui"
	"shopadmin/internal/admission"
	"shopadmin/internal/backend/localauth"
	"shopadmin/internal/backend/localstore"
	"shopadmin/internal/config"
	"shopadmin/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dbPath     string

	// Loaded configuration
	cfg *config.Config

	// Logger for non-interactive subcommands. The dashboard owns the
	// terminal, so it logs to files through internal/logging instead.
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shopadmin",
	Short: "Terminal admin dashboard for the shop storefront",
	Long: `shopadmin is a terminal dashboard for managing storefront data:
orders, products and registered users.

Access requires an admin flag; see the bootstrap-admin subcommand for
granting the first one. Run without arguments to start the dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(resolveConfigPath())
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Store.DatabasePath = dbPath
		}

		if err := logging.Initialize(config.DefaultDataDir(), cfg.Logging.Debug || verbose, cfg.Logging.Level); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		// Skip the console logger for the interactive dashboard; it has its
		// own UI.
		if cmd.Use == "shopadmin" && cmd.CalledAs() == "shopadmin" {
			return nil
		}
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(config.DefaultDataDir(), "config.yaml")
}

// tokenSecret returns the configured signing secret, or a per-process
// random one. Sessions only live as long as the process, so an ephemeral
// secret is safe when none is configured.
func tokenSecret() []byte {
	if cfg.Auth.TokenSecret != "" {
		return []byte(cfg.Auth.TokenSecret)
	}
	return []byte(uuid.NewString())
}

func runDashboard() error {
	logging.Boot("shopadmin %s starting", cfg.Version)

	store, err := localstore.Open(cfg.Store.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	auth := localauth.New(store, tokenSecret(), cfg.GetSessionTTL())
	checker := admission.New(store)

	model := ui.NewModel(store, auth, checker, ui.Options{
		Theme:          cfg.UI.Theme,
		SearchDebounce: cfg.GetSearchDebounce(),
		LoadTimeout:    cfg.GetRequestTimeout(),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard exited with error: %w", err)
	}
	logging.Boot("shopadmin shut down cleanly")
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.shopadmin/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Store database path (overrides config)")

	rootCmd.AddCommand(bootstrapAdminCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openStore opens the configured store for subcommands.
func openStore() (*localstore.Store, error) {
	return localstore.Open(cfg.Store.DatabasePath)
}

// requestTimeout is a convenience for subcommand contexts.
func requestTimeout() time.Duration {
	return cfg.GetRequestTimeout()
}
