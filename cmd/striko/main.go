package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/holps-7/striko/pkg/core"
	"github.com/holps-7/striko/pkg/executor"
	"github.com/holps-7/striko/pkg/storage"
	"github.com/holps-7/striko/pkg/tui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile    string
	storageDir string
	logLevel   string
	rootCmd    = &cobra.Command{
		Use:     "striko",
		Short:   "Striko - a lightweight HTTP API client for your terminal",
		Version: version,
		Long: `Striko composes, sends and inspects HTTP requests. Requests you send show up
in the activity list; save them into collections and keep variables in
environments. Run without arguments to open the request panel.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := tui.Run(a.session); err != nil {
				return fmt.Errorf("running striko: %w", err)
			}
			return nil
		},
	}
)

func init() {
	cobra.OnInitialize(loadDotEnv, initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .striko/config.json)")
	rootCmd.PersistentFlags().StringVar(&storageDir, "storage-dir", "", "directory holding collections and environments (default .striko)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	_ = viper.BindPFlag("storage_dir", rootCmd.PersistentFlags().Lookup("storage-dir"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// loadDotEnv loads .env if it exists (optional, warn if malformed).
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load .env file: %v\n", err)
	}
}

func initConfig() {
	defaults := core.DefaultConfig()
	viper.SetDefault("storage_dir", defaults.StorageDir)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("log_file", defaults.LogFile)
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.allowed_origins", []string{})
	viper.SetDefault("user_agent", "striko/"+version)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(core.FolderName)
		viper.SetConfigType("json")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("striko")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// loadConfig reads the effective configuration from viper.
func loadConfig() (core.Config, error) {
	var cfg core.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return core.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// app bundles what every command needs.
type app struct {
	cfg          core.Config
	logger       *slog.Logger
	executor     *executor.Executor
	collections  *storage.CollectionStore
	environments *storage.EnvironmentStore
	session      *core.Session
	closers      []io.Closer
}

// newApp initializes the storage folder and wires the session. The TUI logs
// to the configured log file since stderr belongs to the terminal UI.
func newApp(forTUI bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if _, err := core.InitializeFolder(cfg.StorageDir); err != nil {
		return nil, fmt.Errorf("initializing %s: %w", cfg.StorageDir, err)
	}

	// Re-read config after initialization (first run creates config.json
	// after Viper's initial read). Without --config, the file is the one
	// inside the storage directory.
	if cfgFile == "" {
		viper.SetConfigFile(filepath.Join(cfg.StorageDir, core.ConfigFileName))
	}
	if err := viper.ReadInConfig(); err == nil {
		if cfg, err = loadConfig(); err != nil {
			return nil, err
		}
	}

	a := &app{cfg: cfg}

	var out io.Writer = os.Stderr
	if forTUI {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f)
		out = f
	}
	a.logger = newLogger(cfg.LogLevel, out)

	a.executor = executor.New(executor.WithUserAgent(cfg.UserAgent))
	a.collections = storage.NewCollectionStore(cfg.StorageDir, a.logger)
	a.environments = storage.NewEnvironmentStore(cfg.StorageDir, a.logger)
	a.session = core.NewSession(a.executor, a.collections, a.environments, a.logger)
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
