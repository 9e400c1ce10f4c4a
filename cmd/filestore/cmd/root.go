package cmd

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"

	filestore "github.com/trampoline/sonar-connector-filestore"
)

var rootCmd = &cobra.Command{
	Use:   "filestore",
	Short: "Staged-processing file store CLI",
	Long: `CLI for inspecting and maintaining filestore stores.

Stores are declared in the config file:

  root: /var/spool/connectors
  stores:
    ingest: [pending, error, done]
    push: [pending]

Store names are case-insensitive in the config file and are used in
lowercase.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/filestore/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "directory holding the stores (default: current directory)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FILESTORE")
	viper.AutomaticEnv()
	viper.SetDefault("root", ".")

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "filestore")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "filestore")
	}
	return ".filestore"
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := zerolog.InfoLevel
	if viper.GetBool("debug") {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level).With().Timestamp().Logger()
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}

// storeNames returns the configured store names, sorted.
func storeNames() []string {
	stores := viper.GetStringMapStringSlice("stores")
	names := make([]string, 0, len(stores))
	for name := range stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// storeConfig is one configured store, resolved from viper.
type storeConfig struct {
	root  string
	name  string
	areas []string
}

// resolveStores looks up the given store names in the config. It reads
// viper on the calling goroutine only.
func resolveStores(names []string) ([]storeConfig, error) {
	root := viper.GetString("root")
	stores := viper.GetStringMapStringSlice("stores")
	configs := make([]storeConfig, 0, len(names))
	for _, name := range names {
		areas, ok := stores[name]
		if !ok {
			return nil, errors.Errorf("store %q is not configured", name)
		}
		configs = append(configs, storeConfig{root: root, name: name, areas: areas})
	}
	return configs, nil
}

func (c storeConfig) open(ctx context.Context) (*filestore.Store, error) {
	return filestore.New(c.root, c.name, c.areas, filestore.WithLogger(*zerolog.Ctx(ctx)))
}

// openStore opens the configured store name, creating its directories.
func openStore(ctx context.Context, name string) (*filestore.Store, error) {
	configs, err := resolveStores([]string{name})
	if err != nil {
		return nil, err
	}
	return configs[0].open(ctx)
}
