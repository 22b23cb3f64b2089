package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vidpace-sender/backend"
	"vidpace-sender/config"
	"vidpace-sender/form"
	"vidpace-sender/storage"
)

// Global configuration instance
var cfg *config.Config

// out is where user-facing output goes; tests swap it.
var out io.Writer = os.Stdout

func preRunConfigE(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if apiURL, err := cmd.Flags().GetString("api-url"); err == nil && len(apiURL) > 0 {
		cfg.APIBaseURL = apiURL
	}

	return setupLogging(cmd)
}

func setupLogging(cmd *cobra.Command) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	// check if verbose flag is set
	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	// keep stdout for command output
	logrus.SetOutput(os.Stderr)
	return nil
}

// openStore opens the configured field store. The command line has no
// session to outlive, so "memory" is promoted to the file store there.
func openStore(ctx context.Context, serving bool) (storage.Store, func(), error) {
	driver := cfg.FieldStore
	if !serving && driver == config.StoreMemory {
		driver = config.StoreFile
	}
	noop := func() {}

	switch driver {
	case config.StoreMemory:
		return storage.NewMemoryStore(), noop, nil
	case config.StoreFile:
		s, err := storage.OpenFile(cfg.FieldsFile)
		if err != nil {
			return nil, nil, err
		}
		logrus.WithField("path", s.Path()).Debug("using file field store")
		return s, noop, nil
	case config.StorePostgres:
		s, err := storage.OpenPostgres(ctx, cfg.DBDSN, "")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case config.StoreRedis:
		s, err := storage.OpenRedis(ctx, cfg.RedisURL, "")
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown field store %q", driver)
}

func newBackend() *backend.Client {
	return backend.New(cfg.APIBaseURL, cfg.BackendTimeout)
}

// newController builds a controller for the terminal commands.
func newController(ctx context.Context) (*form.Controller, func(), error) {
	store, closeStore, err := openStore(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	return form.New(store, newBackend(), form.WithAutoHide(cfg.StatusAutoHide)), closeStore, nil
}

var rootCmd = &cobra.Command{
	Use:   "vidpace",
	Short: "Compose, preview and send personalized emails",
	Long: `vidpace collects sender credentials and message content, previews the
personalized message and posts it to the email backend.

Non-secret fields are remembered between runs. The password never is.`,
	PersistentPreRunE: preRunConfigE,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("api-url", "", "Override the backend base URL (e.g., http://localhost:3000)")

	rootCmd.AddCommand(serveCmd, composeCmd, previewCmd, sendCmd, fieldsCmd)
}

func GetCommandOptions() *cobra.Command {
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
