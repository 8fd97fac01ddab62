package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mmrzaf/fixturegen/internal/app"
	"github.com/mmrzaf/fixturegen/internal/config"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/logging"
	"github.com/spf13/cobra"
)

const defaultLedgerPath = ".fixturegen-ledger.db"

var (
	configFile  string
	fixturesDir string
	ledgerPath  string
	logLevel    string
	noLedger    bool
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "fixturegen",
		Short:         "Generate and persist test fixtures from JSON Schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./fixturegen.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&fixturesDir, "fixtures-dir", "", "Fixtures directory (overrides fixtures_dir)")
	rootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "Created-records ledger path (overrides ledger_path)")
	rootCmd.PersistentFlags().BoolVar(&noLedger, "no-ledger", false, "Do not read or write the created-records ledger")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides log_level)")

	rootCmd.AddCommand(fixturesCmd())
	rootCmd.AddCommand(generatorsCmd())
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(createdCmd())
	rootCmd.AddCommand(clearCmd())
	rootCmd.AddCommand(targetCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		errColor.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// loadConfig resolves configuration and applies the persistent flags on top.
func loadConfig() (*config.Config, error) {
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, domain.ConfigurationError("load_config", "", err)
	}
	if fixturesDir != "" {
		cfg.FixturesDir = fixturesDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if ledgerPath != "" {
		cfg.LedgerPath = ledgerPath
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = defaultLedgerPath
	}
	if noLedger {
		cfg.LedgerPath = ""
	}
	return cfg, nil
}

// newLogger writes console-formatted logs to stderr so stdout stays parseable.
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.New(cfg.LogLevel, logging.FormatConsole, os.Stderr)
}

func openService(ctx context.Context) (*app.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	svc, err := app.NewService(ctx, cfg, newLogger(cfg))
	if err != nil {
		return nil, err
	}
	for _, c := range svc.Collisions() {
		warnColor.Fprintf(os.Stderr, "warning: fixture %q from %s overrides %s\n", c.Name, c.File, c.Previous)
	}
	return svc, nil
}

func exitCode(err error) int {
	switch domain.KindOf(err) {
	case domain.KindConfiguration:
		return 2
	case domain.KindNotFound:
		return 3
	case domain.KindGeneration:
		return 4
	case domain.KindPersistence:
		return 5
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		warnColor.Fprintf(os.Stderr, "warning: close: %v\n", err)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
