package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/config"
	"github.com/safetyshield/guardian/internal/factory"
	"github.com/safetyshield/guardian/internal/logging"
	"github.com/safetyshield/guardian/internal/ports"
)

// CLIFlags contains all command line flags for the safety-check tool
type CLIFlags struct {
	// Risk API flags
	APIBaseURL string
	APITimeout string

	// Check flags
	URL       string
	InputFile string

	// Output flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Risk API flags
	flag.StringVar(&flags.APIBaseURL, "api", "http://localhost:8080", "Base URL of the risk scoring API")
	flag.StringVar(&flags.APITimeout, "api-timeout", "10s", "Risk API request timeout")

	// Check flags
	flag.StringVar(&flags.URL, "url", "", "Website URL to check")
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")

	// Output flags
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the safety-check tool
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register risk client factory
	if err := container.Provide(factory.NewRiskClientFactory); err != nil {
		return nil, err
	}

	// Register risk client
	if err := container.Provide(func(f *factory.RiskClientFactory) (ports.RiskClient, error) {
		return f.CreateRiskClient()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("api.base_url", flags.APIBaseURL)
	v.Set("api.timeout", flags.APITimeout)
	v.Set("cli.verbose", flags.Verbose)

	return config.NewFromViper(v)
}
