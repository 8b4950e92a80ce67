package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/schemebot/schemebot/internal/api"
	"github.com/schemebot/schemebot/internal/catalog"
	"github.com/schemebot/schemebot/internal/flow"
	"github.com/schemebot/schemebot/internal/genai"
	"github.com/schemebot/schemebot/internal/recommend"
	"github.com/schemebot/schemebot/internal/util"
)

// Default configuration constants
const (
	// DefaultSchemesFile is the default JSON catalog location.
	DefaultSchemesFile = "data/schemes.json"
	// DefaultAPIAddr is the default API listen address.
	DefaultAPIAddr = ":8080"
	// DefaultLanguage is the fallback conversation language.
	DefaultLanguage = "en"
	// DefaultSessionTimeout is the session inactivity timeout.
	DefaultSessionTimeout = 600 * time.Second
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Build module options
	catalogOpts := buildCatalogOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	apiOpts := buildAPIOptions(flags, config)

	slog.Info("Bootstrapping SchemeBot with configured modules")
	slog.Debug("Final configuration",
		"schemes_file", *flags.schemesFile,
		"dsn_set", *flags.schemesDSN != "",
		"api_addr", *flags.apiAddr,
		"default_language", *flags.defaultLanguage)

	if err := run(catalogOpts, genaiOpts, apiOpts); err != nil {
		slog.Error("SchemeBot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("SchemeBot exited successfully")
}

// run wires the catalog, capability client, and API server together and
// serves until interrupted.
func run(catalogOpts []catalog.Option, genaiOpts []genai.Option, apiOpts []api.Option) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := catalog.NewStore(catalogOpts...)
	if err != nil {
		return err
	}
	cat := catalog.Load(ctx, store)

	client, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return err
	}

	rec := recommend.NewService(cat)
	server := api.NewServer(client, rec, apiOpts...)
	return server.Run(ctx)
}

// Config holds environment configuration
type Config struct {
	SchemesFile         string
	SchemesDSN          string
	OpenAIKey           string
	OpenAIModel         string
	APIAddr             string
	DefaultLanguage     string
	ConfidenceThreshold float64
	MaxRetries          int
	SessionTimeout      time.Duration
}

// Flags holds command line flag values
type Flags struct {
	schemesFile     *string
	schemesDSN      *string
	openaiKey       *string
	openaiModel     *string
	apiAddr         *string
	defaultLanguage *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		SchemesFile:         os.Getenv("SCHEMES_FILE"),
		SchemesDSN:          os.Getenv("SCHEMES_DSN"),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         os.Getenv("OPENAI_MODEL"),
		APIAddr:             os.Getenv("API_ADDR"),
		DefaultLanguage:     os.Getenv("DEFAULT_LANGUAGE"),
		ConfidenceThreshold: util.ParseFloatEnv("MIN_CONFIDENCE_THRESHOLD", flow.DefaultConfidenceThreshold),
		MaxRetries:          util.ParseIntEnv("MAX_RETRIES", flow.DefaultMaxRetries),
		SessionTimeout:      util.ParseDurationEnv("CONVERSATION_TIMEOUT", DefaultSessionTimeout),
	}

	// A JSON file catalog is the default source when no DSN is set.
	if config.SchemesFile == "" && config.SchemesDSN == "" {
		config.SchemesFile = DefaultSchemesFile
		slog.Debug("No SCHEMES_FILE or SCHEMES_DSN set, using default catalog file", "schemes_file", config.SchemesFile)
	}
	if config.APIAddr == "" {
		config.APIAddr = DefaultAPIAddr
	}
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = DefaultLanguage
	}

	slog.Debug("environment variables loaded",
		"SCHEMES_FILE", config.SchemesFile,
		"SCHEMES_DSN_SET", config.SchemesDSN != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"OPENAI_MODEL", config.OpenAIModel,
		"API_ADDR", config.APIAddr,
		"DEFAULT_LANGUAGE", config.DefaultLanguage,
		"MIN_CONFIDENCE_THRESHOLD", config.ConfidenceThreshold,
		"MAX_RETRIES", config.MaxRetries,
		"CONVERSATION_TIMEOUT", config.SessionTimeout)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		schemesFile:     flag.String("schemes-file", config.SchemesFile, "path to JSON scheme catalog (overrides $SCHEMES_FILE)"),
		schemesDSN:      flag.String("schemes-dsn", config.SchemesDSN, "database DSN for the scheme catalog (overrides $SCHEMES_DSN)"),
		openaiKey:       flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:     flag.String("openai-model", config.OpenAIModel, "OpenAI chat model (overrides $OPENAI_MODEL)"),
		apiAddr:         flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		defaultLanguage: flag.String("default-language", config.DefaultLanguage, "default conversation language, en or hi (overrides $DEFAULT_LANGUAGE)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"schemesFile", *flags.schemesFile,
		"schemesDSN_set", *flags.schemesDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"openaiModel", *flags.openaiModel,
		"apiAddr", *flags.apiAddr,
		"defaultLanguage", *flags.defaultLanguage)

	return flags
}

// buildCatalogOptions constructs catalog store configuration options
func buildCatalogOptions(flags Flags) []catalog.Option {
	var opts []catalog.Option
	if *flags.schemesDSN != "" {
		slog.Debug("Configuring SQL catalog store", "dsn_set", true)
		opts = append(opts, catalog.WithDSN(*flags.schemesDSN))
	} else {
		slog.Debug("Configuring JSON file catalog store", "schemes_file", *flags.schemesFile)
		opts = append(opts, catalog.WithFile(*flags.schemesFile))
	}
	return opts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var opts []genai.Option
	if *flags.openaiKey != "" {
		opts = append(opts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiModel != "" {
		opts = append(opts, genai.WithModel(*flags.openaiModel))
	}
	return opts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags, config Config) []api.Option {
	opts := []api.Option{
		api.WithSessionTimeout(config.SessionTimeout),
		api.WithFlowOptions(
			flow.WithConfidenceThreshold(config.ConfidenceThreshold),
			flow.WithMaxRetries(config.MaxRetries),
		),
	}
	if *flags.apiAddr != "" {
		opts = append(opts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.defaultLanguage != "" {
		opts = append(opts, api.WithDefaultLanguage(*flags.defaultLanguage))
	}
	return opts
}
