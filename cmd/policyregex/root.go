package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/policyregex/internal/app"
)

var globalFlags struct {
	configPath string
	envFiles   []string
	verbose    bool
	logJSON    bool
	dataDir    string
	configDir  string
	cacheDir   string
	noCache    bool
	workers    int
	store      bool
	dbPath     string
}

var rootCmd = &cobra.Command{
	Use:   "policyregex",
	Short: "Regex field extraction and normalization for insurance policy documents",
	Long: "policyregex extracts named fields from policy documents with per-company\n" +
		"pattern configurations and maps raw values to canonical outputs with\n" +
		"per-company mapping rules.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		setupLogging(globalFlags.verbose, globalFlags.logJSON)
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&globalFlags.configPath, "config", os.Getenv("POLICYREGEX_CONFIG"), "Runtime config file (YAML or JSON)")
	f.StringSliceVar(&globalFlags.envFiles, "env-file", []string{".env"}, "Dotenv files loaded before reading the environment; later files win")
	f.BoolVarP(&globalFlags.verbose, "verbose", "v", false, "Debug logging")
	f.BoolVar(&globalFlags.logJSON, "log-json", false, "Log JSON lines instead of console output")
	f.StringVar(&globalFlags.dataDir, "data-dir", app.DefaultDataDir, "Data directory (documents and outputs)")
	f.StringVar(&globalFlags.configDir, "config-dir", app.DefaultConfigDir, "Directory holding extraction_patterns and mapping_rules")
	f.StringVar(&globalFlags.cacheDir, "cache-dir", app.DefaultCacheDir, "Document text cache directory")
	f.BoolVar(&globalFlags.noCache, "no-cache", false, "Do not read or write the document text cache")
	f.IntVar(&globalFlags.workers, "workers", app.DefaultWorkers, "Concurrent documents")
	f.BoolVar(&globalFlags.store, "store", false, "Also persist results to the SQLite result store")
	f.StringVar(&globalFlags.dbPath, "db", "", "Result store path (default <data-dir>/results.db)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(fieldCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", app.BuildVersion, app.BuildCommit, app.BuildDate)
}

func setupLogging(verbose, jsonLines bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if jsonLines {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// loadConfig resolves the runtime configuration: defaults, config file,
// dotenv files and environment, then flags given on the command line.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	cfg := app.DefaultConfig()
	if err := app.LoadEnvFiles(globalFlags.envFiles...); err != nil {
		return cfg, fmt.Errorf("load env files: %w", err)
	}
	if p := globalFlags.configPath; p != "" {
		fc, err := app.LoadConfigFile(p)
		if err != nil {
			return cfg, fmt.Errorf("config file %s: %w", p, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = globalFlags.dataDir
	}
	if flags.Changed("config-dir") {
		cfg.ConfigDir = globalFlags.configDir
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = globalFlags.cacheDir
	}
	if flags.Changed("workers") {
		cfg.Workers = globalFlags.workers
	}
	if flags.Changed("db") {
		cfg.DBPath = globalFlags.dbPath
	}
	if globalFlags.noCache {
		cfg.DisableCache = true
	}
	if globalFlags.store {
		cfg.UseStore = true
	}
	if globalFlags.verbose {
		cfg.Verbose = true
	}
	if globalFlags.logJSON {
		cfg.LogJSON = true
	}
	// file and env may have turned these on
	setupLogging(cfg.Verbose, cfg.LogJSON)
	if err := app.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openApp loads the configuration and constructs the application.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg)
}

// selectCompanies returns the single named company, or every company listed
// by all when allCompanies is set.
func selectCompanies(company string, allCompanies bool, all func() ([]string, error)) ([]string, error) {
	switch {
	case company != "" && allCompanies:
		return nil, fmt.Errorf("--company and --all-companies are mutually exclusive")
	case company != "":
		return []string{company}, nil
	case allCompanies:
		cs, err := all()
		if err != nil {
			return nil, err
		}
		if len(cs) == 0 {
			return nil, fmt.Errorf("no companies found")
		}
		return cs, nil
	}
	return nil, fmt.Errorf("one of --company or --all-companies is required")
}
