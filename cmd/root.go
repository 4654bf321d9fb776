package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/bugboard/internal/dashboard"
	"github.com/joescharf/bugboard/internal/output"
	"github.com/joescharf/bugboard/internal/seed"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bugboard",
	Short: "Bug Tracker Dashboard - filter, count and file bugs in the browser",
	Long: `bugboard serves a single-page bug tracking dashboard.
Each browser session gets its own in-memory bug list seeded from
configuration, with severity filters, statistics and an add-bug form.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/bugboard/config.yaml)")
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	bindEnv()
	setDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// bindEnv maps BUGBOARD_* variables onto keys. For environment,
// BUGBOARD_ENVIRONMENT wins over APP_ENV.
func bindEnv() {
	viper.SetEnvPrefix("BUGBOARD")
	viper.AutomaticEnv()
	_ = viper.BindEnv("environment", "BUGBOARD_ENVIRONMENT", "APP_ENV")
}

func setDefaults() {
	dir, _ := configDirFunc()
	viper.SetDefault("state_dir", dir)
	viper.SetDefault("environment", dashboard.DefaultEnvironment)
	viper.SetDefault("port", 8080)
	viper.SetDefault("seed_file", "")
	viper.SetDefault("session_ttl", "30m")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
}

// dashboardOptions builds session options from the effective configuration.
func dashboardOptions() (dashboard.Options, error) {
	bugs, err := seed.Load(viper.GetString("seed_file"))
	if err != nil {
		return dashboard.Options{}, err
	}
	return dashboard.Options{
		EnvironmentLabel: viper.GetString("environment"),
		SeedBugs:         bugs,
		Now:              time.Now,
	}, nil
}

// sessionTTL parses session_ttl, falling back to the default on bad input.
func sessionTTL() time.Duration {
	d, err := time.ParseDuration(viper.GetString("session_ttl"))
	if err != nil || d <= 0 {
		ui.Warning("Invalid session_ttl %q, using 30m", viper.GetString("session_ttl"))
		return 30 * time.Minute
	}
	return d
}

func stateDir() string {
	return viper.GetString("state_dir")
}

func statePath(name string) string {
	return filepath.Join(stateDir(), name)
}
