package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/bugboard/internal/seed"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bugboard"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage bugboard configuration.

Keys and the environment variables that override them:

  environment   BUGBOARD_ENVIRONMENT, then APP_ENV (default "development")
  port          BUGBOARD_PORT (default 8080)
  seed_file     BUGBOARD_SEED_FILE (default: built-in demo bugs)
  session_ttl   BUGBOARD_SESSION_TTL (default 30m)
  state_dir     BUGBOARD_STATE_DIR (default ~/.config/bugboard)

Running bare 'bugboard config' is the same as 'bugboard config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write config.yaml with the current values and comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective values, where each comes from, and problems with them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config.yaml in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# bugboard configuration
# See: bugboard config show (for effective values and sources)

# Label shown in the dashboard header as "Environment: <label>"
# (also read from APP_ENV)
environment: "{{ .Environment }}"

# HTTP port for 'bugboard serve'
port: {{ .Port }}

# Optional YAML file with the bugs every new session starts with.
# Empty uses the built-in demo bugs.
seed_file: "{{ .SeedFile }}"

# Idle time after which a browser session and its bugs are discarded
session_ttl: "{{ .SessionTTL }}"

# Directory for the background server PID and log files
# state_dir: {{ .StateDir }}
`

type configTemplateData struct {
	Environment string
	Port        int
	SeedFile    string
	SessionTTL  string
	StateDir    string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	data := configTemplateData{
		Environment: viper.GetString("environment"),
		Port:        viper.GetInt("port"),
		SeedFile:    viper.GetString("seed_file"),
		SessionTTL:  viper.GetString("session_ttl"),
		StateDir:    viper.GetString("state_dir"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKey describes one setting for 'config show'. check, when set,
// reports why the effective value cannot be used.
type configKey struct {
	Key     string
	EnvVars []string
	check   func() error
}

var configKeys = []configKey{
	{Key: "environment", EnvVars: []string{"BUGBOARD_ENVIRONMENT", "APP_ENV"}},
	{Key: "port", EnvVars: []string{"BUGBOARD_PORT"}, check: checkPort},
	{Key: "seed_file", EnvVars: []string{"BUGBOARD_SEED_FILE"}, check: checkSeedFile},
	{Key: "session_ttl", EnvVars: []string{"BUGBOARD_SESSION_TTL"}, check: checkSessionTTL},
	{Key: "state_dir", EnvVars: []string{"BUGBOARD_STATE_DIR"}},
}

func checkPort() error {
	if p := viper.GetInt("port"); p < 1 || p > 65535 {
		return fmt.Errorf("port %d out of range", p)
	}
	return nil
}

func checkSeedFile() error {
	_, err := seed.Load(viper.GetString("seed_file"))
	return err
}

func checkSessionTTL() error {
	d, err := time.ParseDuration(viper.GetString("session_ttl"))
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	return nil
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	fileValues := readConfigFileValues(cfgPath)

	var problems []string
	for _, k := range configKeys {
		source := detectSource(k.Key, k.EnvVars, fileValues)
		fmt.Fprintf(ui.Out, "  %-14s %v  %s\n", k.Key, viper.Get(k.Key), source)
		if k.check != nil {
			if err := k.check(); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", k.Key, err))
			}
		}
	}

	if shadowed := shadowedAppEnv(); shadowed != "" {
		fmt.Fprintln(ui.Out)
		ui.Info("APP_ENV=%s is ignored because BUGBOARD_ENVIRONMENT is set", shadowed)
	}
	for _, p := range problems {
		ui.Warning("%s", p)
	}
	return nil
}

// shadowedAppEnv returns APP_ENV when BUGBOARD_ENVIRONMENT takes precedence over it.
func shadowedAppEnv() string {
	if _, ok := os.LookupEnv("BUGBOARD_ENVIRONMENT"); !ok {
		return ""
	}
	return os.Getenv("APP_ENV")
}

// readConfigFileValues returns the top-level keys present in the config file.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}
	for key := range parsed {
		result[key] = true
	}
	return result
}

// detectSource reports the first env var in envVars that is set, then the
// file, then the default. The order of envVars is viper's lookup order.
func detectSource(key string, envVars []string, fileValues map[string]bool) string {
	for _, envVar := range envVars {
		if _, ok := os.LookupEnv(envVar); ok {
			return fmt.Sprintf("(env: %s)", envVar)
		}
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'bugboard config init' first)", cfgPath)
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
