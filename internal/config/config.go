// Package config resolves mrdoc settings from defaults, .env files, the
// environment and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mrdoc/internal/api"
	"mrdoc/internal/chat"
	"mrdoc/internal/logger"
)

// EnvPrefix prefixes every environment variable mrdoc reads.
const EnvPrefix = "MRDOC"

// AppName names the per-user config and state directory.
const AppName = "mrdoc"

// Configuration keys.
const (
	KeyAPIURL       = "api_url"
	KeyTimeout      = "timeout"
	KeyTypingDelay  = "typing_delay"
	KeyStateDir     = "state_dir"
	KeyTheme        = "theme"
	KeyWordWrap     = "word_wrap"
	KeyPurgeOnReset = "purge_on_reset"
	KeyTestMode     = "test_mode"
)

// Keys lists every configuration key in display order.
var Keys = []string{
	KeyAPIURL, KeyTimeout, KeyTypingDelay, KeyStateDir,
	KeyTheme, KeyWordWrap, KeyPurgeOnReset, KeyTestMode,
}

// SessionFile is the KV file under the state directory.
const SessionFile = "session.json"

// Config is the resolved configuration.
type Config struct {
	APIURL       string
	Timeout      time.Duration
	TypingDelay  time.Duration
	StateDir     string
	Theme        string
	WordWrap     int
	PurgeOnReset bool
	TestMode     bool
}

// StatePath returns name inside the state directory.
func (c *Config) StatePath(name string) string {
	return filepath.Join(c.StateDir, name)
}

// Sources names the directories searched for .env files. Empty fields fall
// back to the user config directory and the working directory.
type Sources struct {
	ConfigDir string
	WorkDir   string
}

// NewViper returns a viper instance carrying mrdoc defaults and reading
// MRDOC_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAPIURL, api.DefaultBaseURL)
	v.SetDefault(KeyTimeout, api.DefaultTimeout)
	v.SetDefault(KeyTypingDelay, chat.DefaultTypingDelay)
	v.SetDefault(KeyStateDir, defaultStateDir())
	v.SetDefault(KeyTheme, "default")
	v.SetDefault(KeyWordWrap, 80)
	v.SetDefault(KeyPurgeOnReset, false)
	v.SetDefault(KeyTestMode, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(dir, AppName)
}

// BindFlags binds every flag in flags whose name maps to a known key;
// "api-url" binds to api_url.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !isKey(key) || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

func isKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Load merges the .env layers into v and returns the resolved Config.
// .env files are skipped in test mode.
func Load(v *viper.Viper, src Sources) (*Config, error) {
	if !v.GetBool(KeyTestMode) {
		if err := mergeDotEnv(v, src); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		APIURL:       strings.TrimSpace(v.GetString(KeyAPIURL)),
		Timeout:      v.GetDuration(KeyTimeout),
		TypingDelay:  v.GetDuration(KeyTypingDelay),
		StateDir:     v.GetString(KeyStateDir),
		Theme:        v.GetString(KeyTheme),
		WordWrap:     v.GetInt(KeyWordWrap),
		PurgeOnReset: v.GetBool(KeyPurgeOnReset),
		TestMode:     v.GetBool(KeyTestMode),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("%s must not be empty", KeyAPIURL)
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("%s must be an http(s) URL, got %q", KeyAPIURL, c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.Timeout)
	}
	if c.TypingDelay < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyTypingDelay, c.TypingDelay)
	}
	if c.StateDir == "" {
		return fmt.Errorf("%s must not be empty", KeyStateDir)
	}
	return nil
}

// mergeDotEnv layers config-dir .env under working-dir .env. Only MRDOC_*
// entries are taken; they sit below real environment variables and flags.
func mergeDotEnv(v *viper.Viper, src Sources) error {
	configDir := src.ConfigDir
	if configDir == "" {
		configDir = defaultStateDir()
	}
	workDir := src.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}

	merged := make(map[string]interface{})
	for _, dir := range []string{configDir, workDir} {
		values, err := readDotEnv(filepath.Join(dir, ".env"))
		if err != nil {
			return err
		}
		for key, value := range values {
			merged[key] = value
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return v.MergeConfigMap(merged)
}

// readDotEnv returns the MRDOC_* entries of path keyed by configuration key.
// A missing file yields no entries.
func readDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	envMap, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse .env file %s: %w", path, err)
	}

	prefix := EnvPrefix + "_"
	out := make(map[string]string)
	for key, value := range envMap {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, prefix))
		if isKey(name) {
			out[name] = value
		}
	}
	logger.Debug("Loaded .env file", "path", path, "keys", len(out))
	return out, nil
}
