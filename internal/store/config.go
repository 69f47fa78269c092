package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override, e.g. ROADMAP_ADMIN_API_URL.
const EnvPrefix = "ROADMAP_ADMIN"

// Config keys.
const (
	KeyAPIURL     = "api_url"
	KeyUser       = "user"
	KeyPageSize   = "page_size"
	KeyTimeout    = "timeout"
	KeyLogLevel   = "log_level"
	KeyLogFormat  = "log_format"
	KeyLogFile    = "log_file"
	KeyDevAddr    = "dev_addr"
	KeyDevDB      = "dev_db"
	KeyTUIProfile = "tui.profile"
)

const DefaultAPIURL = "http://localhost/your-api-path"

type Config struct {
	APIURL   string        `json:"apiUrl"`
	User     string        `json:"user"`
	PageSize int           `json:"pageSize"`
	Timeout  time.Duration `json:"timeout"`

	Log LogConfig `json:"log"`
	Dev DevConfig `json:"dev"`
	TUI TUIConfig `json:"tui"`

	// File is the config file that was read, empty when none existed.
	File string `json:"file,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	// File receives the TUI's log output.
	File string `json:"file"`
}

// DevConfig configures the local development backend.
type DevConfig struct {
	Addr string `json:"addr"`
	// DB is the SQLite path; empty keeps everything in memory.
	DB string `json:"db,omitempty"`
}

type TUIConfig struct {
	// Profile is the appearance profile id ("default", "mono").
	Profile string `json:"profile"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.roadmap-admin).
	if v := strings.TrimSpace(os.Getenv(EnvPrefix + "_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".roadmap-admin"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

type LoadOptions struct {
	// File overrides the default config path.
	File string
	// Overrides hold explicitly set flags; they win over env and file.
	Overrides map[string]any
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyUser, "admin")
	v.SetDefault(KeyPageSize, 20)
	v.SetDefault(KeyTimeout, "0s")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, filepath.Join(dir, "roadmap-admin.log"))
	v.SetDefault(KeyDevAddr, "127.0.0.1:8089")
	v.SetDefault(KeyDevDB, "")
	v.SetDefault(KeyTUIProfile, "default")
	return v
}

// LoadConfig merges flags, ROADMAP_ADMIN_* environment (plus a .env file in the working
// directory), the YAML config file and defaults, in that order of precedence.
func LoadConfig(opts LoadOptions) (*Config, error) {
	_ = godotenv.Load()

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	path := strings.TrimSpace(opts.File)
	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}

	v := newViper(dir)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	used := path
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			used = ""
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	cfg := &Config{
		APIURL:   strings.TrimSpace(v.GetString(KeyAPIURL)),
		User:     strings.TrimSpace(v.GetString(KeyUser)),
		PageSize: v.GetInt(KeyPageSize),
		Timeout:  v.GetDuration(KeyTimeout),
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			File:   v.GetString(KeyLogFile),
		},
		Dev: DevConfig{
			Addr: v.GetString(KeyDevAddr),
			DB:   v.GetString(KeyDevDB),
		},
		TUI:  TUIConfig{Profile: v.GetString(KeyTUIProfile)},
		File: used,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIURL == "" {
		return errors.New("config: api_url is empty")
	}
	if c.User == "" {
		return errors.New("config: user is empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: page_size must be positive, got %d", c.PageSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// KnownKeys lists the keys SetConfigValue accepts.
func KnownKeys() []string {
	keys := []string{
		KeyAPIURL, KeyUser, KeyPageSize, KeyTimeout,
		KeyLogLevel, KeyLogFormat, KeyLogFile,
		KeyDevAddr, KeyDevDB, KeyTUIProfile,
	}
	sort.Strings(keys)
	return keys
}

// SetConfigValue writes one key into the YAML config file, keeping the other keys it
// already holds.
func SetConfigValue(file, key, value string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	known := false
	for _, k := range KnownKeys() {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(KnownKeys(), ", "))
	}

	path := strings.TrimSpace(file)
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return "", err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return "", fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.Set(key, value)

	b, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.yaml.bak.*.tmp", path+".bak", prev, 0o644)
	}
	if err := atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
