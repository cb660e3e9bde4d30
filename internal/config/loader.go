package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/example/scrcap/internal/logger"
)

// EnvPrefix prefixes environment overrides, e.g. SCRCAP_SAVE_DIR.
const EnvPrefix = "SCRCAP"

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Path given with --config
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// SetDefaults registers every key with its default so environment
// overrides and Unmarshal see the full key set.
func SetDefaults(v *viper.Viper) {
	d := New()
	v.SetDefault("mode", d.Mode)
	v.SetDefault("delay", d.Delay)
	v.SetDefault("include_decorations", d.IncludeDecorations)
	v.SetDefault("include_pointer", d.IncludePointer)
	v.SetDefault("save_dir", d.SaveDir)
	v.SetDefault("filename_template", d.FilenameTemplate)
	v.SetDefault("format", d.Format)
	v.SetDefault("auto_interval", d.AutoInterval)
	v.SetDefault("notify.capture", d.Notify.Capture)
	v.SetDefault("notify.save", d.Notify.Save)
	v.SetDefault("notify.copy", d.Notify.Copy)
	v.SetDefault("notify.auto_failure", d.Notify.AutoFailure)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads the configuration file (if any) into v and decodes the result.
// Flags bound to v before Load take precedence over the file.
func (l *Loader) Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", l.OverridePath, err)
		}
	}
	if path := l.GetConfigPath(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.WithComponent("config").Debug().Str("path", path).Msg("config loaded")
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Duration reads a duration setting from v. A bare number such as
// "delay: 3" counts as whole seconds.
func Duration(v *viper.Viper, key string) time.Duration {
	if d, ok := bareSeconds(v.Get(key)); ok {
		return d
	}
	return v.GetDuration(key)
}

var durationType = reflect.TypeOf(time.Duration(0))

func secondsHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	if d, ok := bareSeconds(data); ok {
		return d, nil
	}
	return data, nil
}

// bareSeconds converts a number, or a string holding only a number, to
// seconds. Values that are already a time.Duration are left alone.
func bareSeconds(data any) (time.Duration, bool) {
	if _, ok := data.(time.Duration); ok {
		return 0, false
	}
	var secs float64
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		secs = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		secs = float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		secs = rv.Float()
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return 0, false
		}
		secs = f
	default:
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".scrcap.yaml")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	if p := DefaultPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Dir returns the configuration directory, honouring XDG_CONFIG_HOME.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scrcap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "scrcap")
}

// DefaultPath is where `config save` writes when no --config is given.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

var errNoConfigDir = errors.New("config: cannot determine configuration directory")
