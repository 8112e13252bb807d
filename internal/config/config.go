// Package config 负责合并默认值、配置文件、环境变量与命令行参数。
// 优先级：flag > LICEXT_* 环境变量 > 配置文件 > 默认值。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	licextlog "licext/internal/log"
	"licext/internal/scanner"
)

const (
	// AppName 是应用名称，同时用于环境变量前缀和用户配置目录。
	AppName = "licext"
	// ConfigFileName 是配置文件名（不含扩展名）。
	ConfigFileName = ".licext"
	// ConfigFileType 是配置文件格式。
	ConfigFileType = "toml"
)

// Config 是 licext 的运行配置。
type Config struct {
	TargetDir  string   `mapstructure:"target_dir"`
	SourceDir  string   `mapstructure:"source_dir"`
	LicenseDir string   `mapstructure:"license_dir"`
	Pattern    string   `mapstructure:"pattern"`
	Exclude    []string `mapstructure:"exclude"`
	NoIgnore   bool     `mapstructure:"no_ignore"`
	Workers    int      `mapstructure:"workers"`
	Output     string   `mapstructure:"output"`
	Format     string   `mapstructure:"format"`
	DryRun     bool     `mapstructure:"dry_run"`
	LogLevel   string   `mapstructure:"log_level"`
	LogFormat  string   `mapstructure:"log_format"`
}

// flagKeys 把配置键映射到命令行 flag 名称。
var flagKeys = map[string]string{
	"target_dir":  "target-dir",
	"source_dir":  "source-dir",
	"license_dir": "license-dir",
	"pattern":     "pattern",
	"exclude":     "exclude",
	"no_ignore":   "no-ignore",
	"workers":     "workers",
	"output":      "output",
	"format":      "format",
	"dry_run":     "dry-run",
	"log_level":   "log-level",
	"log_format":  "log-format",
}

// Default 返回内置默认配置。
func Default() Config {
	return Config{
		Pattern:   scanner.DefaultPattern,
		Exclude:   []string{},
		Workers:   runtime.NumCPU(),
		Format:    "table",
		LogLevel:  "info",
		LogFormat: licextlog.TextFormat,
	}
}

// Load 读取配置并返回最终配置与实际使用的配置文件路径（未找到时为空）。
// configFile 非空时只读取该文件，文件不存在会报错；
// 否则依次在当前目录和用户配置目录中查找 .licext.toml，找不到不视为错误。
// flags 可以为 nil。
func Load(configFile string, flags *pflag.FlagSet) (Config, string, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("target_dir", defaults.TargetDir)
	v.SetDefault("source_dir", defaults.SourceDir)
	v.SetDefault("license_dir", defaults.LicenseDir)
	v.SetDefault("pattern", defaults.Pattern)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("no_ignore", defaults.NoIgnore)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("dry_run", defaults.DryRun)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileType)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, "", fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("read config: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decode config: %w", err)
	}

	return cfg, used, nil
}

// Validate 检查配置取值是否合法。
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New("workers must be greater than 0")
	}

	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "table", "json":
	default:
		return errors.New("unsupported format, allowed values: table, json")
	}

	if strings.TrimSpace(c.Pattern) == "" {
		return errors.New("pattern is empty")
	}

	if !licextlog.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if _, err := licextlog.GetFormatter(c.LogFormat); err != nil {
		return err
	}

	return nil
}
