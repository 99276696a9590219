package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"zhnorm/internal/pkg/zhnorm/normalizers"
)

// ErrHelp is returned when the user asked for the usage text.
var ErrHelp = pflag.ErrHelp

type Config struct {
	Text        string         `mapstructure:"text"`
	File        string         `mapstructure:"file"`
	Normalizer  string         `mapstructure:"normalizer"`
	Preset      string         `mapstructure:"preset"`
	Definition  map[string]any `mapstructure:"definition"`
	Format      string         `mapstructure:"format" validate:"oneof=text json"`
	Alignments  bool           `mapstructure:"alignments"`
	PreTokenize bool           `mapstructure:"pre_tokenize"`
	Lines       bool           `mapstructure:"lines"`
	Workers     int            `mapstructure:"workers" validate:"min=1,max=1024"`
	Dump        string         `mapstructure:"dump" validate:"omitempty,oneof=json yaml"`
	LogLevel    string         `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFile     string         `mapstructure:"log_file"`
}

var validate = validator.New()

// LoadAndParse builds the configuration from defaults, an optional TOML
// config file, ZHNORM_* environment variables and the command line, in
// increasing order of precedence. stdin is read when the text is "-".
func LoadAndParse(args []string, stdin io.Reader) (*Config, error) {
	v := viper.New()
	v.SetDefault("preset", "bert")
	v.SetDefault("format", "text")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	flagSet := pflag.NewFlagSet("zhnorm", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	configFile := flagSet.StringP("config", "c", "", "Path to config file")
	flagSet.StringP("text", "t", "", "Text to normalize (use '-' to read from stdin)")
	flagSet.StringP("file", "f", "", "Read text from file")
	flagSet.StringP("normalizer", "n", "", "Path to a normalizer definition (.json, .yaml)")
	flagSet.StringP("preset", "p", "", "Stock normalizer: "+strings.Join(normalizers.Presets(), ", "))
	flagSet.String("format", "", "Output format (text, json)")
	flagSet.BoolP("alignments", "a", false, "Print the original byte range of every normalized character")
	flagSet.Bool("pre-tokenize", false, "Split the normalized text with the Metaspace pre-tokenizer")
	flagSet.Bool("lines", false, "Normalize every input line separately")
	flagSet.IntP("workers", "w", 0, "Concurrent normalizations in --lines mode")
	flagSet.String("dump", "", "Print the normalizer definition (json, yaml) and exit")
	flagSet.StringP("log-level", "l", "", "Log level (debug, info, warn, error)")
	flagSet.String("log-file", "", "Log file path")
	helpFlag := flagSet.BoolP("help", "h", false, "Show help message")

	if err := flagSet.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *helpFlag {
		fmt.Fprintf(os.Stderr, "Usage: zhnorm [options] [text]\n\nOptions:\n")
		flagSet.SetOutput(os.Stderr)
		flagSet.PrintDefaults()
		return nil, ErrHelp
	}

	bindings := map[string]string{
		"text":         "text",
		"file":         "file",
		"normalizer":   "normalizer",
		"preset":       "preset",
		"format":       "format",
		"alignments":   "alignments",
		"pre_tokenize": "pre-tokenize",
		"lines":        "lines",
		"workers":      "workers",
		"dump":         "dump",
		"log_level":    "log-level",
		"log_file":     "log-file",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flagSet.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("zhnorm.cfg")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "zhnorm"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("ZHNORM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch {
	case cfg.File != "":
		content, err := os.ReadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		cfg.Text = string(content)
	case cfg.Text == "-":
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		cfg.Text = string(content)
	case cfg.Text == "":
		if rest := flagSet.Args(); len(rest) > 0 {
			cfg.Text = strings.Join(rest, " ")
		}
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Text == "" && cfg.Dump == "" {
		return nil, fmt.Errorf("text is required (use -t, -f, or provide as argument)")
	}

	return &cfg, nil
}

// BuildNormalizer resolves the normalizer the configuration asks for: a
// definition file first, then an inline [definition] table from the config
// file, then a preset.
func (c *Config) BuildNormalizer() (normalizers.Normalizer, error) {
	if c.Normalizer != "" {
		return normalizers.Load(c.Normalizer)
	}
	if len(c.Definition) > 0 {
		data, err := json.Marshal(c.Definition)
		if err != nil {
			return nil, fmt.Errorf("failed to encode inline definition: %w", err)
		}
		return normalizers.Unmarshal(data)
	}
	return normalizers.Preset(c.Preset)
}
