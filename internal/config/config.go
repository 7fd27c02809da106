// Package config provides functionality for managing configuration options
// for the client and the development server using command-line flags,
// a JSON config file and environment variables.
//
// Precedence, lowest first: flag defaults, the config file, environment
// variables, flags given explicitly on the command line.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"
)

// Defaults.
const (
	DefaultAPIURL      = "http://127.0.0.1:8000"
	DefaultAPIBasePath = "api/v1"
	DefaultStore       = "familycart.json"
	DefaultLogLevel    = "info"
	DefaultNotifyTTL   = 5 * time.Second
	DefaultConfig      = "config.json"
	DefaultServerAddr  = "localhost:8000"
)

// Options holds the client configuration.
type Options struct {
	// APIURL is the backend origin, e.g. https://cart.example.com.
	APIURL string `json:"api_url"`

	// APIBasePath is joined between APIURL and every relative endpoint.
	APIBasePath string `json:"api_base_path"`

	// StoreDSN selects the local state backend (see storage.ParseDSN).
	StoreDSN string `json:"store"`

	// CAFile is an optional PEM bundle trusted in addition to system roots.
	CAFile string `json:"ca_file"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// NotifyTTL is how long a notification stays visible.
	NotifyTTL time.Duration `json:"-"`

	// Config is the path to the config file.
	Config string `json:"-"`
}

// fileOptions mirrors Options for decoding; durations are strings in the file.
type fileOptions struct {
	Options
	NotifyTTL string `json:"notify_ttl"`
}

// ParseArgs fills Options from args, the config file and getenv.
func ParseArgs(fs *flag.FlagSet, args []string, getenv func(string) string) (*Options, error) {
	opts := &Options{}
	fs.StringVar(&opts.APIURL, "api", DefaultAPIURL, "backend origin")
	fs.StringVar(&opts.APIBasePath, "base-path", DefaultAPIBasePath, "api base path")
	fs.StringVar(&opts.StoreDSN, "store", DefaultStore, "state store: file path, sqlite:<path> or postgres:// DSN")
	fs.StringVar(&opts.CAFile, "ca", "", "extra CA bundle (PEM)")
	fs.StringVar(&opts.LogLevel, "log-level", DefaultLogLevel, "log level")
	fs.DurationVar(&opts.NotifyTTL, "notify-ttl", DefaultNotifyTTL, "notification display time")
	fs.StringVar(&opts.Config, "config", DefaultConfig, "path to config file")
	fs.StringVar(&opts.Config, "c", DefaultConfig, "path to config file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	explicit := setFlags(fs)

	if configPath := getenv("CONFIG"); configPath != "" && !explicit["config"] && !explicit["c"] {
		opts.Config = configPath
	}

	var file fileOptions
	file.Options = *opts
	if err := readFile(opts.Config, &file); err != nil {
		return nil, err
	}
	merged := file.Options
	if file.NotifyTTL != "" {
		d, err := time.ParseDuration(file.NotifyTTL)
		if err != nil {
			return nil, fmt.Errorf("error while parsing config file: notify_ttl: %w", err)
		}
		merged.NotifyTTL = d
	}

	overrideEnv(&merged.APIURL, getenv("FAMILYCART_API_URL"))
	overrideEnv(&merged.APIBasePath, getenv("FAMILYCART_API_BASE_PATH"))
	overrideEnv(&merged.StoreDSN, getenv("FAMILYCART_STORE"))
	overrideEnv(&merged.LogLevel, getenv("FAMILYCART_LOG_LEVEL"))

	// Explicit flags win over everything else.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			merged.APIURL = opts.APIURL
		case "base-path":
			merged.APIBasePath = opts.APIBasePath
		case "store":
			merged.StoreDSN = opts.StoreDSN
		case "ca":
			merged.CAFile = opts.CAFile
		case "log-level":
			merged.LogLevel = opts.LogLevel
		case "notify-ttl":
			merged.NotifyTTL = opts.NotifyTTL
		}
	})

	return &merged, nil
}

// Parse parses os.Args and the process environment. It exits on error.
func Parse() *Options {
	opts, err := ParseArgs(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

// ServerOptions holds the development server configuration.
type ServerOptions struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"address"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// Config is the path to the config file.
	Config string `json:"-"`
}

// ParseServerArgs fills ServerOptions from args, the config file and getenv.
func ParseServerArgs(fs *flag.FlagSet, args []string, getenv func(string) string) (*ServerOptions, error) {
	opts := &ServerOptions{}
	fs.StringVar(&opts.Addr, "a", DefaultServerAddr, "run on ip:port server")
	fs.StringVar(&opts.LogLevel, "log-level", DefaultLogLevel, "log level")
	fs.StringVar(&opts.Config, "config", DefaultConfig, "path to config file")
	fs.StringVar(&opts.Config, "c", DefaultConfig, "path to config file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	explicit := setFlags(fs)

	if configPath := getenv("CONFIG"); configPath != "" && !explicit["config"] && !explicit["c"] {
		opts.Config = configPath
	}

	addr, level := opts.Addr, opts.LogLevel
	if err := readFile(opts.Config, opts); err != nil {
		return nil, err
	}

	overrideEnv(&opts.Addr, getenv("SERVER_ADDRESS"))
	if explicit["a"] {
		opts.Addr = addr
	}
	if explicit["log-level"] {
		opts.LogLevel = level
	}
	return opts, nil
}

// ParseServer parses os.Args and the process environment. It exits on error.
func ParseServer() *ServerOptions {
	opts, err := ParseServerArgs(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

// readFile decodes the JSON file at path into dst. A missing file is ignored.
func readFile(path string, dst any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func overrideEnv(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
