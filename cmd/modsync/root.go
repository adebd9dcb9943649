package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/modsync/internal/config"
	"github.com/dshills/modsync/internal/config/loader"
	"github.com/dshills/modsync/internal/logging"
	"github.com/dshills/modsync/internal/metric"
)

// settings are the tool's own settings, gathered from flags, MODSYNC_*
// environment variables and an optional TOML settings file.
type settings struct {
	ConfigPath   string        `mapstructure:"config_path"`
	TemplateURL  string        `mapstructure:"template_url"`
	LogLevel     string        `mapstructure:"log_level"`
	LogOutputDir string        `mapstructure:"log_output_dir"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	Watch        bool          `mapstructure:"watch"`
}

// app carries what every subcommand needs once settings are resolved.
type app struct {
	v        *viper.Viper
	settings settings
	log      *slog.Logger
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	var settingsFile string

	root := &cobra.Command{
		Use:           "modsync",
		Short:         "Load, sync and serve modsync configuration documents",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, settingsFile)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&settingsFile, "settings", "", "path to settings file")
	flags.StringP("config", "c", "modsync.cfg", "path to the configuration document")
	flags.String("template-url", "", "URL or path of the upstream template document")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-output-dir", "", "directory to write log files (if set, logs are written to both stderr and file)")
	flags.Duration("fetch-timeout", 30*time.Second, "timeout of a single remote fetch")
	flags.Bool("watch", false, "reload the configuration document when it changes")

	_ = a.v.BindPFlag("config_path", flags.Lookup("config"))
	_ = a.v.BindPFlag("template_url", flags.Lookup("template-url"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log_output_dir", flags.Lookup("log-output-dir"))
	_ = a.v.BindPFlag("fetch_timeout", flags.Lookup("fetch-timeout"))
	_ = a.v.BindPFlag("watch", flags.Lookup("watch"))

	root.AddCommand(
		newLoadCmd(a),
		newFingerprintCmd(a),
		newSyncCmd(a),
		newUpdateCmd(a),
		newDumpCmd(a),
		newTemplateCmd(a),
		newServeCmd(a),
	)
	return root
}

// init reads the settings file and environment, then sets up logging.
func (a *app) init(cmd *cobra.Command, settingsFile string) error {
	if settingsFile != "" {
		a.v.SetConfigFile(settingsFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "modsync"))
		}
		a.v.AddConfigPath("/etc/modsync")
		a.v.SetConfigName("settings")
		a.v.SetConfigType("toml")
	}

	a.v.SetEnvPrefix("MODSYNC")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading settings: %w", err)
		}
	}

	if err := a.v.Unmarshal(&a.settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	log, closeLog, err := logging.Setup(logging.Options{
		Level:     a.settings.LogLevel,
		OutputDir: a.settings.LogOutputDir,
		Console:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	a.log = log
	a.closeLog = closeLog

	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("using settings file", "path", used)
	}
	return nil
}

// fetcher returns the fetcher for src: HTTP for http(s) URLs, a file
// otherwise. An empty src has no fetcher.
func (a *app) fetcher(src string) loader.Fetcher {
	return fetcherFor(src, a.settings.FetchTimeout)
}

func fetcherFor(src string, timeout time.Duration) loader.Fetcher {
	switch {
	case src == "":
		return nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		opts := []loader.HTTPOption{loader.WithUserAgent("modsync/" + version)}
		if timeout > 0 {
			opts = append(opts, loader.WithTimeout(timeout))
		}
		return loader.NewHTTPFetcher(src, opts...)
	default:
		return loader.NewFileFetcher(src)
	}
}

// service builds a config.Service from the resolved settings.
func (a *app) service(m *metric.Metrics) *config.Service {
	opts := []config.ServiceOption{
		config.WithLogger(a.log),
		config.WithMetrics(m),
	}
	if f := a.fetcher(a.settings.TemplateURL); f != nil {
		opts = append(opts, config.WithTemplate(f))
	}
	return config.NewService(a.settings.ConfigPath, opts...)
}
