package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-flow/pkg/config"
	"github.com/dd0wney/cluso-flow/pkg/editor"
	"github.com/dd0wney/cluso-flow/pkg/logging"
	"github.com/dd0wney/cluso-flow/pkg/metrics"
	"github.com/dd0wney/cluso-flow/pkg/notify"
	"github.com/dd0wney/cluso-flow/pkg/record"
)

// version is overwritten at build time with -ldflags "-X main.version=..."
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:               "wfedit",
	Short:             "Edit event workflows",
	Long:              "wfedit checks, converts, arranges and interactively edits event workflow records.",
	Version:           version,
	SilenceUsage:      true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "editor config file (YAML)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "",
		"override the configured log level ("+strings.Join(logging.LevelNames, ", ")+")")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(arrangeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(tuiCmd)
}

// app bundles what every subcommand needs
type app struct {
	cfg     config.Config
	logger  logging.Logger
	metrics *metrics.Registry
	store   *record.Store
}

// newApp loads the configuration and builds a JSON logger writing to logs.
// A nil logs writer discards log output.
func newApp(logs io.Writer) (*app, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return nil, err
	}
	if rootFlags.logLevel != "" {
		if _, ok := logging.LookupLevel(rootFlags.logLevel); !ok {
			return nil, fmt.Errorf("unknown log level %q", rootFlags.logLevel)
		}
		cfg.Logging.Level = rootFlags.logLevel
	}

	var logger logging.Logger = logging.NewNopLogger()
	if logs != nil {
		logger = logging.NewJSONLogger(logs, cfg.LogLevel())
	}
	reg := metrics.NewRegistry()

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		store:   record.NewStore(logger, reg),
	}, nil
}

// open loads the record at path into a new editing session
func (a *app) open(path string, pub notify.Publisher) (*editor.Session, error) {
	r, err := a.store.Load(path)
	if err != nil {
		return nil, err
	}
	return editor.Open(r, editor.Options{
		Config:   &a.cfg,
		Logger:   a.logger,
		Metrics:  a.metrics,
		Notifier: pub,
	})
}
