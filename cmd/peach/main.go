// Package main provides the CLI entrypoint for peach.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/arin-jaff/peach-data-tool/internal/api"
	"github.com/arin-jaff/peach-data-tool/internal/config"
	"github.com/arin-jaff/peach-data-tool/internal/dashboard"
	"github.com/arin-jaff/peach-data-tool/internal/logging"
)

const (
	defaultServerURL = "http://localhost:8000"
	defaultTimeout   = 30 * time.Second
	defaultLogLevel  = "info"
)

// settings is the resolved configuration: defaults, then the config
// file, then flags.
type settings struct {
	serverURL    string
	timeout      time.Duration
	logLevel     string
	logFile      string
	seats        int
	crewAverage  bool
	panels       []string
	hiddenPanels []string
}

var (
	flagServer   string
	flagTimeout  time.Duration
	flagLogLevel string
	flagSeats    int
	flagCrewAvg  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "peach",
		Short:         "Rowing telemetry browser and dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runBrowserCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagServer, "server", defaultServerURL, "telemetry API base URL")
	pf.DurationVar(&flagTimeout, "timeout", defaultTimeout, "per-request timeout")
	pf.StringVar(&flagLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	addDashboardFlags(rootCmd)

	rootCmd.AddCommand(newOpenCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newPeriodicCmd())
	rootCmd.AddCommand(newAthletesCmd())
	rootCmd.AddCommand(newAthleteCmd())
	rootCmd.AddCommand(newAthleteSetCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addDashboardFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagSeats, "seats", dashboard.DefaultSeats, "seat range offered by the athlete selector")
	cmd.Flags().BoolVar(&flagCrewAvg, "crew-average", true, "show the crew average power line")
}

// loadSettings merges the config file under the flags of cmd.
func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &flagServer, fileCfg.Server.URL)
	if err := applyDurationConfig(cmd, "timeout", &flagTimeout, fileCfg.Server.Timeout); err != nil {
		return settings{}, err
	}
	applyStringConfig(cmd, "log-level", &flagLogLevel, fileCfg.Log.Level)
	applyIntConfig(cmd, "seats", &flagSeats, fileCfg.Dashboard.Seats)
	applyBoolConfig(cmd, "crew-average", &flagCrewAvg, fileCfg.Dashboard.CrewAverage)

	s := settings{
		serverURL:    flagServer,
		timeout:      flagTimeout,
		logLevel:     flagLogLevel,
		logFile:      config.DefaultLogPath(),
		seats:        flagSeats,
		crewAverage:  flagCrewAvg,
		panels:       fileCfg.Dashboard.Panels,
		hiddenPanels: fileCfg.Dashboard.HiddenPanels,
	}
	if fileCfg.Log.File != nil && *fileCfg.Log.File != "" {
		s.logFile = *fileCfg.Log.File
	}
	if err := validateSettings(s); err != nil {
		return settings{}, err
	}
	return s, nil
}

func validateSettings(s settings) error {
	if s.serverURL == "" {
		return fmt.Errorf("--server must not be empty")
	}
	if s.timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if s.seats < 1 || s.seats > 9 {
		return fmt.Errorf("--seats must be between 1 and 9")
	}
	if _, err := logging.ParseLevel(s.logLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func (s settings) client() *api.Client {
	return api.NewClient(s.serverURL, s.timeout)
}

func (s settings) dashboardOptions() dashboard.Options {
	crew := s.crewAverage
	return dashboard.Options{
		Seats:        s.seats,
		CrewAverage:  &crew,
		PanelOrder:   s.panels,
		HiddenPanels: s.hiddenPanels,
	}
}

// logger returns a logger writing to w at the configured level.
func (s settings) logger(w io.Writer) *logging.Logger {
	level, err := logging.ParseLevel(s.logLevel)
	if err != nil {
		level = logging.LevelInfo
	}
	l := logging.New(w, level)
	logging.SetDefault(l)
	return l
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return nil
}
