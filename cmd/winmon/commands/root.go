package commands

import (
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fvclaus/winmon/internal/config"
	"github.com/fvclaus/winmon/internal/logger"
	"github.com/fvclaus/winmon/internal/monitor"
	"github.com/fvclaus/winmon/internal/notify"
	"github.com/fvclaus/winmon/internal/window"
)

const version = "1.0.0"

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "winmon PATTERN",
		Short: "winmon - monitor desktop window title changes",
		Long: `winmon polls the desktop window list at a fixed interval, filters
windows by a regex pattern, and reports title changes, new windows,
and closed windows. A title change of the currently focused window on
the active desktop is logged but not dispatched as a notification.

Window state is queried through wmctrl and xdotool by default; a
native X11 backend is available via --backend x11.`,
		Example: `  # Monitor all Chrome windows
  winmon "Chrome"

  # Monitor terminals, polling every 5 seconds
  winmon --interval 5 ".*terminal.*"

  # Monitor using the native X11 backend and D-Bus notifications
  winmon --backend x11 --notifier dbus "Firefox"`,
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMonitor,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/winmon/config.yaml)")
	rootCmd.PersistentFlags().Int("interval", 0, "poll interval in seconds (default is 2)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("backend", "", "window backend (exec or x11)")
	rootCmd.PersistentFlags().String("notifier", "", "notifier (command or dbus)")
	rootCmd.Flags().BoolP("version", "v", false, "print the version and exit")

	// Bind flags to viper
	viper.BindPFlag("interval_seconds", rootCmd.PersistentFlags().Lookup("interval"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("notifier", rootCmd.PersistentFlags().Lookup("notifier"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

func runMonitor(cmd *cobra.Command, args []string) error {
	mon, configMgr, backend, err := buildMonitor(args[0])
	if err != nil {
		return err
	}
	defer backend.Close()

	// Reload interval and log level on config file edits; the pattern
	// is fixed for the process lifetime.
	stopWatch, err := configMgr.Watch(func(cfg *config.Config) {
		logger.Init(cfg.LogLevel, true)
		mon.SetInterval(cfg.Interval())
	})
	if err != nil {
		logger.WithComponent("cli").Warn().Err(err).Msg("Config hot reload unavailable")
	} else {
		defer stopWatch()
	}

	go mon.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	mon.Stop()
	fmt.Println("\nMonitoring stopped.")
	return nil
}

// buildMonitor compiles the pattern, loads configuration (with flag
// overrides), and wires up the backend and notifier.
func buildMonitor(patternArg string) (*monitor.Monitor, *config.Manager, window.Backend, error) {
	pattern, err := regexp.Compile(patternArg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid regex pattern %q: %w", patternArg, err)
	}

	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}

	applyFlagOverrides(configMgr)
	cfg := configMgr.Get()

	logger.Init(cfg.LogLevel, true)

	backend, err := window.New(cfg.Backend, window.Tools{
		Wmctrl:  cfg.Tools.Wmctrl,
		Xdotool: cfg.Tools.Xdotool,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	notifier, err := notify.New(cfg.Notifier, cfg.Tools.NotifySend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	logger.WithComponent("cli").Debug().
		Str("backend", backend.Name()).
		Str("notifier", notifier.Name()).
		Str("pattern", pattern.String()).
		Dur("interval", cfg.Interval()).
		Msg("Monitor configured")

	mon := monitor.New(pattern, backend, notifier, cfg.Interval(), cfg.HistorySize)
	return mon, configMgr, backend, nil
}

// applyFlagOverrides copies flag-bound viper values over the loaded
// configuration, the flags winning when set.
func applyFlagOverrides(configMgr *config.Manager) {
	if viper.IsSet("interval_seconds") {
		if interval := viper.GetInt("interval_seconds"); interval > 0 {
			configMgr.SetInterval(interval)
		}
	}
	if viper.IsSet("log_level") {
		if level := viper.GetString("log_level"); level != "" {
			configMgr.SetLogLevel(level)
		}
	}
	if viper.IsSet("backend") {
		if backend := viper.GetString("backend"); backend != "" {
			configMgr.SetBackend(backend)
		}
	}
	if viper.IsSet("notifier") {
		if notifier := viper.GetString("notifier"); notifier != "" {
			configMgr.SetNotifier(notifier)
		}
	}
}
