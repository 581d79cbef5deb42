package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fvclaus/winmon/internal/api"
	"github.com/fvclaus/winmon/internal/config"
	"github.com/fvclaus/winmon/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve PATTERN",
	Short: "Monitor windows and serve status over HTTP",
	Long: `Run the window monitor and expose its state over an HTTP API:
the current filtered snapshot, the recent event history, and a
websocket stream of events as they occur.`,
	Example: `  # Monitor Chrome windows with the status API on the default port
  winmon serve "Chrome"

  # Serve on a custom port
  winmon serve --port 9090 ".*terminal.*"`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "status server port (default is 8080)")
	viper.BindPFlag("server_port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	mon, configMgr, backend, err := buildMonitor(args[0])
	if err != nil {
		return err
	}
	defer backend.Close()

	if viper.IsSet("server_port") {
		if port := viper.GetInt("server_port"); port > 0 {
			configMgr.SetPort(port)
		}
	}
	cfg := configMgr.Get()

	stopWatch, err := configMgr.Watch(func(cfg *config.Config) {
		logger.Init(cfg.LogLevel, true)
		mon.SetInterval(cfg.Interval())
	})
	if err != nil {
		logger.WithComponent("cli").Warn().Err(err).Msg("Config hot reload unavailable")
	} else {
		defer stopWatch()
	}

	server := api.NewServer(mon, configMgr)

	go func() {
		if err := server.Start(cfg.ServerPort); err != nil {
			logger.WithComponent("api").Fatal().Err(err).Msg("Status server failed")
		}
	}()

	go mon.Run()

	logger.WithComponent("cli").Info().
		Int("port", cfg.ServerPort).
		Msg("Status API running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	mon.Stop()
	fmt.Println("\nMonitoring stopped.")
	return nil
}
