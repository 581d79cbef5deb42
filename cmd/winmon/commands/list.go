package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fvclaus/winmon/internal/config"
	"github.com/fvclaus/winmon/internal/logger"
	"github.com/fvclaus/winmon/internal/window"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List current windows",
	Long: `List the windows currently reported by the windowing environment,
optionally filtered by a title pattern. The focused window is marked.`,
	Example: `  # List all windows in table format (default)
  winmon list

  # List windows in JSON format
  winmon list --format json

  # List only windows with "Chrome" in the title
  winmon list --pattern "Chrome"`,
	RunE: runList,
}

var (
	listFormat  string
	listPattern string
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table or json)")
	listCmd.Flags().StringVarP(&listPattern, "pattern", "p", "", "filter titles by regex pattern")
}

func runList(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to initialize config manager: %w", err)
	}

	applyFlagOverrides(configMgr)
	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, true)

	backend, err := window.New(cfg.Backend, window.Tools{
		Wmctrl:  cfg.Tools.Wmctrl,
		Xdotool: cfg.Tools.Xdotool,
	})
	if err != nil {
		return err
	}
	defer backend.Close()

	windows, err := backend.ListWindows()
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}

	if listPattern != "" {
		pattern, err := regexp.Compile(listPattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern %q: %w", listPattern, err)
		}
		windows = window.Filter(windows, pattern)
	}

	switch listFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(windows)
	case "table":
		return printWindowsTable(windows, backend.ActiveWindowID())
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", listFormat)
	}
}

func printWindowsTable(windows []window.Window, activeID string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tDESKTOP\tACTIVE\tTITLE")
	fmt.Fprintln(w, "--\t-------\t------\t-----")

	for _, win := range windows {
		active := ""
		if win.ID == activeID {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", win.ID, win.Desktop, active, win.Title)
	}

	return nil
}
