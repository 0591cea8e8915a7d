package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arko-chat/nativekit/internal/config"
	"github.com/arko-chat/nativekit/internal/fallback"
	"github.com/arko-chat/nativekit/internal/host"
	"github.com/arko-chat/nativekit/internal/logger"
)

type globals struct {
	configPath string
	logLevel   string
	width      int
}

// NewRootCmd builds the nativekit command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "nativekit",
		Short: "Exercise the native capability bridge from a terminal",
		Long: `nativekit drives the popup, network and sharing capabilities through the
same services an app uses. Without a native library every capability runs on
its fallback, so the simulated dialog is drawn in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file path (default: <user config dir>/nativekit/config.json)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override the configured log level")
	root.PersistentFlags().IntVar(&g.width, "width", 60, "Column width of the rendered dialog")

	root.AddCommand(
		newPopupCmd(g),
		newNetworkCmd(g),
		newShareCmd(g),
		newRateCmd(g),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (g *globals) loadConfig() (*config.Config, error) {
	if g.configPath != "" {
		return config.LoadFrom(g.configPath)
	}
	return config.Load()
}

// newHost builds a host whose simulated popup is rendered to the command's
// output as soon as it appears. extra adjusts the options before the host is
// built.
func (g *globals) newHost(cmd *cobra.Command, extra ...func(*host.Options)) (*host.Host, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if g.logLevel != "" {
		level = g.logLevel
	}

	out := cmd.OutOrStdout()
	width := g.width
	opts := host.Options{
		Config: cfg,
		Logger: logger.New(cmd.ErrOrStderr(), level, cfg.LogFormat),
		Screen: fallback.Screen{Width: float64(width), Height: 24},
		PopupOptions: []fallback.PopupOption{
			fallback.OnChange(func(d *fallback.Dialog) {
				if d != nil {
					fmt.Fprintln(out, fallback.RenderText(*d, width))
				}
			}),
		},
	}
	for _, fn := range extra {
		fn(&opts)
	}
	return host.New(opts)
}

// answer closes the simulated dialog with choice, or with the button index
// read from in when choice is negative. An empty line dismisses the dialog.
func answer(h *host.Host, in io.Reader, out io.Writer, choice int) error {
	popup := h.Services.FallbackPopup
	if popup == nil {
		return nil
	}
	if _, ok := popup.Active(); !ok {
		return nil
	}

	if choice < 0 {
		fmt.Fprint(out, "button index (empty to dismiss): ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			popup.Dismiss()
			return nil
		}
		choice, err = strconv.Atoi(line)
		if err != nil {
			return fmt.Errorf("invalid button index %q", line)
		}
	}
	if !popup.Click(choice) {
		return fmt.Errorf("no button with index %d", choice)
	}
	return nil
}
