package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pollchat/internal/app"
	"github.com/vovakirdan/pollchat/internal/config"
	applog "github.com/vovakirdan/pollchat/internal/log"
)

type rootFlags struct {
	configPath string
	noColor    bool
	overrides  config.Config
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "pollchat",
		Short:         "Chat client for a polled HTTP messages endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			logFile, err := applog.OpenFile(cfg.LogFile)
			if err != nil {
				return err
			}
			defer logFile.Close()

			a, err := app.New(cfg, applog.New(cfg.LogLevel, logFile))
			if err != nil {
				return err
			}
			return a.RunTUI(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config file")
	pf.StringVar(&flags.overrides.Endpoint, "endpoint", "", "messages endpoint URL")
	pf.StringVar(&flags.overrides.Name, "name", "", "display name")
	pf.DurationVar(&flags.overrides.PollInterval, "interval", 0, "poll interval")
	pf.DurationVar(&flags.overrides.RequestTimeout, "timeout", 0, "per-request timeout (0 = none)")
	pf.StringVar(&flags.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.overrides.LogFile, "log-file", "", "log file used by the interactive screen")
	pf.StringVar(&flags.overrides.Timezone, "timezone", "", "IANA zone for message times (default Local)")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newWatchCmd(flags), newListCmd(flags), newSendCmd(flags))
	return root
}

func newWatchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Line-mode chat: print every refresh, send each input line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := flags.stderrApp()
			if err != nil {
				return err
			}
			return a.RunConsole(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), flags.colored())
		},
	}
}

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Fetch and print the current messages once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := flags.stderrApp()
			if err != nil {
				return err
			}
			return a.List(cmd.Context(), cmd.OutOrStdout(), flags.colored())
		},
	}
}

func newSendCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "send TEXT...",
		Short: "Post one message, then print the refreshed messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.stderrApp()
			if err != nil {
				return err
			}
			return a.Send(cmd.Context(), strings.Join(args, " "), cmd.OutOrStdout(), flags.colored())
		},
	}
}

// load resolves config: defaults < file < env < flags.
func (f *rootFlags) load() (config.Config, error) {
	bootstrap := applog.New("warn", os.Stderr)

	cfg, path, err := config.Load(bootstrap, f.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.UpdateFrom(f.overrides)
	return cfg, nil
}

func (f *rootFlags) stderrApp() (*app.App, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, applog.New(cfg.LogLevel, os.Stderr))
}

func (f *rootFlags) colored() bool {
	return !f.noColor && color.SupportColor()
}
