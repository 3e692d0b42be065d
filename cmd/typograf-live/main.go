package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/neovim/go-client/nvim/plugin"
	"github.com/spf13/cobra"

	"typograf-live/internal/host"
	"typograf-live/internal/typograf"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "typograf-live",
	Short: "Live typography editor",
	Long: `typograf-live prepares text for the web: quotes, dashes, non-breaking
spaces and HTML entities, with a live browser editor.

Examples:
  typograf-live serve                  # Start the web editor
  typograf-live exec < draft.txt       # Transform stdin to stdout
  typograf-live exec --locale en-US    # Override the preferred locale
  typograf-live nvim                   # Run as a Neovim remote plugin`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web editor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Transform stdin and print the result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExec(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var nvimCmd = &cobra.Command{
	Use:   "nvim",
	Short: "Run as a Neovim remote plugin host",
	// The plugin host parses its own flags.
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNvim()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

var (
	flagConfig string
	flagLocale string
	flagMode   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", os.Getenv("TYPOGRAF_CONFIG"), "Path to config file (TOML)")

	execCmd.Flags().StringVarP(&flagLocale, "locale", "l", "", "Locale override ("+fmt.Sprint(typograf.Locales())+")")
	execCmd.Flags().StringVarP(&flagMode, "mode", "m", "", "HTML entity mode override (default/name/digit)")

	rootCmd.AddCommand(serveCmd, execCmd, nvimCmd, versionCmd)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(flagConfig, os.Stderr)
	if err != nil {
		return err
	}

	if a.cfg.Prefs.Watch && a.prefs.Path() != "" {
		go func() {
			if err := a.prefs.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("prefs watch stopped", "error", err)
			}
		}()
	}

	if err := a.web.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	fmt.Fprintf(os.Stderr, "typograf-live: %s\n", a.web.URL())

	<-ctx.Done()
	a.logger.Info("shutting down")
	return a.web.Stop()
}

func runExec(in io.Reader, out io.Writer) error {
	a, err := newApp(flagConfig, os.Stderr)
	if err != nil {
		return err
	}

	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	p := a.prefs.Get()
	if flagLocale != "" {
		p.Locale = flagLocale
	}
	if flagMode != "" {
		p.Mode = flagMode
	}

	_, err = io.WriteString(out, a.engine.Execute(string(text), p.Options()))
	return err
}

func runNvim() error {
	// stdout carries the RPC stream.
	a, err := newApp(flagConfig, os.Stderr)
	if err != nil {
		return err
	}

	commands := host.NewCommands(a.service, a.web, a.logger)
	defer commands.Stop()
	defer func() { _ = a.web.Stop() }()

	plugin.Main(func(p *plugin.Plugin) error {
		a.logger.Info("registering handlers")
		return host.Register(p, commands)
	})
	return nil
}

