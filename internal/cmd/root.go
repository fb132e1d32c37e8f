package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/steipete/sheetfield/internal/config"
	"github.com/steipete/sheetfield/internal/errfmt"
	"github.com/steipete/sheetfield/internal/googleauth"
	"github.com/steipete/sheetfield/internal/outfmt"
	"github.com/steipete/sheetfield/internal/ui"
)

type rootFlags struct {
	Color    string
	Key      string
	Endpoint string
	AuthMode string
	Timeout  time.Duration
	JSON     bool
	Plain    bool
	Verbose  bool
}

func Execute(args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, errfmt.Format(err))
	}

	flags := rootFlags{Color: envOr("SHEETFIELD_COLOR", "auto"), Timeout: 30 * time.Second}
	envMode := outfmt.FromEnv()
	flags.JSON = envMode.JSON
	flags.Plain = envMode.Plain

	// Avoid dangerous prefix-matching for commands (future-proofing).
	cobra.EnablePrefixMatching = false

	if hasExactArg(args, "--version") {
		fmt.Fprintln(os.Stdout, VersionString())
		return nil
	}

	// The UI lives on the subcommand's context; keep it for error output.
	var cmdUI *ui.UI

	configPath, _ := config.ConfigPath()
	root := &cobra.Command{
		Use:           "sheetfield",
		Short:         "Sheet dropdown field: resolve sheet names and edit saved blocks",
		Long:          "Sheet dropdown field: resolve sheet names and edit saved blocks.\n\nConfig: " + configPath + " (api_key, auth_mode, keyring_backend, endpoint, blocks_file)",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Example: strings.TrimSpace(`
  # One-time setup
  sheetfield auth set-key AIza...

  # Spreadsheet id from a URL
  sheetfield id 'https://docs.google.com/spreadsheets/d/<id>/edit#gid=0'

  # Dropdown options for a spreadsheet
  sheetfield resolve 'https://docs.google.com/spreadsheets/d/<id>/edit'

  # Saved blocks
  sheetfield block new --url 'https://docs.google.com/spreadsheets/d/<id>/edit' > block.json
  sheetfield block open block.json --select Sheet2 > block.json
  sheetfield block convert block.json --to xml

  # Parseable output
  sheetfield --json resolve '<url>' | jq .
`),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logLevel := slog.LevelWarn
			if flags.Verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})))

			if _, err := authMode(&flags, config.File{}); err != nil {
				return newUsageError(err)
			}

			mode, err := outfmt.FromFlags(flags.JSON, flags.Plain)
			if err != nil {
				return err
			}
			cmd.SetContext(outfmt.WithMode(cmd.Context(), mode))

			u, err := ui.New(ui.Options{
				Stdout: os.Stdout,
				Stderr: os.Stderr,
				Color: func() string {
					if outfmt.IsJSON(cmd.Context()) || outfmt.IsPlain(cmd.Context()) {
						return "never"
					}
					return flags.Color
				}(),
			})
			if err != nil {
				return err
			}
			cmd.SetContext(ui.WithUI(cmd.Context(), u))
			cmdUI = u
			return nil
		},
	}

	root.SetArgs(args)
	root.PersistentFlags().StringVar(&flags.Color, "color", flags.Color, "Color output: auto|always|never")
	root.PersistentFlags().StringVar(&flags.Key, "key", "", "Google API key (default: SHEETFIELD_API_KEY, config, keyring)")
	root.PersistentFlags().StringVar(&flags.AuthMode, "auth-mode", "", "Restrict credentials to one kind: "+authModeHelp()+" (default: config auth_mode, else auto)")
	root.PersistentFlags().StringVar(&flags.Endpoint, "endpoint", "", "Override the Sheets API endpoint")
	root.PersistentFlags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Timeout for Sheets API requests (0 = none)")
	root.PersistentFlags().BoolVar(&flags.JSON, "json", flags.JSON, "Output JSON to stdout (best for scripting)")
	root.PersistentFlags().BoolVar(&flags.Plain, "plain", flags.Plain, "Output stable, parseable text to stdout (TSV; no colors)")
	root.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")

	root.AddCommand(newIDCmd())
	root.AddCommand(newResolveCmd(&flags))
	root.AddCommand(newBlockCmd(&flags))
	root.AddCommand(newAuthCmd(&flags))
	root.AddCommand(newVersionCmd())

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		// pflag already includes helpful context ("unknown flag", "invalid argument", ...).
		return newUsageError(err)
	})

	err := root.Execute()
	if err == nil {
		return nil
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}

	if ExitCode(err) == 1 && isUsageError(err) {
		err = &ExitError{Code: 2, Err: err}
	}

	if cmdUI != nil {
		cmdUI.Err().Error(errfmt.Format(err))
		return err
	}
	_, _ = fmt.Fprintln(os.Stderr, errfmt.Format(err))
	return err
}

func authModeHelp() string {
	names := []string{authModeAuto}
	for _, m := range googleauth.AllModes() {
		names = append(names, string(m))
	}
	return strings.Join(names, "|")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func hasExactArg(args []string, target string) bool {
	for _, a := range args {
		if a == target {
			return true
		}
	}
	return false
}

// newUsageError wraps errors in a way main() can map to exit code 2.
func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	// Preserve pflag.ErrHelp (should not be treated as failure).
	if errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return &ExitError{Code: 2, Err: err}
}

func isUsageError(err error) bool {
	var outErr *outfmt.ParseError
	if errors.As(err, &outErr) {
		return true
	}
	var uiErr *ui.ParseError
	if errors.As(err, &uiErr) {
		return true
	}
	msg := strings.TrimSpace(err.Error())
	switch {
	case strings.HasPrefix(msg, "accepts "),
		strings.HasPrefix(msg, "requires "),
		strings.HasPrefix(msg, "unknown command"),
		strings.HasPrefix(msg, "invalid argument"),
		strings.HasPrefix(msg, "unknown flag"),
		strings.HasPrefix(msg, "unknown shorthand flag"):
		return true
	default:
		return false
	}
}
