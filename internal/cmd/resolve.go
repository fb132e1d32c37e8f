package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/steipete/sheetfield/internal/config"
	"github.com/steipete/sheetfield/internal/googleauth"
	"github.com/steipete/sheetfield/internal/outfmt"
	"github.com/steipete/sheetfield/internal/sheetid"
	"github.com/steipete/sheetfield/internal/sheetopts"
	"github.com/steipete/sheetfield/internal/ui"
)

func newResolveCmd(flags *rootFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "resolve <spreadsheetUrl>",
		Short: "List the dropdown options (sheet names) for a spreadsheet URL",
		Long: "List the dropdown options for a spreadsheet URL.\n" +
			"Any failure yields the single blank placeholder option, exactly as the field shows it.\n" +
			"With --strict the failure is reported instead and the exit code is 1.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ui.FromContext(cmd.Context())
			cfg, err := config.ReadConfig()
			if err != nil {
				return err
			}
			creds, _, err := resolveCredentials(flags, cfg)
			if err != nil {
				return newUsageError(err)
			}
			if creds.Mode() == googleauth.ModeNone && !strict {
				u.Err().Println("No Sheets API credentials; options will be the placeholder. See: sheetfield auth --help")
			}

			ctx, cancel := withTimeout(cmd.Context(), flags)
			defer cancel()

			url := args[0]
			id, found := sheetid.Extract(url)
			var options []sheetopts.Option
			if strict {
				if !found {
					return &ExitError{Code: 1, Err: errors.New("no spreadsheet id in url")}
				}
				titles, err := newLister(flags, cfg, creds).SheetTitles(ctx, id, creds.APIKey)
				if err != nil {
					return err
				}
				options = make([]sheetopts.Option, 0, len(titles))
				for _, title := range titles {
					options = append(options, sheetopts.Option{Label: title, Value: title})
				}
			} else {
				options = newResolver(flags, cfg, creds).Resolve(ctx, url, creds.APIKey)
			}
			placeholder := len(options) == 1 && options[0] == sheetopts.Placeholder

			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"spreadsheetId": id,
					"options":       options,
					"placeholder":   placeholder,
				})
			}

			if outfmt.IsPlain(cmd.Context()) {
				for _, o := range options {
					fmt.Fprintln(os.Stdout, o.Value)
				}
				return nil
			}

			if placeholder {
				u.Err().Println("No sheets resolved (placeholder option)")
				return nil
			}
			if len(options) == 0 {
				u.Err().Println("Spreadsheet has no sheets")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tSHEET")
			for i, o := range options {
				fmt.Fprintf(tw, "%d\t%s\n", i+1, o.Label)
			}
			_ = tw.Flush()
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Report resolution errors instead of falling back to the placeholder")
	return cmd
}
