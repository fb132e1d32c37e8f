package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/steipete/sheetfield/internal/outfmt"
	"github.com/steipete/sheetfield/internal/sheetid"
	"github.com/steipete/sheetfield/internal/ui"
)

func newIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "id <url>",
		Short: "Print the spreadsheet id in a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ui.FromContext(cmd.Context())
			id, ok := sheetid.Extract(args[0])

			if outfmt.IsJSON(cmd.Context()) {
				url := ""
				if ok {
					url = sheetid.URL(id)
				}
				if err := outfmt.WriteJSON(os.Stdout, map[string]any{"id": id, "found": ok, "url": url}); err != nil {
					return err
				}
			} else if ok {
				u.Out().Println(id)
			}

			if !ok {
				return &ExitError{Code: 1, Err: errors.New("no spreadsheet id in url")}
			}
			return nil
		},
	}
}
