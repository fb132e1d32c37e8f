package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/steipete/sheetfield/internal/outfmt"
)

var (
	version = "dev"
	commit  = ""
)

func VersionString() string {
	if commit == "" {
		return fmt.Sprintf("sheetfield %s (%s)", version, runtime.Version())
	}
	return fmt.Sprintf("sheetfield %s (%s, %s)", version, commit, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"version": version,
					"commit":  commit,
					"go":      runtime.Version(),
				})
			}
			fmt.Fprintln(os.Stdout, VersionString())
			return nil
		},
	}
}
