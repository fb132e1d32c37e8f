package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/steipete/sheetfield/internal/block"
	"github.com/steipete/sheetfield/internal/config"
	"github.com/steipete/sheetfield/internal/field"
	"github.com/steipete/sheetfield/internal/googleapi"
	"github.com/steipete/sheetfield/internal/outfmt"
	"github.com/steipete/sheetfield/internal/registry"
	"github.com/steipete/sheetfield/internal/ui"
)

const (
	formatJSON = "json"
	formatXML  = "xml"
)

var stdin io.Reader = os.Stdin

type blockFlags struct {
	Defs string
}

func newBlockCmd(flags *rootFlags) *cobra.Command {
	bf := &blockFlags{}
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Create, convert and edit saved blocks (JSON or XML)",
	}
	cmd.PersistentFlags().StringVar(&bf.Defs, "defs", "", "Extra JSON block definitions (default: config blocks_file)")
	cmd.AddCommand(newBlockNewCmd(flags, bf))
	cmd.AddCommand(newBlockConvertCmd(flags, bf))
	cmd.AddCommand(newBlockOpenCmd(flags, bf))
	cmd.AddCommand(newBlockTypesCmd(flags, bf))
	return cmd
}

func newBlockNewCmd(flags *rootFlags, bf *blockFlags) *cobra.Command {
	var blockType, url, to string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Print a new block with default field values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, _, err := loadCatalog(flags, bf, true)
			if err != nil {
				return err
			}
			b, err := catalog.New(blockType)
			if err != nil {
				return err
			}
			if url != "" {
				f := b.Field("URL")
				if f == nil {
					return fmt.Errorf("block %s has no URL field", blockType)
				}
				f.SetValue(url)
			}
			return writeBlock(b, to)
		},
	}
	cmd.Flags().StringVar(&blockType, "type", block.SpreadsheetBlockType, "Block type")
	cmd.Flags().StringVar(&url, "url", "", "Spreadsheet URL for the URL field")
	cmd.Flags().StringVar(&to, "to", formatJSON, "Output format: json|xml")
	return cmd
}

func newBlockConvertCmd(flags *rootFlags, bf *blockFlags) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <file|->",
		Short: "Convert a saved block between JSON and XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, err := loadCatalog(flags, bf, false)
			if err != nil {
				return err
			}
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			b, err := catalog.Decode(data)
			if err != nil {
				return err
			}
			if to == "" {
				to = otherFormat(detectFormat(data))
			}
			return writeBlock(b, to)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output format: json|xml (default: the other one)")
	return cmd
}

func newBlockOpenCmd(flags *rootFlags, bf *blockFlags) *cobra.Command {
	var fieldName, selectValue, to string

	cmd := &cobra.Command{
		Use:   "open <file|->",
		Short: "Open a sheet dropdown: show its options, optionally select one",
		Long:  "Open a sheet dropdown field of a saved block.\nWithout --select the menu is printed (* marks the current value).\nWith --select the value is set and the updated block is printed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ui.FromContext(cmd.Context())
			catalog, _, err := loadCatalog(flags, bf, true)
			if err != nil {
				return err
			}
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			b, err := catalog.Decode(data)
			if err != nil {
				return err
			}

			f := b.Field(fieldName)
			if f == nil {
				return fmt.Errorf("block %s has no field %q", b.Type, fieldName)
			}
			dd, ok := f.(*field.SheetDropdown)
			if !ok {
				return fmt.Errorf("field %s is a %s, not a %s", fieldName, f.Type(), field.SheetDropdownType)
			}

			ctx, cancel := withTimeout(cmd.Context(), flags)
			defer cancel()
			menu, err := dd.Activate(ctx, nil)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("select") {
				if err := dd.Select(selectValue); err != nil {
					dd.Dismiss()
					return &ExitError{Code: 1, Err: err}
				}
				u.Err().Successf("%s = %s", fieldName, dd.Value())
				if to == "" {
					to = detectFormat(data)
				}
				return writeBlock(b, to)
			}
			dd.Dismiss()

			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"field": fieldName,
					"value": dd.Value(),
					"menu":  menu,
				})
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			if !outfmt.IsPlain(cmd.Context()) {
				fmt.Fprintln(tw, "\tSHEET")
			}
			for i, it := range menu.Items {
				mark, label := "", it.Label
				if i == menu.Highlighted {
					mark, label = "*", u.Out().Highlight(label)
				}
				fmt.Fprintf(tw, "%s\t%s\n", mark, label)
			}
			_ = tw.Flush()
			if menu.Highlighted < 0 && !outfmt.IsPlain(cmd.Context()) {
				u.Err().Printf("Current value %q is not among the options", dd.Value())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fieldName, "field", "SHEET", "Name of the sheet dropdown field")
	cmd.Flags().StringVar(&selectValue, "select", "", "Sheet name to select")
	cmd.Flags().StringVar(&to, "to", "", "Output format after --select: json|xml (default: input format)")
	return cmd
}

func newBlockTypesCmd(flags *rootFlags, bf *blockFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List known block and field types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, reg, err := loadCatalog(flags, bf, false)
			if err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"blocks": catalog.Types(),
					"fields": reg.Types(),
				})
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tTYPE")
			for _, t := range catalog.Types() {
				fmt.Fprintf(tw, "block\t%s\n", t)
			}
			for _, t := range reg.Types() {
				fmt.Fprintf(tw, "field\t%s\n", t)
			}
			_ = tw.Flush()
			return nil
		},
	}
}

// loadCatalog registers field types once per invocation and loads the
// built-in spreadsheet block plus any extra definitions. Credentials are only
// looked up when withCreds is set, so conversions never touch the keyring.
func loadCatalog(flags *rootFlags, bf *blockFlags, withCreds bool) (*block.Catalog, *registry.Registry, error) {
	cfg, err := config.ReadConfig()
	if err != nil {
		return nil, nil, err
	}
	var creds googleapi.Credentials
	if withCreds {
		if creds, _, err = resolveCredentials(flags, cfg); err != nil {
			return nil, nil, newUsageError(err)
		}
	}

	reg := registry.New()
	if err := registry.RegisterDefaults(reg, newResolver(flags, cfg, creds)); err != nil {
		return nil, nil, err
	}
	catalog := block.NewCatalog(reg)
	if err := catalog.Define(block.SpreadsheetDefinition(defaultFieldKey(creds), "")); err != nil {
		return nil, nil, err
	}

	defs := bf.Defs
	if defs == "" {
		defs = cfg.BlocksFile
	}
	if defs != "" {
		data, err := os.ReadFile(defs)
		if err != nil {
			return nil, nil, err
		}
		if err := catalog.DefineJSON(data); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", defs, err)
		}
	}
	return catalog, reg, nil
}

// defaultFieldKey is stored in new dropdowns. Only API keys are persisted.
func defaultFieldKey(creds googleapi.Credentials) string {
	return strings.TrimSpace(creds.APIKey)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func detectFormat(data []byte) string {
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '<' {
		return formatXML
	}
	return formatJSON
}

func otherFormat(f string) string {
	if f == formatXML {
		return formatJSON
	}
	return formatXML
}

func writeBlock(b *block.Block, format string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case formatJSON:
		data, err = block.EncodeJSON(b)
	case formatXML:
		data, err = block.EncodeXML(b)
	default:
		return newUsageError(errors.New("invalid format " + format + " (expected json|xml)"))
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
