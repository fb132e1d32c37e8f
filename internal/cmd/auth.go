package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/99designs/keyring"
	"github.com/spf13/cobra"

	"github.com/steipete/sheetfield/internal/config"
	"github.com/steipete/sheetfield/internal/googleapi"
	"github.com/steipete/sheetfield/internal/outfmt"
	"github.com/steipete/sheetfield/internal/secrets"
	"github.com/steipete/sheetfield/internal/ui"
)

func newAuthCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Sheets API credentials in the keyring",
		Long: strings.TrimSpace(`
Manage Sheets API credentials.

Lookup order: --key, SHEETFIELD_API_KEY, config api_key, keyring api key,
keyring service account, SHEETFIELD_ACCESS_TOKEN.
Keyring backend: config keyring_backend or SHEETFIELD_KEYRING_BACKEND
(auto|keychain|secret-service|wincred|file).`),
	}
	cmd.AddCommand(newAuthSetKeyCmd())
	cmd.AddCommand(newAuthServiceAccountCmd())
	cmd.AddCommand(newAuthStatusCmd(flags))
	cmd.AddCommand(newAuthRemoveCmd())
	return cmd
}

func openStore() (secrets.Store, error) {
	cfg, err := config.ReadConfig()
	if err != nil {
		return nil, err
	}
	return openSecrets(cfg.KeyringBackend)
}

func newAuthSetKeyCmd() *cobra.Command {
	var toConfig bool

	cmd := &cobra.Command{
		Use:   "set-key [apiKey]",
		Short: "Store a Google API key (reads stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ui.FromContext(cmd.Context())
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read api key: %w", err)
				}
				key = line
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return errors.New("empty api key")
			}

			if toConfig {
				cfg, err := config.ReadConfig()
				if err != nil {
					return err
				}
				cfg.APIKey = key
				if err := config.WriteConfig(cfg); err != nil {
					return err
				}
				path, _ := config.ConfigPath()
				if outfmt.IsJSON(cmd.Context()) {
					return outfmt.WriteJSON(os.Stdout, map[string]any{"stored": secrets.KindAPIKey, "config": path})
				}
				u.Err().Successf("API key written to %s", path)
				return nil
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.Set(secrets.KindAPIKey, secrets.Secret{Data: []byte(key)}); err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"stored": secrets.KindAPIKey})
			}
			u.Err().Successf("API key stored")
			return nil
		},
	}
	cmd.Flags().BoolVar(&toConfig, "config", false, "Write the key to config.json instead of the keyring")
	return cmd
}

func newAuthServiceAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "service-account <credentials.json>",
		Short: "Store a service account key file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ui.FromContext(cmd.Context())
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if _, err := googleapi.ClientOptions(context.Background(), googleapi.Credentials{ServiceAccountJSON: data}); err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.Set(secrets.KindServiceAccount, secrets.Secret{Data: data}); err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"stored": secrets.KindServiceAccount})
			}
			u.Err().Successf("Service account stored")
			return nil
		},
	}
}

func newAuthStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credentials would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ReadConfig()
			if err != nil {
				return err
			}
			creds, source, err := resolveCredentials(flags, cfg)
			if err != nil {
				return newUsageError(err)
			}
			path, _ := config.ConfigPath()
			stored := storedKinds(cfg)

			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"mode":   creds.Mode(),
					"source": source,
					"config": path,
					"stored": stored,
				})
			}
			names := make([]string, 0, len(stored))
			for _, k := range stored {
				names = append(names, string(k))
			}
			if len(names) == 0 {
				names = append(names, "-")
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "mode\t%s\n", creds.Mode())
			fmt.Fprintf(tw, "source\t%s\n", source)
			fmt.Fprintf(tw, "config\t%s\n", path)
			fmt.Fprintf(tw, "stored\t%s\n", strings.Join(names, ","))
			_ = tw.Flush()
			return nil
		},
	}
}

// storedKinds lists the credential kinds present in the keyring. An
// unavailable keyring lists nothing.
func storedKinds(cfg config.File) []secrets.Kind {
	out := []secrets.Kind{}
	store, err := openSecrets(cfg.KeyringBackend)
	if err != nil {
		slog.Debug("keyring unavailable", "err", err)
		return out
	}
	keys, err := store.Keys()
	if err != nil {
		slog.Debug("list keyring items", "err", err)
		return out
	}
	for _, k := range keys {
		if kind, ok := secrets.ParseSecretKey(k); ok {
			out = append(out, kind)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func newAuthRemoveCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := ui.FromContext(cmd.Context())
			var kinds []secrets.Kind
			switch strings.ToLower(strings.TrimSpace(kind)) {
			case "all":
				kinds = []secrets.Kind{secrets.KindAPIKey, secrets.KindServiceAccount}
			case string(secrets.KindAPIKey), "api-key":
				kinds = []secrets.Kind{secrets.KindAPIKey}
			case string(secrets.KindServiceAccount), "service-account":
				kinds = []secrets.Kind{secrets.KindServiceAccount}
			default:
				return newUsageError(fmt.Errorf("invalid --kind %q (expected api_key|service_account|all)", kind))
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			removed := make([]secrets.Kind, 0, len(kinds))
			for _, k := range kinds {
				if err := store.Delete(k); err != nil {
					if errors.Is(err, keyring.ErrKeyNotFound) {
						continue
					}
					return err
				}
				removed = append(removed, k)
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"removed": removed})
			}
			if len(removed) == 0 {
				u.Err().Println("Nothing to remove")
				return nil
			}
			for _, k := range removed {
				u.Err().Successf("Removed %s", k)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "all", "What to remove: api_key|service_account|all")
	return cmd
}
