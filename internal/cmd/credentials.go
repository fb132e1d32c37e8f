package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/99designs/keyring"
	"google.golang.org/api/option"

	"github.com/steipete/sheetfield/internal/config"
	"github.com/steipete/sheetfield/internal/googleapi"
	"github.com/steipete/sheetfield/internal/googleauth"
	"github.com/steipete/sheetfield/internal/secrets"
	"github.com/steipete/sheetfield/internal/sheetopts"
)

var (
	openSecrets      = secrets.OpenDefault
	newSheetsService = googleapi.NewSheets
)

// credentialSource says where the effective credentials came from.
type credentialSource string

const (
	sourceFlag    credentialSource = "flag"
	sourceEnv     credentialSource = "env"
	sourceConfig  credentialSource = "config"
	sourceKeyring credentialSource = "keyring"
	sourceNone    credentialSource = "none"
)

const authModeAuto = "auto"

// authMode returns the mode credentials are restricted to, or "" for auto.
// --auth-mode wins over config auth_mode.
func authMode(flags *rootFlags, cfg config.File) (googleauth.Mode, error) {
	v := strings.TrimSpace(flags.AuthMode)
	if v == "" {
		v = strings.TrimSpace(cfg.AuthMode)
	}
	if v == "" || strings.EqualFold(v, authModeAuto) {
		return "", nil
	}
	return googleauth.ParseMode(v)
}

// resolveCredentials picks credentials in order: --key, SHEETFIELD_API_KEY,
// config api_key, keyring api key, keyring service account,
// SHEETFIELD_ACCESS_TOKEN. An auth mode skips every other kind.
func resolveCredentials(flags *rootFlags, cfg config.File) (googleapi.Credentials, credentialSource, error) {
	mode, err := authMode(flags, cfg)
	if err != nil {
		return googleapi.Credentials{}, sourceNone, err
	}
	allow := func(m googleauth.Mode) bool { return mode == "" || mode == m }

	if allow(googleauth.ModeAPIKey) {
		if k := strings.TrimSpace(flags.Key); k != "" {
			return googleapi.Credentials{APIKey: k}, sourceFlag, nil
		}
		if k := strings.TrimSpace(os.Getenv("SHEETFIELD_API_KEY")); k != "" {
			return googleapi.Credentials{APIKey: k}, sourceEnv, nil
		}
		if k := strings.TrimSpace(cfg.APIKey); k != "" {
			return googleapi.Credentials{APIKey: k}, sourceConfig, nil
		}
	}

	if allow(googleauth.ModeAPIKey) || allow(googleauth.ModeServiceAccount) {
		if store, err := openSecrets(cfg.KeyringBackend); err != nil {
			slog.Debug("keyring unavailable", "err", err)
		} else {
			if allow(googleauth.ModeAPIKey) {
				if s, err := store.Get(secrets.KindAPIKey); err == nil {
					return googleapi.Credentials{APIKey: string(s.Data)}, sourceKeyring, nil
				} else if !errors.Is(err, keyring.ErrKeyNotFound) {
					slog.Debug("read api key from keyring", "err", err)
				}
			}
			if allow(googleauth.ModeServiceAccount) {
				if s, err := store.Get(secrets.KindServiceAccount); err == nil {
					return googleapi.Credentials{ServiceAccountJSON: s.Data}, sourceKeyring, nil
				}
			}
		}
	}

	if allow(googleauth.ModeToken) {
		if tok := strings.TrimSpace(os.Getenv("SHEETFIELD_ACCESS_TOKEN")); tok != "" {
			return googleapi.Credentials{AccessToken: tok}, sourceEnv, nil
		}
	}
	return googleapi.Credentials{}, sourceNone, nil
}

// newLister builds the Sheets API lister with creds as fallback for fields
// that carry no key of their own.
func newLister(flags *rootFlags, cfg config.File, creds googleapi.Credentials) *sheetopts.SheetsLister {
	var opts []option.ClientOption
	endpoint := strings.TrimSpace(flags.Endpoint)
	if endpoint == "" {
		endpoint = strings.TrimSpace(cfg.Endpoint)
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return &sheetopts.SheetsLister{Fallback: creds, Options: opts, NewService: newSheetsService}
}

func newResolver(flags *rootFlags, cfg config.File, creds googleapi.Credentials) *sheetopts.Resolver {
	return sheetopts.NewResolver(newLister(flags, cfg, creds), slog.Default())
}

func withTimeout(ctx context.Context, flags *rootFlags) (context.Context, context.CancelFunc) {
	if flags.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, flags.Timeout)
}
