package googleapi

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/steipete/sheetfield/internal/googleauth"
)

// Credentials holds whatever the caller has for authorizing Sheets requests.
// The first non-empty source in Mode order wins.
type Credentials struct {
	APIKey             string
	ServiceAccountJSON []byte
	AccessToken        string
}

// CredentialsRequiredError is returned when no credential source is set.
type CredentialsRequiredError struct {
	Mode googleauth.Mode
}

func (e *CredentialsRequiredError) Error() string {
	if e.Mode == "" || e.Mode == googleauth.ModeNone {
		return "no credentials for Sheets API"
	}
	return fmt.Sprintf("no credentials for Sheets API (mode %s)", e.Mode)
}

// Mode reports which source ClientOptions will use.
func (c Credentials) Mode() googleauth.Mode {
	switch {
	case strings.TrimSpace(c.APIKey) != "":
		return googleauth.ModeAPIKey
	case len(c.ServiceAccountJSON) > 0:
		return googleauth.ModeServiceAccount
	case strings.TrimSpace(c.AccessToken) != "":
		return googleauth.ModeToken
	default:
		return googleauth.ModeNone
	}
}

func ClientOptions(ctx context.Context, creds Credentials) ([]option.ClientOption, error) {
	switch creds.Mode() {
	case googleauth.ModeAPIKey:
		return []option.ClientOption{option.WithAPIKey(strings.TrimSpace(creds.APIKey))}, nil
	case googleauth.ModeServiceAccount:
		cfg, err := google.JWTConfigFromJSON(creds.ServiceAccountJSON, googleauth.Scopes()...)
		if err != nil {
			return nil, fmt.Errorf("parse service account: %w", err)
		}
		return []option.ClientOption{option.WithTokenSource(cfg.TokenSource(ctx))}, nil
	case googleauth.ModeToken:
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(creds.AccessToken)})
		return []option.ClientOption{option.WithTokenSource(ts)}, nil
	default:
		return nil, &CredentialsRequiredError{Mode: googleauth.ModeNone}
	}
}
