package googleauth

import (
	"fmt"
	"strings"
)

// Mode is how requests to the Sheets API are authorized.
type Mode string

const (
	ModeAPIKey         Mode = "api-key"
	ModeServiceAccount Mode = "service-account"
	ModeToken          Mode = "token"
	ModeNone           Mode = "none"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAPIKey, ModeServiceAccount, ModeToken, ModeNone:
		return Mode(strings.ToLower(strings.TrimSpace(s))), nil
	case "key", "apikey":
		return ModeAPIKey, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q (expected api-key|service-account|token|none)", s)
	}
}

func AllModes() []Mode {
	return []Mode{ModeAPIKey, ModeServiceAccount, ModeToken, ModeNone}
}

// Scopes are requested by the OAuth-based modes. Listing sheet titles only
// needs read access.
func Scopes() []string {
	return []string{"https://www.googleapis.com/auth/spreadsheets.readonly"}
}
