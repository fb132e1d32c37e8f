package errfmt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
	ggoogleapi "google.golang.org/api/googleapi"

	"github.com/steipete/sheetfield/internal/field"
	sfapi "github.com/steipete/sheetfield/internal/googleapi"
)

func Format(err error) string {
	if err == nil {
		return ""
	}

	var credErr *sfapi.CredentialsRequiredError
	if errors.As(err, &credErr) {
		return "No Sheets API credentials. Pass --key, set SHEETFIELD_API_KEY, or run: sheetfield auth set-key"
	}

	var unattached *field.UnattachedFieldError
	if errors.As(err, &unattached) {
		return fmt.Sprintf("Internal error: %s", unattached.Error())
	}

	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "Secret not found in keyring. Run: sheetfield auth set-key"
	}

	if errors.Is(err, os.ErrNotExist) {
		return err.Error()
	}

	var gerr *ggoogleapi.Error
	if errors.As(err, &gerr) {
		reason := ""
		if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
			reason = gerr.Errors[0].Reason
		}

		if reason != "" {
			return fmt.Sprintf("Google API error (%d %s): %s", gerr.Code, reason, gerr.Message)
		}

		return fmt.Sprintf("Google API error (%d): %s", gerr.Code, gerr.Message)
	}

	return formatUsage(err.Error())
}

// formatUsage adds a help hint to flag and argument errors from cobra/pflag.
func formatUsage(msg string) string {
	switch {
	case strings.Contains(msg, "--help"):
		return msg
	case strings.HasPrefix(msg, "unknown flag"), strings.HasPrefix(msg, "unknown shorthand flag"):
		return msg + "\nRun with --help to see available flags"
	case strings.HasPrefix(msg, "accepts "), strings.HasPrefix(msg, "requires "),
		strings.Contains(msg, "required flag"):
		return msg + "\nRun with --help to see usage"
	default:
		return msg
	}
}
