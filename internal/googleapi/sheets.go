package googleapi

import (
	"context"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// NewSheets builds a Sheets client. extra options are appended after the
// credential options, so tests can point it at a local endpoint.
func NewSheets(ctx context.Context, creds Credentials, extra ...option.ClientOption) (*sheets.Service, error) {
	opts, err := ClientOptions(ctx, creds)
	if err != nil {
		return nil, err
	}
	return sheets.NewService(ctx, append(opts, extra...)...)
}
