package sheetopts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/steipete/sheetfield/internal/googleapi"
)

// titleFields trims the response to what the dropdown needs.
const titleFields = "sheets.properties.title"

var (
	errMissingSheets     = errors.New("response without sheets")
	errMissingProperties = errors.New("sheet without properties")
)

// ServiceFunc builds a Sheets client; googleapi.NewSheets in production.
type ServiceFunc func(ctx context.Context, creds googleapi.Credentials, extra ...option.ClientOption) (*sheets.Service, error)

// SheetsLister reads titles through the Sheets v4 API. The per-call key wins;
// Fallback is used when the key is empty.
type SheetsLister struct {
	Fallback   googleapi.Credentials
	Options    []option.ClientOption
	NewService ServiceFunc
}

func NewSheetsLister(fallback googleapi.Credentials, opts ...option.ClientOption) *SheetsLister {
	return &SheetsLister{Fallback: fallback, Options: opts, NewService: googleapi.NewSheets}
}

func (l *SheetsLister) SheetTitles(ctx context.Context, spreadsheetID, apiKey string) ([]string, error) {
	creds := l.Fallback
	if strings.TrimSpace(apiKey) != "" {
		creds = googleapi.Credentials{APIKey: apiKey}
	}

	newService := l.NewService
	if newService == nil {
		newService = googleapi.NewSheets
	}
	svc, err := newService(ctx, creds, l.Options...)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Get(spreadsheetID).Fields(titleFields).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	// An absent or null "sheets" decodes to nil; "[]" is a real empty spreadsheet.
	if resp.Sheets == nil {
		return nil, errMissingSheets
	}

	titles := make([]string, 0, len(resp.Sheets))
	for i, s := range resp.Sheets {
		if s == nil || s.Properties == nil {
			return nil, fmt.Errorf("sheet %d: %w", i, errMissingProperties)
		}
		titles = append(titles, s.Properties.Title)
	}
	return titles, nil
}
