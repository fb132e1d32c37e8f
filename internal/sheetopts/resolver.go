// Package sheetopts turns a spreadsheet URL into dropdown options, one per
// sheet. Failures never reach the caller; they collapse into Placeholder.
package sheetopts

import (
	"context"
	"log/slog"

	"github.com/steipete/sheetfield/internal/sheetid"
)

// Option is a dropdown entry. Label and Value are both the sheet title.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Placeholder keeps the menu from being empty when titles can't be fetched.
var Placeholder = Option{Label: " ", Value: " "}

// Lister fetches sheet titles, in the order the remote returns them.
type Lister interface {
	SheetTitles(ctx context.Context, spreadsheetID, apiKey string) ([]string, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context, spreadsheetID, apiKey string) ([]string, error)

func (f ListerFunc) SheetTitles(ctx context.Context, spreadsheetID, apiKey string) ([]string, error) {
	return f(ctx, spreadsheetID, apiKey)
}

type Resolver struct {
	lister Lister
	log    *slog.Logger
}

func NewResolver(l Lister, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{lister: l, log: log}
}

// Resolve never fails. No id, transport errors, bad status and malformed
// bodies all yield [Placeholder]; a spreadsheet without sheets yields an
// empty slice.
func (r *Resolver) Resolve(ctx context.Context, spreadsheetURL, apiKey string) []Option {
	id, ok := sheetid.Extract(spreadsheetURL)
	if !ok {
		r.log.Debug("no spreadsheet id in url", "url", spreadsheetURL)
		return []Option{Placeholder}
	}

	titles, err := r.lister.SheetTitles(ctx, id, apiKey)
	if err != nil {
		r.log.Debug("sheet titles unavailable", "spreadsheet", id, "err", err)
		return []Option{Placeholder}
	}

	out := make([]Option, 0, len(titles))
	for _, title := range titles {
		out = append(out, Option{Label: title, Value: title})
	}
	return out
}
