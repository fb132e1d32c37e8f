// Package sheetid pulls spreadsheet identifiers out of Google Sheets URLs.
package sheetid

import (
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`/spreadsheets/d/([A-Za-z0-9_-]+)`)

// Extract returns the identifier of the first /spreadsheets/d/<id> path
// segment in url. ok is false when there is none.
func Extract(url string) (id string, ok bool) {
	m := idPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// URL is the edit URL for a spreadsheet id.
func URL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + strings.TrimSpace(id) + "/edit"
}
