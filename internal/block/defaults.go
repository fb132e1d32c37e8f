package block

import (
	"encoding/json"

	"github.com/steipete/sheetfield/internal/field"
)

const (
	SpreadsheetBlockType = "spreadsheet"
	DefaultSheetValue    = "Select Sheet"
)

// SpreadsheetDefinition is a block with a URL text field and a sheet
// dropdown reading from it.
func SpreadsheetDefinition(apiKey, defaultURL string) Definition {
	url, _ := json.Marshal(map[string]string{
		"type": field.TextFieldType,
		"name": "URL",
		"text": defaultURL,
	})
	sheet, _ := json.Marshal(map[string]string{
		"type":            field.SheetDropdownType,
		"name":            "SHEET",
		"value":           DefaultSheetValue,
		"key":             apiKey,
		"parentFieldName": "URL",
	})
	return Definition{Type: SpreadsheetBlockType, Args: []json.RawMessage{url, sheet}}
}
