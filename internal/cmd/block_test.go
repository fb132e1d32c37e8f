package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/steipete/sheetfield/internal/field"
)

func runOK(t *testing.T, args ...string) (string, string) {
	t.Helper()
	var out string
	errText := captureStderr(t, func() {
		out = captureStdout(t, func() {
			if err := Execute(args); err != nil {
				t.Fatalf("Execute %v: %v", args, err)
			}
		})
	})
	return out, errText
}

type blockJSON struct {
	Type   string                     `json:"type"`
	Fields map[string]json.RawMessage `json:"fields"`
}

func sheetState(t *testing.T, out string) field.SheetDropdownOptions {
	t.Helper()
	var b blockJSON
	if err := json.Unmarshal([]byte(out), &b); err != nil {
		t.Fatalf("json parse: %v\nout=%q", err, out)
	}
	var st field.SheetDropdownOptions
	if err := json.Unmarshal(b.Fields["SHEET"], &st); err != nil {
		t.Fatalf("sheet state: %v", err)
	}
	return st
}

func TestExecute_BlockNew(t *testing.T) {
	isolate(t)

	out, _ := runOK(t, "--key", "K", "block", "new", "--url", testSheetURL)
	st := sheetState(t, out)
	if st != (field.SheetDropdownOptions{Key: "K", ParentFieldName: "URL", Value: "Select Sheet"}) {
		t.Fatalf("unexpected sheet state: %#v", st)
	}
	if !strings.Contains(out, testSheetURL) {
		t.Fatalf("url not set: %q", out)
	}
}

func TestExecute_BlockConvertRoundTrip(t *testing.T) {
	isolate(t)

	src := `{"type":"spreadsheet","fields":{"URL":"` + testSheetURL + `","SHEET":{"key":"K","parentFieldName":"URL","value":"Sheet2"}}}`
	xmlOut, _ := runOK(t, "block", "convert", writeTemp(t, "b.json", src))
	if !strings.Contains(xmlOut, `<field name="SHEET" key="K" parentFieldName="URL">Sheet2</field>`) {
		t.Fatalf("unexpected xml: %q", xmlOut)
	}

	jsonOut, _ := runOK(t, "block", "convert", writeTemp(t, "b.xml", xmlOut), "--to", "json")
	st := sheetState(t, jsonOut)
	if st != (field.SheetDropdownOptions{Key: "K", ParentFieldName: "URL", Value: "Sheet2"}) {
		t.Fatalf("unexpected sheet state: %#v", st)
	}
}

func TestExecute_BlockConvertFromStdin(t *testing.T) {
	isolate(t)
	orig := stdin
	stdin = strings.NewReader(`<block type="spreadsheet"><field name="SHEET" key="K" parentFieldName="URL">Tab</field></block>`)
	t.Cleanup(func() { stdin = orig })

	out, _ := runOK(t, "block", "convert", "-")
	if sheetState(t, out).Value != "Tab" {
		t.Fatalf("unexpected: %q", out)
	}
}

func TestExecute_BlockOpenMenu(t *testing.T) {
	isolate(t)
	stub := stubSheets(t, map[string][]string{"X": {"Sheet1", "Sheet2", "Sheet3"}})

	src := `{"type":"spreadsheet","fields":{"URL":"` + testSheetURL + `","SHEET":{"key":"FieldKey","parentFieldName":"URL","value":"Sheet2"}}}`
	out, _ := runOK(t, "--json", "block", "open", writeTemp(t, "b.json", src))

	var parsed struct {
		Value string     `json:"value"`
		Menu  field.Menu `json:"menu"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("json parse: %v\nout=%q", err, out)
	}
	if parsed.Value != "Sheet2" || len(parsed.Menu.Items) != 3 || parsed.Menu.Highlighted != 1 {
		t.Fatalf("unexpected menu: %#v", parsed)
	}
	if !parsed.Menu.Items[1].Checked || parsed.Menu.Items[0].Checked {
		t.Fatalf("unexpected checks: %#v", parsed.Menu.Items)
	}
	seen := stub.seen()
	if len(seen) != 1 || seen[0].APIKey != "FieldKey" {
		t.Fatalf("field key not used: %#v", seen)
	}
}

func TestExecute_BlockOpenTableMarksCurrent(t *testing.T) {
	isolate(t)
	stubSheets(t, map[string][]string{"X": {"Sheet1", "Sheet2"}})

	src := `<block type="spreadsheet"><field name="URL">` + testSheetURL + `</field><field name="SHEET" key="K" parentFieldName="URL">Gone</field></block>`
	out, errText := runOK(t, "--color", "never", "block", "open", writeTemp(t, "b.xml", src))
	if strings.Contains(out, "*") {
		t.Fatalf("nothing should be marked: %q", out)
	}
	if !strings.Contains(errText, `"Gone" is not among the options`) {
		t.Fatalf("unexpected stderr: %q", errText)
	}
}

func TestExecute_BlockOpenSelect(t *testing.T) {
	isolate(t)
	stubSheets(t, map[string][]string{"X": {"Sheet1", "Sheet2"}})

	src := `{"type":"spreadsheet","fields":{"URL":"` + testSheetURL + `","SHEET":{"key":"K","parentFieldName":"URL","value":"Sheet1"}}}`
	out, _ := runOK(t, "block", "open", writeTemp(t, "b.json", src), "--select", "Sheet2")
	st := sheetState(t, out)
	if st != (field.SheetDropdownOptions{Key: "K", ParentFieldName: "URL", Value: "Sheet2"}) {
		t.Fatalf("unexpected sheet state: %#v", st)
	}
}

func TestExecute_BlockOpenSelectUnknown(t *testing.T) {
	isolate(t)
	stubSheets(t, map[string][]string{"X": {"Sheet1"}})

	src := `{"type":"spreadsheet","fields":{"URL":"` + testSheetURL + `","SHEET":{"key":"K","parentFieldName":"URL","value":"Sheet1"}}}`
	var err error
	var out string
	_ = captureStderr(t, func() {
		out = captureStdout(t, func() {
			err = Execute([]string{"block", "open", writeTemp(t, "b.json", src), "--select", "Nope"})
		})
	})
	if ExitCode(err) != 1 || out != "" {
		t.Fatalf("exit=%d err=%v out=%q", ExitCode(err), err, out)
	}
}

func TestExecute_BlockOpenWrongField(t *testing.T) {
	isolate(t)

	src := `{"type":"spreadsheet"}`
	var err error
	_ = captureStderr(t, func() {
		_ = captureStdout(t, func() {
			err = Execute([]string{"block", "open", writeTemp(t, "b.json", src), "--field", "URL"})
		})
	})
	if err == nil || !strings.Contains(err.Error(), "not a field_sheet_dropdown") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestExecute_BlockTypesWithDefs(t *testing.T) {
	isolate(t)

	defs := writeTemp(t, "defs.json", `[{"type":"note","args0":[{"type":"field_input","name":"TEXT","text":"hi"}]}]`)
	out, _ := runOK(t, "--json", "block", "types", "--defs", defs)

	var parsed struct {
		Blocks []string `json:"blocks"`
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("json parse: %v\nout=%q", err, out)
	}
	if strings.Join(parsed.Blocks, ",") != "note,spreadsheet" || strings.Join(parsed.Fields, ",") != "field_input,field_sheet_dropdown" {
		t.Fatalf("unexpected: %#v", parsed)
	}
}

func TestExecute_BlockOpenHighlightsCurrent(t *testing.T) {
	isolate(t)
	stubSheets(t, map[string][]string{"X": {"Sheet1", "Sheet2"}})

	src := `{"type":"spreadsheet","fields":{"URL":"` + testSheetURL + `","SHEET":{"key":"K","parentFieldName":"URL","value":"Sheet2"}}}`
	path := writeTemp(t, "b.json", src)

	out, _ := runOK(t, "--color", "always", "block", "open", path)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("unexpected table: %q", out)
	}
	if strings.Contains(lines[1], "\x1b[") || !strings.Contains(lines[2], "\x1b[") || !strings.HasPrefix(lines[2], "*") {
		t.Fatalf("current item not highlighted: %q", out)
	}

	out, _ = runOK(t, "--color", "never", "block", "open", path)
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected ansi sequence: %q", out)
	}
}
