package field

import (
	"encoding/json"
	"sync"
)

const TextFieldType = "field_input"

// TextField is a plain editable text value, e.g. the spreadsheet URL next
// to a sheet dropdown.
type TextField struct {
	mu    sync.Mutex
	name  string
	value string
	block Block
}

type textFieldOptions struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func NewTextField(value string) *TextField {
	return &TextField{value: value}
}

func TextFieldFromJSON(raw json.RawMessage) (*TextField, error) {
	var opts textFieldOptions
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, err
		}
	}
	f := NewTextField(opts.Text)
	f.name = opts.Name
	return f, nil
}

func (f *TextField) Type() string { return TextFieldType }

func (f *TextField) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

func (f *TextField) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name = name
}

func (f *TextField) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *TextField) SetValue(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = v
}

func (f *TextField) SourceBlock() Block {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.block
}

func (f *TextField) SetSourceBlock(b Block) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = b
}

// SaveState is the bare value, as text fields serialize in block JSON.
func (f *TextField) SaveState() any { return f.Value() }

func (f *TextField) LoadState(raw json.RawMessage) error {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	f.SetValue(v)
	return nil
}

func (f *TextField) ToXML(el *XMLElement) { el.Text = f.Value() }

func (f *TextField) FromXML(el *XMLElement) error {
	f.SetValue(el.Text)
	return nil
}
