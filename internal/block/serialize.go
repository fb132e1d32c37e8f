package block

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/steipete/sheetfield/internal/field"
)

// State is the JSON save form of a block.
type State struct {
	Type   string                     `json:"type"`
	ID     string                     `json:"id,omitempty"`
	Fields map[string]json.RawMessage `json:"fields,omitempty"`
}

// XMLBlock is the XML save form; the element is <block> or <shadow>.
type XMLBlock struct {
	XMLName xml.Name
	Type    string              `xml:"type,attr"`
	ID      string              `xml:"id,attr,omitempty"`
	Fields  []*field.XMLElement `xml:"field"`
}

func (b *Block) SaveState() (State, error) {
	st := State{Type: b.Type, ID: b.ID}
	for _, f := range b.Fields() {
		data, err := json.Marshal(f.SaveState())
		if err != nil {
			return State{}, fmt.Errorf("field %s: %w", f.Name(), err)
		}
		if st.Fields == nil {
			st.Fields = make(map[string]json.RawMessage)
		}
		st.Fields[f.Name()] = data
	}
	return st, nil
}

func (b *Block) ToXML() *XMLBlock {
	tag := "block"
	if b.Shadow {
		tag = "shadow"
	}
	out := &XMLBlock{XMLName: xml.Name{Local: tag}, Type: b.Type, ID: b.ID}
	for _, f := range b.Fields() {
		el := field.NewXMLElement(f.Name())
		f.ToXML(el)
		out.Fields = append(out.Fields, el)
	}
	return out
}

// Load builds a block from its JSON state. Fields absent from the state, or
// saved as null, keep their defaults.
func (c *Catalog) Load(st State) (*Block, error) {
	b, err := c.New(st.Type)
	if err != nil {
		return nil, err
	}
	b.ID = st.ID
	for name, raw := range st.Fields {
		f := b.Field(name)
		if f == nil {
			return nil, fmt.Errorf("%s: no field %q", st.Type, name)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		if err := f.LoadState(raw); err != nil {
			return nil, fmt.Errorf("%s field %s: %w", st.Type, name, err)
		}
	}
	return b, nil
}

func (c *Catalog) LoadXML(x *XMLBlock) (*Block, error) {
	switch x.XMLName.Local {
	case "", "block", "shadow":
	default:
		return nil, fmt.Errorf("unexpected element <%s>", x.XMLName.Local)
	}
	b, err := c.New(x.Type)
	if err != nil {
		return nil, err
	}
	b.ID = x.ID
	b.Shadow = x.XMLName.Local == "shadow"
	for _, el := range x.Fields {
		f := b.Field(el.Name)
		if f == nil {
			return nil, fmt.Errorf("%s: no field %q", x.Type, el.Name)
		}
		if err := f.FromXML(el); err != nil {
			return nil, fmt.Errorf("%s field %s: %w", x.Type, el.Name, err)
		}
	}
	return b, nil
}

// Decode reads either save form; XML is recognised by a leading '<'.
func (c *Catalog) Decode(data []byte) (*Block, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '<' {
		var x XMLBlock
		if err := xml.Unmarshal(trimmed, &x); err != nil {
			return nil, fmt.Errorf("parse block xml: %w", err)
		}
		return c.LoadXML(&x)
	}
	var st State
	if err := json.Unmarshal(trimmed, &st); err != nil {
		return nil, fmt.Errorf("parse block json: %w", err)
	}
	return c.Load(st)
}

func EncodeJSON(b *Block) ([]byte, error) {
	st, err := b.SaveState()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(st, "", "  ")
}

func EncodeXML(b *Block) ([]byte, error) {
	return xml.MarshalIndent(b.ToXML(), "", "  ")
}
