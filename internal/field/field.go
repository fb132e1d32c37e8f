// Package field models editor fields without any rendering. The host owns
// drawing and menus; it talks to fields only through Field and Editable.
package field

import (
	"context"
	"encoding/json"
	"encoding/xml"
)

// Block is the containing block as seen from a field.
type Block interface {
	FieldValue(name string) string
	IsShadow() bool
	IsRTL() bool
}

// Field is what every field type supports: values, attachment and both
// persistence forms.
type Field interface {
	Type() string
	Name() string
	SetName(name string)
	Value() string
	SetValue(v string)
	SourceBlock() Block
	SetSourceBlock(b Block)

	SaveState() any
	LoadState(raw json.RawMessage) error
	ToXML(el *XMLElement)
	FromXML(el *XMLElement) error
}

// Editable fields open an interactive editor when activated.
type Editable interface {
	Field
	InitView(c Constants) View
	ApplyTheme(s Style) Colours
	Activate(ctx context.Context, ev *PointerEvent) (*Menu, error)
}

// XMLElement is a <field> element of the block XML form.
type XMLElement struct {
	XMLName xml.Name
	Name    string     `xml:"name,attr,omitempty"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
}

func NewXMLElement(name string) *XMLElement {
	return &XMLElement{XMLName: xml.Name{Local: "field"}, Name: name}
}

func (e *XMLElement) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *XMLElement) SetAttr(name, value string) {
	for i, a := range e.Attrs {
		if a.Name.Local == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerEvent is the activation event; nil means keyboard activation.
type PointerEvent struct {
	ClientX float64
	ClientY float64
}
